package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/artisan_shop/services/auth/internal/models"
)

type GormRepo struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(&models.User{}, &models.RefreshToken{})
}
