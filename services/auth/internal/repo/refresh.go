package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	jwthelp "github.com/Skotchmaster/artisan_shop/pkg/jwt"
	"github.com/Skotchmaster/artisan_shop/services/auth/internal/models"
)

var ErrTokenExpiredOrRevoked = errors.New("token expired or revoked")

func (r *GormRepo) AddRefreshToken(ctx context.Context, token models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(&token).Error
}

func (r *GormRepo) FindRefreshByID(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func refreshExpiredOrRevoked(db *gorm.DB, jti, hash string) (bool, error) {
	var refresh models.RefreshToken
	if err := db.Where("jti = ?", jti).First(&refresh).Error; err != nil {
		return false, err
	}
	if refresh.Token != hash || refresh.ExpiresAt < time.Now().Unix() || refresh.Revoked {
		return true, nil
	}
	return false, nil
}

// RotateRefreshToken revokes the presented token and stores its successor in
// one transaction.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldToken string, newToken models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired, err := refreshExpiredOrRevoked(tx, oldJTI, jwthelp.Sha256Hex(oldToken))
		if err != nil {
			return err
		}
		if expired {
			return ErrTokenExpiredOrRevoked
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenExpiredOrRevoked
		}

		return tx.Create(&newToken).Error
	})
}

func (r *GormRepo) LogOut(ctx context.Context, refreshToken string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", jwthelp.Sha256Hex(refreshToken)).
		Update("revoked", true).Error
}
