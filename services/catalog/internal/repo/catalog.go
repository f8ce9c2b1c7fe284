package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/transport"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(&models.Artisan{}, &models.Category{}, &models.Product{})
}

func (r *GormRepo) ListArtisans(ctx context.Context) ([]models.Artisan, error) {
	items := []models.Artisan{}
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetArtisan(ctx context.Context, id int64) (*models.Artisan, error) {
	var a models.Artisan
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	items := []models.Category{}
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) ArtisanExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Artisan{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) productViews(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("products AS p").
		Select(`p.id, p.name, p.description, p.price, p.image_url, p.stock_quantity,
			p.category_id, p.artisan_id,
			c.name AS category_name, a.name AS artisan_name, a.specialty AS artisan_specialty`).
		Joins("JOIN categories c ON p.category_id = c.id").
		Joins("JOIN artisans a ON p.artisan_id = a.id")
}

// ListProducts returns the joined view, filters ANDed, ascending by id.
func (r *GormRepo) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.ProductView, error) {
	q := r.productViews(ctx)
	if f.ArtisanID != 0 {
		q = q.Where("p.artisan_id = ?", f.ArtisanID)
	}
	if f.CategoryID != 0 {
		q = q.Where("p.category_id = ?", f.CategoryID)
	}

	items := []models.ProductView{}
	if err := q.Order("p.id ASC").Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id int64) (*models.ProductView, error) {
	var items []models.ProductView
	if err := r.productViews(ctx).Where("p.id = ?", id).Limit(1).Scan(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &items[0], nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id int64) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}
	if req.StockQuantity != nil {
		prod.StockQuantity = *req.StockQuantity
	}
	if req.CategoryID != nil {
		prod.CategoryID = *req.CategoryID
	}
	if req.ArtisanID != nil {
		prod.ArtisanID = *req.ArtisanID
	}

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id int64) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
