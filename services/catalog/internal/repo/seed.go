package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/models"
)

type seedProduct struct {
	name, description, price, imageURL string
	category, artisan                  string
	stock                              int
}

var (
	seedArtisans = []models.Artisan{
		{Name: "Emma Johnson", Specialty: "Jewelry Designer", Description: "Emma creates beautiful handcrafted jewelry using sustainable materials."},
		{Name: "Michael Chen", Specialty: "Woodworker", Description: "Michael specializes in handcrafted wooden home decor and furniture."},
		{Name: "Sophia Martinez", Specialty: "Textile Artist", Description: "Sophia creates handwoven textiles and clothing using traditional techniques."},
		{Name: "James Wilson", Specialty: "Ceramicist", Description: "James crafts unique ceramic pieces inspired by nature and organic forms."},
		{Name: "Olivia Taylor", Specialty: "Leather Artisan", Description: "Olivia handcrafts premium leather goods using traditional techniques."},
	}

	seedCategories = []models.Category{
		{Name: "Jewelry", Description: "Handcrafted necklaces, bracelets, earrings, and more.", ImageURL: "/jewelry.jpg"},
		{Name: "Home Decor", Description: "Beautiful items to decorate your living space.", ImageURL: "/decor.jpg"},
		{Name: "Clothing", Description: "Handmade clothing items crafted with care.", ImageURL: "/clothing.jpg"},
	}

	seedProducts = []seedProduct{
		{"Handcrafted Silver Necklace", "A beautiful silver necklace with a handcrafted pendant.", "89.99", "", "Jewelry", "Jewelry Designer", 15},
		{"Gemstone Earrings", "Elegant earrings featuring ethically sourced gemstones.", "64.99", "", "Jewelry", "Jewelry Designer", 20},
		{"Beaded Bracelet Set", "Set of three handcrafted beaded bracelets.", "45.99", "", "Jewelry", "Jewelry Designer", 25},
		{"Walnut Serving Board", "Hand-finished walnut board for serving and display.", "59.99", "", "Home Decor", "Woodworker", 10},
		{"Handwoven Wool Scarf", "Soft scarf woven on a traditional loom.", "24.99", "", "Clothing", "Textile Artist", 30},
		{"Stoneware Vase", "Wheel-thrown vase with an organic glaze.", "72.50", "", "Home Decor", "Ceramicist", 8},
		{"Leather Card Wallet", "Slim wallet stitched by hand from full-grain leather.", "38.00", "", "Clothing", "Leather Artisan", 40},
	}
)

// Seed fills an empty catalog with sample artisans, categories and
// products. It does nothing when any artisan exists.
func (r *GormRepo) Seed(ctx context.Context) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Artisan{}).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		artisans := append([]models.Artisan(nil), seedArtisans...)
		if err := tx.Create(&artisans).Error; err != nil {
			return err
		}
		categories := append([]models.Category(nil), seedCategories...)
		if err := tx.Create(&categories).Error; err != nil {
			return err
		}

		bySpecialty := make(map[string]int64, len(artisans))
		for _, a := range artisans {
			bySpecialty[a.Specialty] = a.ID
		}
		byName := make(map[string]int64, len(categories))
		for _, c := range categories {
			byName[c.Name] = c.ID
		}

		products := make([]models.Product, 0, len(seedProducts))
		for _, sp := range seedProducts {
			products = append(products, models.Product{
				Name:          sp.name,
				Description:   sp.description,
				Price:         decimal.RequireFromString(sp.price),
				ImageURL:      sp.imageURL,
				CategoryID:    byName[sp.category],
				ArtisanID:     bySpecialty[sp.artisan],
				StockQuantity: sp.stock,
			})
		}
		return tx.Create(&products).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
