package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Artisan struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;not null"        json:"name"`
	Specialty   string    `gorm:"size:100"                 json:"specialty"`
	Description string    `gorm:"type:text"                json:"description"`
	ImageURL    string    `gorm:"size:255"                 json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Category struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:100;not null;unique" json:"name"`
	Description string `gorm:"type:text"                json:"description"`
	ImageURL    string `gorm:"size:255"                 json:"image_url"`
}

type Product struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name          string          `gorm:"size:100;not null"            json:"name"`
	Description   string          `gorm:"type:text;not null"           json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"price"`
	ImageURL      string          `gorm:"size:255"                     json:"image_url"`
	CategoryID    int64           `gorm:"not null;index"               json:"category_id"`
	ArtisanID     int64           `gorm:"not null;index"               json:"artisan_id"`
	StockQuantity int             `gorm:"not null;default:1"           json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductView is a product joined with its category and artisan, the shape
// every read endpoint and the search index serve.
type ProductView struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	ImageURL         string          `json:"image_url"`
	StockQuantity    int             `json:"stock_quantity"`
	CategoryID       int64           `json:"category_id"`
	ArtisanID        int64           `json:"artisan_id"`
	CategoryName     string          `json:"category_name"`
	ArtisanName      string          `json:"artisan_name"`
	ArtisanSpecialty string          `json:"artisan_specialty"`
}

// ProductFilter narrows a product listing. Zero means no constraint.
type ProductFilter struct {
	ArtisanID  int64
	CategoryID int64
}
