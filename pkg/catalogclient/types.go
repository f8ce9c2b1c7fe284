package catalogclient

import (
	"time"

	"github.com/shopspring/decimal"
)

type Artisan struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Specialty   string    `json:"specialty"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Product is the joined product view served by the catalog.
type Product struct {
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

// ProductInput is the body of an admin create or update. Nil fields are left
// untouched by an update.
type ProductInput struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
	CategoryID    *int64           `json:"category_id,omitempty"`
	ArtisanID     *int64           `json:"artisan_id,omitempty"`
}

// Filter narrows ListProducts. Zero values mean "any"; both set are ANDed.
type Filter struct {
	ArtisanID  int64
	CategoryID int64
}
