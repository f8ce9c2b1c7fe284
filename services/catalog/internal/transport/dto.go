package transport

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	ImageURL      string           `json:"image_url"`
	StockQuantity *int             `json:"stock_quantity"`
	CategoryID    int64            `json:"category_id"`
	ArtisanID     int64            `json:"artisan_id"`
}

type PatchProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	ImageURL      *string          `json:"image_url"`
	StockQuantity *int             `json:"stock_quantity"`
	CategoryID    *int64           `json:"category_id"`
	ArtisanID     *int64           `json:"artisan_id"`
}

type SearchResponse struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	Size     int   `json:"size"`
	Products any   `json:"products"`
}
