package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LineItem is one product in the cart. ID is the product id and the line
// key; display fields and Price are copied when the product is first added.
type LineItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Quantity    int             `json:"quantity"`
	ArtisanName string          `json:"artisan_name"`
}

// MarshalJSON writes price as a JSON number. Decoding accepts a number or a
// quoted string.
func (i LineItem) MarshalJSON() ([]byte, error) {
	type record struct {
		ID          int64       `json:"id"`
		Name        string      `json:"name"`
		Price       json.Number `json:"price"`
		ImageURL    string      `json:"image_url"`
		Quantity    int         `json:"quantity"`
		ArtisanName string      `json:"artisan_name"`
	}
	return json.Marshal(record{
		ID:          i.ID,
		Name:        i.Name,
		Price:       json.Number(i.Price.String()),
		ImageURL:    i.ImageURL,
		Quantity:    i.Quantity,
		ArtisanName: i.ArtisanName,
	})
}

func (i LineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Product is what the catalog hands over when a visitor adds to cart.
type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	ImageURL    string
	ArtisanName string
}

func encode(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

func decode(data []byte) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func Count(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
