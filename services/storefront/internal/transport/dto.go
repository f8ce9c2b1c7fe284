package transport

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/artisan_shop/pkg/cart"
	"github.com/Skotchmaster/artisan_shop/pkg/pricing"
)

type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
}

// UpdateQuantityRequest takes the quantity as a JSON number or string, the
// way a form field arrives.
type UpdateQuantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

type CartView struct {
	Items   []cart.LineItem `json:"items"`
	Count   int             `json:"count"`
	Summary pricing.Summary `json:"summary"`
	Display pricing.Display `json:"display"`
}

type CountResponse struct {
	Count int `json:"count"`
}

// BadgeEvent is one message of the cart stream.
type BadgeEvent struct {
	Count        int             `json:"count"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
}

type CheckoutForm struct {
	FullName   string `json:"fullName"   form:"fullName"`
	Email      string `json:"email"      form:"email"`
	Address    string `json:"address"    form:"address"`
	City       string `json:"city"       form:"city"`
	State      string `json:"state"      form:"state"`
	ZipCode    string `json:"zipCode"    form:"zipCode"`
	CardNumber string `json:"cardNumber" form:"cardNumber"`
	CardExpiry string `json:"cardExpiry" form:"cardExpiry"`
	CardCVV    string `json:"cardCvv"    form:"cardCvv"`
}

type CheckoutResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Summary  pricing.Summary `json:"summary"`
	Display  pricing.Display `json:"display"`
	Redirect string          `json:"redirect"`
}
