package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Skotchmaster/artisan_shop/pkg/cart"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	"github.com/Skotchmaster/artisan_shop/pkg/pricing"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/transport"
)

const (
	CheckoutRedirect = "/shop/orders?success=true"
	checkoutMessage  = "Order placed successfully!"
)

func validateCheckout(f transport.CheckoutForm) error {
	required := []struct{ name, value string }{
		{"fullName", f.FullName},
		{"email", f.Email},
		{"address", f.Address},
		{"city", f.City},
		{"state", f.State},
		{"zipCode", f.ZipCode},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return nil
}

// Checkout prices the cart and empties it. Nothing is persisted and prices
// are the ones copied when the items were added.
func (s *CartService) Checkout(ctx context.Context, visitorID, userID string, form transport.CheckoutForm) (transport.CheckoutResponse, error) {
	l := logging.FromContext(ctx).With("svc", "storefront.checkout", "user_id", userID)

	if err := validateCheckout(form); err != nil {
		return transport.CheckoutResponse{}, err
	}

	st := cart.NewStore(s.Storage, cart.SlotKey(visitorID))
	items := st.Items(ctx)
	if len(items) == 0 {
		return transport.CheckoutResponse{}, ErrEmptyCart
	}
	summary := pricing.Summarize(items)

	st, unsubscribe := s.open(ctx, visitorID, "checkout_completed", map[string]any{
		"user_id":     userID,
		"items":       cart.Count(items),
		"grand_total": summary.GrandTotal.String(),
	})
	defer unsubscribe()
	st.Clear(ctx)

	l.Info("checkout_completed", "items", len(items), "grand_total", summary.GrandTotal.String())
	return transport.CheckoutResponse{
		Success:  true,
		Message:  checkoutMessage,
		Summary:  summary,
		Display:  summary.Display(),
		Redirect: CheckoutRedirect,
	}, nil
}
