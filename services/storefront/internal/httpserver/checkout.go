package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	"github.com/Skotchmaster/artisan_shop/pkg/session"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/service"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/transport"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/visitor"
)

type CheckoutHTTP struct {
	Svc *service.CartService
}

// Summary is what the checkout page shows before the form is submitted.
func (h *CheckoutHTTP) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	return envelope.OK(c, http.StatusOK, h.Svc.Get(ctx, visitor.FromContext(c)))
}

func (h *CheckoutHTTP) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.checkout")

	var form transport.CheckoutForm
	if err := c.Bind(&form); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "invalid body")
	}

	s := session.FromContext(c)
	res, err := h.Svc.Checkout(ctx, visitor.FromContext(c), s.UserID, form)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("checkout_error", "status", 400, "error", err)
			return envelope.Fail(c, http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
		case errors.Is(err, service.ErrEmptyCart):
			l.Warn("checkout_error", "status", 400, "reason", "empty cart")
			return envelope.Fail(c, http.StatusBadRequest, "Your cart is empty. Please add items before checking out.")
		default:
			l.Error("checkout_error", "status", 500, "error", err)
			return envelope.Fail(c, http.StatusInternalServerError, "checkout failed")
		}
	}

	return c.JSON(http.StatusOK, res)
}
