package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artisan_shop/pkg/cart"
	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/service"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/transport"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/visitor"
)

type CartHTTP struct {
	Svc *service.CartService
}

func lineID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	return envelope.OK(c, http.StatusOK, h.Svc.Get(ctx, visitor.FromContext(c)))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.add_cart_item")

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_cart_item_error", "status", 400, "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "invalid body")
	}

	v, err := h.Svc.AddProduct(ctx, visitor.FromContext(c), req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("add_cart_item_error", "status", 400, "error", err)
			return envelope.Fail(c, http.StatusBadRequest, "product_id is required")
		case errors.Is(err, service.ErrProductNotFound):
			l.Warn("add_cart_item_error", "status", 404, "product_id", req.ProductID)
			return envelope.Fail(c, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", req.ProductID))
		default:
			l.Error("add_cart_item_error", "status", 502, "error", err)
			return envelope.Fail(c, http.StatusBadGateway, "Failed to add item to cart")
		}
	}

	return envelope.OKMessage(c, http.StatusOK, "Item added to cart", v)
}

// quantityFrom passes a JSON number through as is, so 0 or less removes the
// line. Strings and anything else go through cart.ParseQuantity.
func quantityFrom(raw json.RawMessage) int {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, `"`) {
		var n json.Number
		if err := json.Unmarshal([]byte(s), &n); err == nil {
			if v, err := n.Int64(); err == nil && v >= math.MinInt32 && v <= math.MaxInt32 {
				return int(v)
			}
		}
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return cart.ParseQuantity(s)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.update_cart_item")

	id, ok := lineID(c)
	if !ok {
		l.Warn("update_cart_item_error", "status", 400, "id", c.Param("id"))
		return envelope.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}

	var req transport.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_item_error", "status", 400, "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "invalid body")
	}

	return envelope.OK(c, http.StatusOK, h.Svc.UpdateQuantity(ctx, visitor.FromContext(c), id, quantityFrom(req.Quantity)))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := lineID(c)
	if !ok {
		return envelope.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}
	return envelope.OK(c, http.StatusOK, h.Svc.Remove(ctx, visitor.FromContext(c), id))
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	h.Svc.Clear(ctx, visitor.FromContext(c))
	return envelope.OKMessage(c, http.StatusOK, "Cart cleared", nil)
}

func (h *CartHTTP) Count(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, transport.CountResponse{Count: h.Svc.Count(ctx, visitor.FromContext(c))})
}

// Stream keeps a text/event-stream open and sends a "cart" event with the
// badge figures whenever the visitor's cart changes.
func (h *CartHTTP) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.cart_stream")

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	err := h.Svc.Stream(ctx, visitor.FromContext(c), func(b transport.BadgeEvent) {
		data, err := json.Marshal(b)
		if err != nil {
			l.Error("cart_stream_encode_error", "error", err)
			return
		}
		if _, err := fmt.Fprintf(res, "event: cart\ndata: %s\n\n", data); err != nil {
			l.Debug("cart_stream_write_error", "error", err)
			return
		}
		res.Flush()
	})
	if err != nil {
		l.Warn("cart_stream_error", "error", err)
	}
	return nil
}
