package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artisan_shop/pkg/catalogclient"
	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	"github.com/Skotchmaster/artisan_shop/pkg/session"
)

type ProductAdmin interface {
	CreateProduct(ctx context.Context, in catalogclient.ProductInput, cookies []*http.Cookie) (*catalogclient.Product, error)
	UpdateProduct(ctx context.Context, id int64, in catalogclient.ProductInput, cookies []*http.Cookie) (*catalogclient.Product, error)
	DeleteProduct(ctx context.Context, id int64, cookies []*http.Cookie) error
}

// AdminHTTP backs the admin product forms. The session is checked here and
// again by the catalog, which receives the caller's cookies.
type AdminHTTP struct {
	Catalog   ProductAdmin
	JWTSecret []byte
}

func (h *AdminHTTP) requireAdmin(c echo.Context) bool {
	return session.Resolve(c, h.JWTSecret).IsAdmin()
}

// catalogFailure passes catalog rejections through and turns transport
// failures into 502.
func catalogFailure(c echo.Context, l *slog.Logger, event string, err error) error {
	var apiErr *catalogclient.APIError
	if errors.As(err, &apiErr) {
		l.Warn(event, "status", apiErr.Status, "error", err)
		return envelope.Fail(c, apiErr.Status, apiErr.Message)
	}
	l.Error(event, "status", 502, "error", err)
	return envelope.Fail(c, http.StatusBadGateway, "catalog service unavailable")
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.admin_create_product")

	if !h.requireAdmin(c) {
		l.Warn("admin_create_product_error", "status", 403)
		return envelope.Fail(c, http.StatusForbidden, "admin access required")
	}

	var in catalogclient.ProductInput
	if err := c.Bind(&in); err != nil {
		l.Warn("admin_create_product_error", "status", 400, "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "invalid body")
	}

	p, err := h.Catalog.CreateProduct(ctx, in, c.Request().Cookies())
	if err != nil {
		return catalogFailure(c, l, "admin_create_product_error", err)
	}
	return envelope.OKMessage(c, http.StatusCreated, "Product created", p)
}

func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.admin_update_product")

	if !h.requireAdmin(c) {
		l.Warn("admin_update_product_error", "status", 403)
		return envelope.Fail(c, http.StatusForbidden, "admin access required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return envelope.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}

	var in catalogclient.ProductInput
	if err := c.Bind(&in); err != nil {
		l.Warn("admin_update_product_error", "status", 400, "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "invalid body")
	}

	p, err := h.Catalog.UpdateProduct(ctx, id, in, c.Request().Cookies())
	if err != nil {
		return catalogFailure(c, l, "admin_update_product_error", err)
	}
	return envelope.OKMessage(c, http.StatusOK, "Product updated", p)
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.admin_delete_product")

	if !h.requireAdmin(c) {
		l.Warn("admin_delete_product_error", "status", 403)
		return envelope.Fail(c, http.StatusForbidden, "admin access required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return envelope.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}

	if err := h.Catalog.DeleteProduct(ctx, id, c.Request().Cookies()); err != nil {
		return catalogFailure(c, l, "admin_delete_product_error", err)
	}
	return envelope.OKMessage(c, http.StatusOK, "Product deleted", nil)
}
