package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/service"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/transport"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListArtisans(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_artisans")

	items, err := h.Svc.ListArtisans(ctx)
	if err != nil {
		l.Error("list_artisans_error", "status", 500, "error", err)
		return envelope.Fail(c, http.StatusInternalServerError, "An error occurred while fetching artisans data")
	}
	return envelope.OK(c, http.StatusOK, items)
}

func (h *CatalogHTTP) GetArtisan(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_artisan")

	idParam := c.Param("id")
	id, ok := util.ParseID(idParam)
	if !ok {
		l.Warn("get_artisan_error", "status", 400, "reason", "id is not an integer", "id", idParam)
		return envelope.Fail(c, http.StatusBadRequest, "Invalid artisan ID")
	}

	artisan, err := h.Svc.GetArtisan(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_artisan_error", "status", 404, "id", id)
			return envelope.Fail(c, http.StatusNotFound, fmt.Sprintf("Artisan with ID %d not found", id))
		}
		l.Error("get_artisan_error", "status", 500, "error", err)
		return envelope.Fail(c, http.StatusInternalServerError, "An error occurred while fetching artisan data")
	}
	return envelope.OK(c, http.StatusOK, artisan)
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	items, err := h.Svc.ListCategories(ctx)
	if err != nil {
		l.Error("list_categories_error", "status", 500, "error", err)
		return envelope.Fail(c, http.StatusInternalServerError, "An error occurred while fetching categories data")
	}
	return envelope.OK(c, http.StatusOK, items)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	var f models.ProductFilter
	if v := c.QueryParam("artisan_id"); v != "" {
		id, ok := util.ParseID(v)
		if !ok {
			l.Warn("list_products_error", "status", 400, "reason", "bad artisan_id", "artisan_id", v)
			return envelope.Fail(c, http.StatusBadRequest, "Invalid artisan_id")
		}
		f.ArtisanID = id
	}
	if v := c.QueryParam("category_id"); v != "" {
		id, ok := util.ParseID(v)
		if !ok {
			l.Warn("list_products_error", "status", 400, "reason", "bad category_id", "category_id", v)
			return envelope.Fail(c, http.StatusBadRequest, "Invalid category_id")
		}
		f.CategoryID = id
	}

	items, err := h.Svc.ListProducts(ctx, f)
	if err != nil {
		l.Error("list_products_error", "status", 500, "error", err)
		return envelope.Fail(c, http.StatusInternalServerError, "An error occurred while fetching products data")
	}
	return envelope.OK(c, http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		l.Warn("get_product_error", "status", 400, "reason", "id is not an integer")
		return envelope.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_error", "status", 404, "id", id)
			return envelope.Fail(c, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		}
		l.Error("get_product_error", "status", 500, "error", err)
		return envelope.Fail(c, http.StatusInternalServerError, "An error occurred while fetching product data")
	}
	return envelope.OK(c, http.StatusOK, p)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	switch {
	case errors.Is(err, service.ErrSearchDisabled):
		l.Warn("search_products_error", "status", 503, "error", err)
		return envelope.Fail(c, http.StatusServiceUnavailable, "Search is not available")
	case errors.Is(err, service.ErrValidation):
		l.Warn("search_products_error", "status", 400, "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "Query is required")
	case err != nil:
		l.Error("search_products_error", "status", 502, "error", err)
		return envelope.Fail(c, http.StatusBadGateway, "Search failed")
	}

	return envelope.OK(c, http.StatusOK, transport.SearchResponse{
		Total:    total,
		Page:     max(page, 1),
		Size:     limit,
		Products: items,
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "Invalid request body")
	}

	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("product_create_error", "status", 400, "error", err)
			return envelope.Fail(c, http.StatusBadRequest, err.Error())
		}
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return envelope.Fail(c, http.StatusInternalServerError, "An error occurred while creating the product")
	}

	l.Info("create_product_success", "product_id", p.ID)
	return envelope.OKMessage(c, http.StatusCreated, "Product created", p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		l.Warn("product_patch_error", "status", 400, "reason", "id is not an integer")
		return envelope.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return envelope.Fail(c, http.StatusBadRequest, "Invalid request body")
	}

	p, err := h.Svc.PatchProduct(ctx, req, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("product_patch_error", "status", 404, "id", id)
			return envelope.Fail(c, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_patch_error", "status", 400, "error", err)
			return envelope.Fail(c, http.StatusBadRequest, err.Error())
		}
		l.Error("product_patch_error", "status", 500, "error", err)
		return envelope.Fail(c, http.StatusInternalServerError, "An error occurred while updating the product")
	}

	l.Info("patch_product_success", "product_id", id)
	return envelope.OKMessage(c, http.StatusOK, "Product updated", p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not an integer")
		return envelope.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("product_delete_error", "status", 404, "id", id)
			return envelope.Fail(c, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		}
		l.Error("product_delete_error", "status", 500, "error", err)
		return envelope.Fail(c, http.StatusInternalServerError, "An error occurred while deleting the product")
	}

	l.Info("delete_product_success", "product_id", id)
	return envelope.OKMessage(c, http.StatusOK, "Product deleted", nil)
}
