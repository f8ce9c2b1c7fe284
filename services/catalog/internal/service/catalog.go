package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/artisan_shop/pkg/events"
	"github.com/Skotchmaster/artisan_shop/pkg/logging"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/transport"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrSearchDisabled = errors.New("search is not configured")
)

// ProductIndex mirrors the product view into a search engine.
type ProductIndex interface {
	Put(ctx context.Context, p models.ProductView) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.ProductView, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Index may be nil; search then reports ErrSearchDisabled.
	Index ProductIndex
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *CatalogService) ListArtisans(ctx context.Context) ([]models.Artisan, error) {
	return s.Repo.ListArtisans(ctx)
}

func (s *CatalogService) GetArtisan(ctx context.Context, id int64) (*models.Artisan, error) {
	a, err := s.Repo.GetArtisan(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.ProductView, error) {
	return s.Repo.ListProducts(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.ProductView, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.ProductView, error) {
	if s.Index == nil {
		return 0, nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: empty query", ErrValidation)
	}
	return s.Index.Search(ctx, query, offset, limit)
}

func (s *CatalogService) checkRefs(ctx context.Context, categoryID, artisanID int64) error {
	ok, err := s.Repo.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: category %d does not exist", ErrValidation, categoryID)
	}
	ok, err = s.Repo.ArtisanExists(ctx, artisanID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: artisan %d does not exist", ErrValidation, artisanID)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.ProductView, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	switch {
	case req.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	case req.Description == "":
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	case req.Price == nil:
		return nil, fmt.Errorf("%w: price is required", ErrValidation)
	case req.Price.IsNegative():
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	case req.StockQuantity != nil && *req.StockQuantity < 0:
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if err := s.checkRefs(ctx, req.CategoryID, req.ArtisanID); err != nil {
		return nil, err
	}

	stock := 1
	if req.StockQuantity != nil {
		stock = *req.StockQuantity
	}
	prod, err := s.Repo.CreateProduct(ctx, &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		ImageURL:      req.ImageURL,
		CategoryID:    req.CategoryID,
		ArtisanID:     req.ArtisanID,
		StockQuantity: stock,
	})
	if err != nil {
		return nil, err
	}

	view, err := s.Repo.GetProduct(ctx, prod.ID)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "product_created", view)
	return view, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id int64) (*models.ProductView, error) {
	switch {
	case req.Name != nil && strings.TrimSpace(*req.Name) == "":
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	case req.Description != nil && strings.TrimSpace(*req.Description) == "":
		return nil, fmt.Errorf("%w: description cannot be empty", ErrValidation)
	case req.Price != nil && req.Price.IsNegative():
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	case req.StockQuantity != nil && *req.StockQuantity < 0:
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}

	current, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if req.CategoryID != nil || req.ArtisanID != nil {
		categoryID, artisanID := current.CategoryID, current.ArtisanID
		if req.CategoryID != nil {
			categoryID = *req.CategoryID
		}
		if req.ArtisanID != nil {
			artisanID = *req.ArtisanID
		}
		if err := s.checkRefs(ctx, categoryID, artisanID); err != nil {
			return nil, err
		}
	}

	if _, err := s.Repo.PatchProduct(ctx, req, id); err != nil {
		return nil, notFound(err)
	}
	view, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	s.afterWrite(ctx, "product_updated", view)
	return view, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err)
	}

	l := logging.FromContext(ctx)
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	events.Publish(ctx, s.Events, events.TopicProducts, strconv.FormatInt(id, 10), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	return nil
}

// afterWrite keeps the search index and the event stream in step with a
// product write. Both are best effort.
func (s *CatalogService) afterWrite(ctx context.Context, eventType string, p *models.ProductView) {
	if s.Index != nil {
		if err := s.Index.Put(ctx, *p); err != nil {
			logging.FromContext(ctx).Warn("search_index_put_failed", "product_id", p.ID, "error", err)
		}
	}
	events.Publish(ctx, s.Events, events.TopicProducts, strconv.FormatInt(p.ID, 10), map[string]any{
		"type":        eventType,
		"product_id":  p.ID,
		"name":        p.Name,
		"price":       p.Price.String(),
		"artisan_id":  p.ArtisanID,
		"category_id": p.CategoryID,
	})
}

// Reindex pushes every product into the search index.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, ErrSearchDisabled
	}
	items, err := s.Repo.ListProducts(ctx, models.ProductFilter{})
	if err != nil {
		return 0, err
	}
	for n, p := range items {
		if err := s.Index.Put(ctx, p); err != nil {
			return n, err
		}
	}
	return len(items), nil
}
