package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/artisan_shop/pkg/cart"
	"github.com/Skotchmaster/artisan_shop/pkg/catalogclient"
	"github.com/Skotchmaster/artisan_shop/pkg/events"
	"github.com/Skotchmaster/artisan_shop/pkg/pricing"
	"github.com/Skotchmaster/artisan_shop/services/storefront/internal/transport"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrEmptyCart          = errors.New("cart is empty")
)

type ProductSource interface {
	GetProduct(ctx context.Context, id int64) (*catalogclient.Product, error)
}

// CartService opens the visitor's cart store for each call. Stores are not
// shared between requests, so concurrent requests for one visitor race and
// the last write wins.
type CartService struct {
	Storage      cart.Storage
	Catalog      ProductSource
	Events       events.Publisher
	PollInterval time.Duration
}

// open returns the visitor's store with an observer that publishes every
// change as a cart event of the given type.
func (s *CartService) open(ctx context.Context, visitorID, eventType string, extra map[string]any) (*cart.Store, func()) {
	st := cart.NewStore(s.Storage, cart.SlotKey(visitorID))
	if s.Events == nil {
		return st, func() {}
	}
	unsubscribe := st.Subscribe(func(ch cart.Change) {
		event := map[string]any{
			"type":       eventType,
			"visitor_id": visitorID,
			"count":      ch.Count,
			"total":      ch.Total.String(),
		}
		for k, v := range extra {
			event[k] = v
		}
		events.Publish(ctx, s.Events, events.TopicCarts, visitorID, event)
	})
	return st, unsubscribe
}

func view(items []cart.LineItem) transport.CartView {
	summary := pricing.Summarize(items)
	return transport.CartView{
		Items:   items,
		Count:   cart.Count(items),
		Summary: summary,
		Display: summary.Display(),
	}
}

func (s *CartService) Get(ctx context.Context, visitorID string) transport.CartView {
	st := cart.NewStore(s.Storage, cart.SlotKey(visitorID))
	return view(st.Items(ctx))
}

func (s *CartService) Count(ctx context.Context, visitorID string) int {
	return cart.NewStore(s.Storage, cart.SlotKey(visitorID)).ItemCount(ctx)
}

// AddProduct copies the product's display fields and current price into the
// cart. The price is not looked up again later.
func (s *CartService) AddProduct(ctx context.Context, visitorID string, productID int64) (transport.CartView, error) {
	if productID <= 0 {
		return transport.CartView{}, fmt.Errorf("%w: product_id is required", ErrValidation)
	}

	p, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		if catalogclient.IsNotFound(err) {
			return transport.CartView{}, ErrProductNotFound
		}
		return transport.CartView{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	st, unsubscribe := s.open(ctx, visitorID, "cart_item_added", map[string]any{"product_id": p.ID})
	defer unsubscribe()

	st.Add(ctx, cart.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		ArtisanName: p.ArtisanName,
	})
	return view(st.Items(ctx)), nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, visitorID string, productID int64, quantity int) transport.CartView {
	eventType := "cart_item_updated"
	if quantity <= 0 {
		eventType = "cart_item_removed"
	}
	st, unsubscribe := s.open(ctx, visitorID, eventType, map[string]any{"product_id": productID, "quantity": quantity})
	defer unsubscribe()

	st.UpdateQuantity(ctx, productID, quantity)
	return view(st.Items(ctx))
}

func (s *CartService) Remove(ctx context.Context, visitorID string, productID int64) transport.CartView {
	st, unsubscribe := s.open(ctx, visitorID, "cart_item_removed", map[string]any{"product_id": productID})
	defer unsubscribe()

	st.Remove(ctx, productID)
	return view(st.Items(ctx))
}

func (s *CartService) Clear(ctx context.Context, visitorID string) {
	st, unsubscribe := s.open(ctx, visitorID, "cart_cleared", nil)
	defer unsubscribe()

	st.Clear(ctx)
}

// Stream calls fn with the current badge and then once per change to the
// visitor's cart, whoever made it, until ctx ends.
func (s *CartService) Stream(ctx context.Context, visitorID string, fn func(transport.BadgeEvent)) error {
	st := cart.NewStore(s.Storage, cart.SlotKey(visitorID))

	items := st.Items(ctx)
	fn(badge(cart.Change{Items: items, Count: cart.Count(items), Total: cart.Total(items)}))

	unsubscribe := st.Subscribe(func(ch cart.Change) { fn(badge(ch)) })
	defer unsubscribe()

	return st.Watch(ctx, s.PollInterval)
}

func badge(ch cart.Change) transport.BadgeEvent {
	return transport.BadgeEvent{
		Count:        ch.Count,
		Total:        ch.Total,
		TotalDisplay: pricing.FormatUSD(ch.Total),
	}
}
