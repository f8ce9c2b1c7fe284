// Package cart keeps a visitor's cart as one persisted blob.
//
// Every mutation is a full read-modify-write of the slot, persisted before the
// call returns. A Store serializes its own calls; two Stores over the same
// slot race and the last write wins. Storage failures never reach the
// caller: reads degrade to an empty cart and writes are dropped.
package cart

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/artisan_shop/pkg/logging"
)

// Change is the cart as it stands after a mutation or an observed external
// write.
type Change struct {
	Items []LineItem
	Count int
	Total decimal.Decimal
}

func snapshot(items []LineItem) Change {
	if items == nil {
		items = []LineItem{}
	}
	return Change{Items: items, Count: Count(items), Total: Total(items)}
}

type Store struct {
	storage Storage
	key     string

	mu   sync.Mutex
	seen []byte

	subsMu sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

func NewStore(storage Storage, key string) *Store {
	return &Store{
		storage: storage,
		key:     key,
		subs:    make(map[int]func(Change)),
	}
}

func (s *Store) Key() string { return s.key }

// load reads and decodes the slot. ok is false only when the storage itself
// failed; an absent or malformed record is an empty cart.
func (s *Store) load(ctx context.Context) (items []LineItem, ok bool) {
	l := logging.FromContext(ctx).With("cart_key", s.key)

	data, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, ErrNoRecord) {
		s.seen = nil
		return []LineItem{}, true
	}
	if err != nil {
		l.Warn("cart_load_failed", "error", err)
		return []LineItem{}, false
	}
	s.seen = data

	items, err = decode(data)
	if err != nil {
		l.Warn("cart_record_malformed", "error", err)
		return []LineItem{}, true
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, true
}

func (s *Store) persist(ctx context.Context, items []LineItem) bool {
	l := logging.FromContext(ctx).With("cart_key", s.key)

	data, err := encode(items)
	if err != nil {
		l.Error("cart_encode_failed", "error", err)
		return false
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		l.Warn("cart_save_failed", "error", err)
		return false
	}
	s.seen = data
	return true
}

// mutate runs fn over the current items and persists the result when fn
// reports a change.
func (s *Store) mutate(ctx context.Context, fn func([]LineItem) ([]LineItem, bool)) {
	s.mu.Lock()
	items, ok := s.load(ctx)
	if !ok {
		s.mu.Unlock()
		return
	}
	items, changed := fn(items)
	if !changed || !s.persist(ctx, items) {
		s.mu.Unlock()
		return
	}
	ch := snapshot(items)
	s.mu.Unlock()

	s.notify(ch)
}

func (s *Store) Items(ctx context.Context) []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, _ := s.load(ctx)
	return items
}

// Add increments the quantity of an existing line by one, or appends a new
// line with quantity 1.
func (s *Store) Add(ctx context.Context, p Product) {
	s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		for i := range items {
			if items[i].ID == p.ID {
				items[i].Quantity++
				return items, true
			}
		}
		return append(items, LineItem{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			Quantity:    1,
			ArtisanName: p.ArtisanName,
		}), true
	})
}

// UpdateQuantity sets the quantity of line id. A quantity of zero or less
// removes the line. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id int64, quantity int) {
	s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if quantity <= 0 {
				return append(items[:i], items[i+1:]...), true
			}
			items[i].Quantity = quantity
			return items, true
		}
		return items, false
	})
}

func (s *Store) Remove(ctx context.Context, id int64) {
	s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), true
			}
		}
		return items, false
	})
}

// Clear deletes the slot. Clearing an absent slot is a no-op and notifies
// nobody.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	if _, err := s.storage.Load(ctx, s.key); errors.Is(err, ErrNoRecord) {
		s.seen = nil
		s.mu.Unlock()
		return
	}
	if err := s.storage.Delete(ctx, s.key); err != nil {
		logging.FromContext(ctx).Warn("cart_clear_failed", "cart_key", s.key, "error", err)
		s.mu.Unlock()
		return
	}
	s.seen = nil
	s.mu.Unlock()

	s.notify(snapshot(nil))
}

// ItemCount is the sum of quantities, read from storage on every call.
func (s *Store) ItemCount(ctx context.Context) int {
	return Count(s.Items(ctx))
}

func (s *Store) Total(ctx context.Context) decimal.Decimal {
	return Total(s.Items(ctx))
}

// Subscribe registers fn for every change made through this Store or
// observed by Watch. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Store) notify(ch Change) {
	s.subsMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}

// refresh re-reads the slot and notifies subscribers when its content differs
// from what this Store last read or wrote.
func (s *Store) refresh(ctx context.Context) {
	s.mu.Lock()
	data, err := s.storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, ErrNoRecord):
		data = nil
	case err != nil:
		s.mu.Unlock()
		logging.FromContext(ctx).Debug("cart_refresh_failed", "cart_key", s.key, "error", err)
		return
	}
	if bytes.Equal(data, s.seen) {
		s.mu.Unlock()
		return
	}
	s.seen = data

	var items []LineItem
	if data != nil {
		if items, err = decode(data); err != nil {
			items = nil
		}
	}
	ch := snapshot(items)
	s.mu.Unlock()

	s.notify(ch)
}

// Watch follows writes made by other Stores over the same slot until ctx
// ends. It reacts to the storage's change notifications when it has them
// and also re-reads every interval when interval > 0. Both are best effort.
func (s *Store) Watch(ctx context.Context, interval time.Duration) error {
	var changes <-chan struct{}
	if n, ok := s.storage.(Notifier); ok {
		ch, err := n.Changes(ctx, s.key)
		if err != nil {
			if interval <= 0 {
				return err
			}
			logging.FromContext(ctx).Warn("cart_watch_notifier_failed", "cart_key", s.key, "error", err)
		} else {
			changes = ch
		}
	}

	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	s.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			s.refresh(ctx)
		case <-tick:
			s.refresh(ctx)
		}
	}
}
