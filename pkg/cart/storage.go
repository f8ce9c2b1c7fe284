package cart

import (
	"context"
	"errors"
	"sync"
)

const SlotName = "cartItems"

var (
	ErrNoRecord    = errors.New("cart: no record")
	ErrUnavailable = errors.New("cart: storage unavailable")
)

// Storage persists the whole cart blob under a single key.
type Storage interface {
	// Load returns ErrNoRecord when the slot is absent.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Notifier is implemented by storages that can tell when a key was written
// by any writer sharing the backend. The channel is closed when ctx ends.
type Notifier interface {
	Changes(ctx context.Context, key string) (<-chan struct{}, error)
}

func SlotKey(visitor string) string {
	return "cart:" + visitor + ":" + SlotName
}

type MemoryStorage struct {
	mu       sync.Mutex
	data     map[string][]byte
	watchers map[string]map[chan struct{}]struct{}
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data:     make(map[string][]byte),
		watchers: make(map[string]map[chan struct{}]struct{}),
	}
}

func (m *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNoRecord
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	m.notifyLocked(key)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.notifyLocked(key)
	return nil
}

func (m *MemoryStorage) notifyLocked(key string) {
	for ch := range m.watchers[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (m *MemoryStorage) Changes(ctx context.Context, key string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	if m.watchers[key] == nil {
		m.watchers[key] = make(map[chan struct{}]struct{})
	}
	m.watchers[key][ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers[key], ch)
		if len(m.watchers[key]) == 0 {
			delete(m.watchers, key)
		}
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}

// UnavailableStorage stands in for disabled persistence.
type UnavailableStorage struct{}

func (UnavailableStorage) Load(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }

func (UnavailableStorage) Save(context.Context, string, []byte) error { return ErrUnavailable }

func (UnavailableStorage) Delete(context.Context, string) error { return ErrUnavailable }
