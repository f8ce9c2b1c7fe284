package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps cart slots in Redis and announces every write on a
// per-key pub/sub channel so other replicas can refresh.
type RedisStorage struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStorage(client redis.UniversalClient, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func changesChannel(key string) string {
	return "cart-changes:" + key
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (r *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", ErrUnavailable, err)
	}
	r.announce(ctx, key, "saved")
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", ErrUnavailable, err)
	}
	r.announce(ctx, key, "deleted")
	return nil
}

// announce is best effort; watchers also poll.
func (r *RedisStorage) announce(ctx context.Context, key, what string) {
	_ = r.client.Publish(ctx, changesChannel(key), what).Err()
}

func (r *RedisStorage) Changes(ctx context.Context, key string) (<-chan struct{}, error) {
	sub := r.client.Subscribe(ctx, changesChannel(key))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%w: redis subscribe: %v", ErrUnavailable, err)
	}

	out := make(chan struct{}, 1)
	msgs := sub.Channel()
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, nil
}
