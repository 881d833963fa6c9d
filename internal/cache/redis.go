package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps route-search results warm. Entries expire on their
// own and are invalidated eagerly when a flight on the route changes.
type RedisCache struct {
	client   *redis.Client
	routeTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, routeTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		routeTTL: routeTTL,
	}
}

func (c *RedisCache) GetRoute(ctx context.Context, src, dest string) ([]domain.FlightDetails, error) {
	data, err := c.client.Get(ctx, routeCacheKey(src, dest)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.FlightDetails
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetRoute(ctx context.Context, src, dest string, flights []domain.FlightDetails) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, routeCacheKey(src, dest), payload, c.routeTTL).Err()
}

func (c *RedisCache) InvalidateRoute(ctx context.Context, src, dest string) error {
	return c.client.Del(ctx, routeCacheKey(src, dest)).Err()
}

func routeCacheKey(src, dest string) string {
	return fmt.Sprintf("cache:route:%s:%s", src, dest)
}
