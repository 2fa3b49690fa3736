package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implementa ports.Cache sobre Redis, para deployments con varias
// réplicas del servidor compartiendo la caché de market data.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis crea la caché sobre el cliente dado. prefix separa las keys de
// este servicio de otros usos del mismo Redis.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "retrotoken"
	}
	return &Redis{client: client, prefix: prefix}
}

// Get devuelve el valor cacheado y true, o false si no existe.
// La expiración la gestiona Redis con el TTL del Set.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache.Get %q: %w", key, err)
	}
	return data, true, nil
}

// Set guarda el valor con el TTL dado.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache.Set %q: %w", key, err)
	}
	return nil
}

// Has indica si la key existe.
func (r *Redis) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache.Has %q: %w", key, err)
	}
	return n > 0, nil
}

// key construye la key con el prefijo del servicio.
func (r *Redis) key(k string) string {
	return r.prefix + ":" + k
}
