package ports

import (
	"context"
	"time"
)

// Cache es la caché TTL de respuestas del gateway de market data. Es una
// instancia inyectada por referencia, no un singleton a nivel de módulo.
type Cache interface {
	// Get devuelve el valor cacheado y true, o false si no existe o expiró.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set guarda el valor con el TTL dado.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Has indica si la key existe y no está expirada.
	Has(ctx context.Context, key string) (bool, error)
}
