// Package cache contiene los backends de la caché TTL de market data.
// La caché es una instancia inyectada, no un singleton a nivel de módulo.
package cache

import (
	"context"
	"sync"
	"time"
)

// entry es un valor cacheado con su momento de expiración.
type entry struct {
	data   []byte
	expiry time.Time
}

// Memory implementa ports.Cache en memoria de proceso. Suficiente para un
// deployment de una réplica; con varias réplicas usar el backend Redis.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory crea una caché en memoria vacía.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get devuelve el valor cacheado y true, o false si no existe o expiró.
// Las entradas expiradas se eliminan al tocarlas.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiry) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set guarda el valor con el TTL dado.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{
		data:   value,
		expiry: m.now().Add(ttl),
	}
	return nil
}

// Has indica si la key existe y no está expirada.
func (m *Memory) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := m.Get(ctx, key)
	return ok, err
}
