package storage

// jsonfile.go — variante de store sin base de datos: el watchlist entero vive
// en un archivo JSON plano. Es el backend para deployments locales de un solo
// usuario (el equivalente al watchlist de localStorage del frontend original),
// detrás de la misma interfaz ports.WatchlistStore que el backend SQLite.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

// JSONFileStore implementa ports.WatchlistStore sobre un archivo JSON.
// Todas las operaciones se serializan con un mutex: el archivo entero se
// reescribe en cada mutación, lo que hace el check-and-insert atómico.
type JSONFileStore struct {
	path  string
	mu    sync.Mutex
	items map[string][]domain.WatchlistItem // userId → filas
}

// NewJSONFileStore abre (o crea) el archivo en la ruta dada y carga su contenido.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{
		path:  path,
		items: make(map[string][]domain.WatchlistItem),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.NewJSONFileStore: read %q: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		return nil, fmt.Errorf("storage.NewJSONFileStore: parse %q: %w", path, err)
	}

	return s, nil
}

// ListByUser devuelve las filas del usuario, las más recientes primero.
func (s *JSONFileStore) ListByUser(_ context.Context, userID string) ([]domain.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.WatchlistItem, len(s.items[userID]))
	copy(items, s.items[userID])

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// Exists indica si el par (userId, assetId) está en el archivo.
func (s *JSONFileStore) Exists(_ context.Context, userID, assetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(userID, assetID) >= 0, nil
}

// Insert añade la fila y reescribe el archivo.
// Devuelve domain.ErrConflict si el par ya existe.
func (s *JSONFileStore) Insert(_ context.Context, userID, assetID string) (domain.WatchlistItem, error) {
	if userID == "" || assetID == "" {
		return domain.WatchlistItem{}, domain.ErrInvalidAsset
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(userID, assetID) >= 0 {
		return domain.WatchlistItem{}, domain.ErrConflict
	}

	item := domain.WatchlistItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		AssetID:   assetID,
		CreatedAt: time.Now().UTC(),
	}
	s.items[userID] = append(s.items[userID], item)

	if err := s.persist(); err != nil {
		// revertir: el archivo es la fuente de verdad
		s.items[userID] = s.items[userID][:len(s.items[userID])-1]
		return domain.WatchlistItem{}, err
	}
	return item, nil
}

// DeleteByUserAndAsset borra la fila del par y devuelve cuántas eliminó.
func (s *JSONFileStore) DeleteByUserAndAsset(_ context.Context, userID, assetID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(userID, assetID)
	if i < 0 {
		return 0, nil
	}

	removed := s.items[userID][i]
	s.items[userID] = append(s.items[userID][:i], s.items[userID][i+1:]...)

	if err := s.persist(); err != nil {
		s.items[userID] = append(s.items[userID], removed)
		return 0, err
	}
	return 1, nil
}

// Close no mantiene recursos abiertos: cada mutación ya dejó el archivo escrito.
func (s *JSONFileStore) Close() error {
	return nil
}

// indexOf devuelve la posición del par en la slice del usuario, o -1.
// Caller debe tener el lock.
func (s *JSONFileStore) indexOf(userID, assetID string) int {
	for i, it := range s.items[userID] {
		if it.AssetID == assetID {
			return i
		}
	}
	return -1
}

// persist reescribe el archivo completo. Caller debe tener el lock.
func (s *JSONFileStore) persist() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("storage.persist: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("storage.persist: write %q: %w", s.path, err)
	}
	return nil
}
