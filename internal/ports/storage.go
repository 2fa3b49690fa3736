package ports

import (
	"context"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

// WatchlistStore persiste la relación usuario → asset con la invariante de
// unicidad del par (userId, assetId). Es el único recurso mutable compartido.
type WatchlistStore interface {
	// ListByUser devuelve las filas del usuario ordenadas por createdAt
	// descendente. Nunca falla por resultado vacío: devuelve slice vacío.
	ListByUser(ctx context.Context, userID string) ([]domain.WatchlistItem, error)

	// Exists indica si el par (userId, assetId) ya está en el watchlist.
	Exists(ctx context.Context, userID, assetID string) (bool, error)

	// Insert crea la fila con createdAt del momento de inserción.
	// Devuelve domain.ErrConflict si el par ya existe. El check-and-insert
	// es atómico a nivel del storage, no un read-then-write en aplicación.
	Insert(ctx context.Context, userID, assetID string) (domain.WatchlistItem, error)

	// DeleteByUserAndAsset borra la fila del par y devuelve cuántas filas
	// eliminó. 0 no es un error a este nivel — el caller lo mapea a not found.
	DeleteByUserAndAsset(ctx context.Context, userID, assetID string) (int64, error)

	// Close cierra el backend de persistencia limpiamente.
	Close() error
}
