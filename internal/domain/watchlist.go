package domain

import (
	"errors"
	"strings"
	"time"
)

// Errores tipados del subsistema de watchlist. El store los devuelve tal cual
// y la capa HTTP los mapea a status codes.
var (
	// ErrUnauthenticated indica que no se pudo resolver la identidad del caller.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrConflict indica que el par (userId, assetId) ya existe.
	ErrConflict = errors.New("asset already in watchlist")

	// ErrNotFound indica que no existe ninguna fila para el par pedido.
	ErrNotFound = errors.New("asset not in watchlist")

	// ErrInvalidAsset indica un assetId vacío o malformado.
	ErrInvalidAsset = errors.New("asset id is required")

	// ErrUpstream indica un fallo del gateway de market data. Es ortogonal
	// al watchlist: nunca bloquea sus lecturas/escrituras.
	ErrUpstream = errors.New("market data unavailable")
)

// WatchlistItem es una fila de la relación usuario → asset seguido.
// Las filas solo se insertan o se borran, nunca se actualizan.
type WatchlistItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	AssetID   string    `json:"assetId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeAssetID limpia el assetId recibido del cliente.
// Devuelve ErrInvalidAsset si queda vacío.
func NormalizeAssetID(assetID string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(assetID))
	if id == "" {
		return "", ErrInvalidAsset
	}
	return id, nil
}
