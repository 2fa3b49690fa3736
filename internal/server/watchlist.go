package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

// handleWatchlistList devuelve el watchlist del usuario autenticado,
// ordenado por createdAt descendente. Vacío es un array vacío, no un error.
func (s *Server) handleWatchlistList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListByUser(r.Context(), currentUser(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleWatchlistAdd añade un asset al watchlist del usuario autenticado.
// 400 sin assetId, 409 si ya estaba, 201 con la fila creada.
func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AssetID string `json:"assetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, domain.ErrInvalidAsset)
		return
	}

	assetID, err := domain.NormalizeAssetID(payload.AssetID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := s.store.Insert(r.Context(), currentUser(r.Context()), assetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleWatchlistRemove borra el asset del watchlist del usuario autenticado.
// 204 si lo borró, 404 si no estaba.
func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	assetID, err := domain.NormalizeAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := s.store.DeleteByUserAndAsset(r.Context(), currentUser(r.Context()), assetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if n == 0 {
		writeError(w, r, domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWatchlistStatus responde si el asset está en el watchlist del
// usuario autenticado. Siempre 200 con auth válida.
func (s *Server) handleWatchlistStatus(w http.ResponseWriter, r *http.Request) {
	assetID, err := domain.NormalizeAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	watched, err := s.store.Exists(r.Context(), currentUser(r.Context()), assetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isWatched": watched})
}
