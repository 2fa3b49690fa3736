// Package server expone el REST API del dashboard: el proxy de market data
// (público) y el watchlist (autenticado). La autorización vive aquí: el
// userId de cada operación sale siempre de la credencial verificada, nunca
// del input del cliente.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alejandrodnm/retrotoken/internal/domain"
	"github.com/alejandrodnm/retrotoken/internal/ports"
)

const shutdownTimeout = 10 * time.Second

// Config contiene los parámetros del servidor HTTP.
type Config struct {
	Addr       string
	AssetsTTL  time.Duration // caché de listados y detalle de assets
	HistoryTTL time.Duration // caché de series históricas
	NewsTTL    time.Duration // caché de noticias
}

// Server es el servidor HTTP del dashboard con sus dependencias inyectadas.
type Server struct {
	cfg      Config
	store    ports.WatchlistStore
	markets  ports.MarketProvider
	cache    ports.Cache
	resolver ports.IdentityResolver
	http     *http.Server
}

// New crea el Server y monta las rutas.
func New(
	cfg Config,
	store ports.WatchlistStore,
	markets ports.MarketProvider,
	cache ports.Cache,
	resolver ports.IdentityResolver,
) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		markets:  markets,
		cache:    cache,
		resolver: resolver,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes construye el router. Expuesto para que los tests monten el handler
// en un httptest.Server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverPanics)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		// Market data: público, cacheado, degradable
		r.Get("/assets", s.handleAssets)
		r.Get("/assets/{assetID}", s.handleAssetByID)
		r.Get("/assets/{assetID}/history", s.handleAssetHistory)
		r.Get("/assets/{assetID}/markets", s.handleAssetMarkets)
		r.Get("/news", s.handleNews)

		// Watchlist: requiere identidad resuelta
		r.Route("/watchlist", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/", s.handleWatchlistList)
			r.Post("/", s.handleWatchlistAdd)
			r.Get("/{assetID}", s.handleWatchlistStatus)
			r.Delete("/{assetID}", s.handleWatchlistRemove)
		})
	})

	return r
}

// Run arranca el servidor y lo apaga limpiamente cuando el contexto se cancela.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("server listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// writeJSON serializa la respuesta con el status dado.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError mapea un error de dominio a su status HTTP. Los fallos no
// tipados se loguean y salen como 500 genérico — el detalle nunca llega
// al cliente.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case errors.Is(err, domain.ErrInvalidAsset):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": domain.ErrInvalidAsset.Error()})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": domain.ErrConflict.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": domain.ErrNotFound.Error()})
	case errors.Is(err, domain.ErrUpstream):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": domain.ErrUpstream.Error()})
	default:
		slog.Error("unhandled error", "err", err, "path", r.URL.Path, "method", r.Method)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
