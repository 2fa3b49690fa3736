package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alejandrodnm/retrotoken/internal/ports"
)

// cachedJSON sirve la respuesta desde la caché TTL, o la obtiene del gateway
// y la cachea. Un fallo de la caché no tumba el request: se loguea y se va
// directo al gateway.
func (s *Server) cachedJSON(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, fetch func(ctx context.Context) (any, error)) {
	ctx := r.Context()

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("cache get failed", "key", key, "err", err)
	} else if ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	result, err := fetch(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		writeError(w, r, fmt.Errorf("server.cachedJSON: marshal %s: %w", key, err))
		return
	}

	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		slog.Warn("cache set failed", "key", key, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleAssets devuelve los top assets por market cap.
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	key := fmt.Sprintf("assets:%d", limit)
	s.cachedJSON(w, r, key, s.cfg.AssetsTTL, func(ctx context.Context) (any, error) {
		return s.markets.GetAssets(ctx, limit)
	})
}

// handleAssetByID devuelve el detalle de un asset.
func (s *Server) handleAssetByID(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	key := "asset:" + assetID
	s.cachedJSON(w, r, key, s.cfg.AssetsTTL, func(ctx context.Context) (any, error) {
		return s.markets.GetAssetByID(ctx, assetID)
	})
}

// handleAssetHistory devuelve la serie de precio del asset.
// start y end son epoch millis opcionales, como en el API de CoinCap.
func (s *Server) handleAssetHistory(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "d1"
	}

	var start, end time.Time
	if v := r.URL.Query().Get("start"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			start = time.UnixMilli(ms)
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			end = time.UnixMilli(ms)
		}
	}

	key := fmt.Sprintf("history:%s:%s:%d:%d", assetID, interval, start.UnixMilli(), end.UnixMilli())
	s.cachedJSON(w, r, key, s.cfg.HistoryTTL, func(ctx context.Context) (any, error) {
		return s.markets.GetAssetHistory(ctx, assetID, interval, start, end)
	})
}

// handleAssetMarkets devuelve los pares de trading del asset por exchange.
func (s *Server) handleAssetMarkets(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	key := "markets:" + assetID
	s.cachedJSON(w, r, key, s.cfg.AssetsTTL, func(ctx context.Context) (any, error) {
		return s.markets.GetAssetMarkets(ctx, assetID)
	})
}

// handleNews devuelve noticias del agregador.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	params := ports.NewsParams{
		Categories: r.URL.Query().Get("categories"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}

	key := fmt.Sprintf("news:%s:%d", params.Categories, params.Limit)
	s.cachedJSON(w, r, key, s.cfg.NewsTTL, func(ctx context.Context) (any, error) {
		return s.markets.GetNews(ctx, params)
	})
}
