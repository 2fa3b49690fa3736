package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

// NewsParams son los filtros opcionales del endpoint de noticias.
type NewsParams struct {
	Categories string // lista separada por comas, ej: "BTC,ETH"
	Limit      int
}

// MarketProvider es el gateway de market data (precios, histórico, mercados
// y noticias). Sus fallos degradan solo la sección afectada del dashboard:
// nunca bloquean el watchlist.
type MarketProvider interface {
	// GetAssets devuelve los top assets por market cap.
	GetAssets(ctx context.Context, limit int) ([]domain.Asset, error)

	// GetAssetByID devuelve un asset concreto.
	GetAssetByID(ctx context.Context, id string) (domain.Asset, error)

	// GetAssetHistory devuelve la serie de precio para el intervalo dado
	// (m1, m15, h1, d1...). start y end son opcionales: zero value = sin límite.
	GetAssetHistory(ctx context.Context, id, interval string, start, end time.Time) ([]domain.HistoryPoint, error)

	// GetAssetMarkets devuelve los pares de trading del asset por exchange.
	GetAssetMarkets(ctx context.Context, id string) ([]domain.AssetMarket, error)

	// GetNews devuelve noticias del agregador según los filtros dados.
	GetNews(ctx context.Context, params NewsParams) ([]domain.NewsArticle, error)
}
