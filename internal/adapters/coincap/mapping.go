package coincap

import (
	"strconv"
	"time"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

// mapAssets convierte los DTOs de CoinCap a domain.Asset.
func mapAssets(raw []ccAsset) []domain.Asset {
	assets := make([]domain.Asset, 0, len(raw))
	for _, r := range raw {
		assets = append(assets, mapAsset(r))
	}
	return assets
}

// mapAsset convierte un ccAsset DTO a domain.Asset.
// CoinCap devuelve los números como strings; los campos no parseables quedan en 0.
func mapAsset(r ccAsset) domain.Asset {
	rank, _ := strconv.Atoi(r.Rank)
	return domain.Asset{
		ID:                r.ID,
		Rank:              rank,
		Symbol:            r.Symbol,
		Name:              r.Name,
		PriceUSD:          parseFloat(r.PriceUSD),
		MarketCapUSD:      parseFloat(r.MarketCapUSD),
		VolumeUSD24h:      parseFloat(r.VolumeUSD24Hr),
		ChangePercent24h:  parseFloat(r.ChangePercent24Hr),
		SupplyCirculating: parseFloat(r.Supply),
	}
}

// mapHistory convierte la serie histórica a domain.HistoryPoint.
func mapHistory(raw []ccHistoryPoint) []domain.HistoryPoint {
	points := make([]domain.HistoryPoint, 0, len(raw))
	for _, r := range raw {
		points = append(points, domain.HistoryPoint{
			PriceUSD: parseFloat(r.PriceUSD),
			Time:     time.UnixMilli(r.Time).UTC(),
		})
	}
	return points
}

// mapMarkets convierte los pares de trading a domain.AssetMarket.
func mapMarkets(raw []ccMarket) []domain.AssetMarket {
	markets := make([]domain.AssetMarket, 0, len(raw))
	for _, r := range raw {
		markets = append(markets, domain.AssetMarket{
			ExchangeID:    r.ExchangeID,
			BaseSymbol:    r.BaseSymbol,
			QuoteSymbol:   r.QuoteSymbol,
			PriceUSD:      parseFloat(r.PriceUSD),
			VolumeUSD24h:  parseFloat(r.VolumeUSD24Hr),
			VolumePercent: parseFloat(r.VolumePercent),
		})
	}
	return markets
}

// mapArticles convierte las noticias a domain.NewsArticle.
func mapArticles(raw []ccArticle) []domain.NewsArticle {
	articles := make([]domain.NewsArticle, 0, len(raw))
	for _, r := range raw {
		articles = append(articles, domain.NewsArticle{
			ID:          r.ID,
			Title:       r.Title,
			URL:         r.URL,
			Source:      r.Source,
			Body:        r.Body,
			ImageURL:    r.ImageURL,
			PublishedAt: time.Unix(r.PublishedOn, 0).UTC(),
		})
	}
	return articles
}

// parseFloat parsea un número en string de la API; devuelve 0 si está vacío
// o malformado.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
