package domain

import "time"

// Asset es una criptomoneda listada en el dashboard, identificada por el id
// estable del gateway de market data (ej: "bitcoin").
type Asset struct {
	ID                string  `json:"id"`
	Rank              int     `json:"rank"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	PriceUSD          float64 `json:"priceUsd"`
	MarketCapUSD      float64 `json:"marketCapUsd"`
	VolumeUSD24h      float64 `json:"volumeUsd24Hr"`
	ChangePercent24h  float64 `json:"changePercent24Hr"`
	SupplyCirculating float64 `json:"supply"`
}

// HistoryPoint es un punto de la serie histórica de precio de un asset.
type HistoryPoint struct {
	PriceUSD float64   `json:"priceUsd"`
	Time     time.Time `json:"time"`
}

// AssetMarket es un par de trading de un asset en un exchange concreto.
type AssetMarket struct {
	ExchangeID    string  `json:"exchangeId"`
	BaseSymbol    string  `json:"baseSymbol"`
	QuoteSymbol   string  `json:"quoteSymbol"`
	PriceUSD      float64 `json:"priceUsd"`
	VolumeUSD24h  float64 `json:"volumeUsd24Hr"`
	VolumePercent float64 `json:"volumePercent"`
}

// NewsArticle es una noticia del agregador, ya normalizada.
type NewsArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Body        string    `json:"body"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}
