package coincap

// DTOs raw de las APIs de CoinCap y CryptoCompare. Solo se usan dentro de
// este paquete. La conversión a domain entities se hace en mapping.go.

// --- CoinCap v2 ---

// assetsResponse es la respuesta de GET /assets.
type assetsResponse struct {
	Data      []ccAsset `json:"data"`
	Timestamp int64     `json:"timestamp"`
}

// assetResponse es la respuesta de GET /assets/{id}.
type assetResponse struct {
	Data ccAsset `json:"data"`
}

// ccAsset es un asset de CoinCap. Los campos numéricos llegan como strings.
type ccAsset struct {
	ID                string `json:"id"`
	Rank              string `json:"rank"`
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Supply            string `json:"supply"`
	MarketCapUSD      string `json:"marketCapUsd"`
	VolumeUSD24Hr     string `json:"volumeUsd24Hr"`
	PriceUSD          string `json:"priceUsd"`
	ChangePercent24Hr string `json:"changePercent24Hr"`
}

// historyResponse es la respuesta de GET /assets/{id}/history.
type historyResponse struct {
	Data []ccHistoryPoint `json:"data"`
}

// ccHistoryPoint es un punto de la serie histórica.
type ccHistoryPoint struct {
	PriceUSD string `json:"priceUsd"`
	Time     int64  `json:"time"` // epoch millis
}

// marketsResponse es la respuesta de GET /assets/{id}/markets.
type marketsResponse struct {
	Data []ccMarket `json:"data"`
}

// ccMarket es un par de trading del asset en un exchange.
type ccMarket struct {
	ExchangeID    string `json:"exchangeId"`
	BaseSymbol    string `json:"baseSymbol"`
	QuoteSymbol   string `json:"quoteSymbol"`
	PriceUSD      string `json:"priceUsd"`
	VolumeUSD24Hr string `json:"volumeUsd24Hr"`
	VolumePercent string `json:"volumePercent"`
}

// --- CryptoCompare news ---

// newsResponse es la respuesta de GET /news/.
type newsResponse struct {
	Data []ccArticle `json:"Data"`
}

// ccArticle es una noticia del agregador.
type ccArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	ImageURL    string `json:"imageurl"`
	Body        string `json:"body"`
	Source      string `json:"source"`
	PublishedOn int64  `json:"published_on"` // epoch seconds
}
