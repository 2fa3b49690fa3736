package coincap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

const defaultAssetsLimit = 50

// GetAssets devuelve los top assets por market cap.
func (c *Client) GetAssets(ctx context.Context, limit int) ([]domain.Asset, error) {
	if limit <= 0 {
		limit = defaultAssetsLimit
	}

	u := fmt.Sprintf("%s/assets?limit=%d", c.assetsBase, limit)
	var resp assetsResponse
	if err := c.get(ctx, c.assetsLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("coincap.GetAssets: %w", err)
	}
	return mapAssets(resp.Data), nil
}

// GetAssetByID devuelve un asset concreto por su id de CoinCap.
func (c *Client) GetAssetByID(ctx context.Context, id string) (domain.Asset, error) {
	u := fmt.Sprintf("%s/assets/%s", c.assetsBase, url.PathEscape(id))
	var resp assetResponse
	if err := c.get(ctx, c.assetsLimiter, u, &resp); err != nil {
		return domain.Asset{}, fmt.Errorf("coincap.GetAssetByID %s: %w", id, err)
	}
	return mapAsset(resp.Data), nil
}

// GetAssetHistory devuelve la serie de precio del asset en el intervalo dado.
// start y end son opcionales: con zero value CoinCap devuelve su rango default.
func (c *Client) GetAssetHistory(ctx context.Context, id, interval string, start, end time.Time) ([]domain.HistoryPoint, error) {
	if interval == "" {
		interval = "d1"
	}

	q := url.Values{}
	q.Set("interval", interval)
	if !start.IsZero() {
		q.Set("start", strconv.FormatInt(start.UnixMilli(), 10))
	}
	if !end.IsZero() {
		q.Set("end", strconv.FormatInt(end.UnixMilli(), 10))
	}

	u := fmt.Sprintf("%s/assets/%s/history?%s", c.assetsBase, url.PathEscape(id), q.Encode())
	var resp historyResponse
	if err := c.get(ctx, c.assetsLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("coincap.GetAssetHistory %s: %w", id, err)
	}
	return mapHistory(resp.Data), nil
}

// GetAssetMarkets devuelve los pares de trading del asset por exchange.
func (c *Client) GetAssetMarkets(ctx context.Context, id string) ([]domain.AssetMarket, error) {
	u := fmt.Sprintf("%s/assets/%s/markets", c.assetsBase, url.PathEscape(id))
	var resp marketsResponse
	if err := c.get(ctx, c.assetsLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("coincap.GetAssetMarkets %s: %w", id, err)
	}
	return mapMarkets(resp.Data), nil
}
