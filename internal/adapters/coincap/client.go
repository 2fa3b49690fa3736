package coincap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

const (
	defaultAssetsBase = "https://api.coincap.io/v2"
	defaultNewsBase   = "https://min-api.cryptocompare.com/data/v2"

	// Rate limits al 60% de los límites documentados.
	// CoinCap con API key: 500/min → 300/min → 5/s
	assetsRatePerSec = 5
	// CryptoCompare news free tier: generoso, pero el dashboard no necesita más
	newsRatePerSec = 2

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client implementa ports.MarketProvider sobre CoinCap (precios, histórico,
// mercados) y CryptoCompare (noticias), con rate limiting y retries.
type Client struct {
	http          *http.Client
	assetsBase    string
	newsBase      string
	apiKey        string
	assetsLimiter *rate.Limiter
	newsLimiter   *rate.Limiter
}

// NewClient crea un Client con los base URLs dados.
// Si assetsBase o newsBase están vacíos, usa los URLs de producción.
// apiKey es opcional: sin ella CoinCap aplica el límite anónimo.
func NewClient(assetsBase, newsBase, apiKey string) *Client {
	if assetsBase == "" {
		assetsBase = defaultAssetsBase
	}
	if newsBase == "" {
		newsBase = defaultNewsBase
	}
	return &Client{
		http:          &http.Client{Timeout: 10 * time.Second},
		assetsBase:    assetsBase,
		newsBase:      newsBase,
		apiKey:        apiKey,
		assetsLimiter: rate.NewLimiter(assetsRatePerSec, 10),
		newsLimiter:   rate.NewLimiter(newsRatePerSec, 5),
	}
}

// get hace un GET con rate limiting y retries. Todo fallo definitivo se
// envuelve en domain.ErrUpstream para que la capa HTTP degrade solo la
// sección de market data.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	if err := c.doWithRetry(ctx, limiter, url, out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	return nil
}

// doWithRetry ejecuta el GET con backoff exponencial y jitter.
func (c *Client) doWithRetry(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by market data API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
