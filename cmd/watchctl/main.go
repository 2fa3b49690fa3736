// watchctl es el cliente de terminal del dashboard: lista los top assets
// del mercado y gestiona el watchlist del usuario contra el servidor.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/retrotoken/internal/client"
	"github.com/alejandrodnm/retrotoken/internal/domain"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "base URL of the retrotoken server")
	token := flag.String("token", os.Getenv("RETROTOKEN_TOKEN"), "credential for watchlist operations")
	top := flag.Int("top", 10, "number of top assets to show")
	add := flag.String("add", "", "add an asset to the watchlist and exit")
	remove := flag.String("remove", "", "remove an asset from the watchlist and exit")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wl := client.NewWatchlist(*serverURL)
	if *token != "" {
		if err := wl.SetCredential(ctx, *token); err != nil {
			slog.Error("failed to load watchlist", "err", err)
			os.Exit(1)
		}
	}

	switch {
	case *add != "":
		mutate(ctx, wl, *token, "added", *add, wl.Add)
	case *remove != "":
		mutate(ctx, wl, *token, "removed", *remove, wl.Remove)
	default:
		printAssets(ctx, *serverURL, *top, wl, *token != "")
	}
}

func mutate(ctx context.Context, wl *client.Watchlist, token, verb, assetID string, op func(context.Context, string) error) {
	if token == "" {
		slog.Error("a credential is required (use -token or RETROTOKEN_TOKEN)")
		os.Exit(1)
	}
	if err := op(ctx, assetID); err != nil {
		slog.Error("watchlist operation failed", "asset", assetID, "err", err)
		os.Exit(1)
	}
	fmt.Printf("%s %s\n", verb, assetID)
}

func printAssets(ctx context.Context, serverURL string, top int, wl *client.Watchlist, authed bool) {
	assets, err := fetchAssets(ctx, serverURL, top)
	if err != nil {
		slog.Error("failed to fetch assets", "err", err)
		os.Exit(1)
	}

	table := tablewriter.NewWriter(os.Stdout)
	if authed {
		table.Header("#", "Asset", "Symbol", "Price", "24h %", "Market Cap", "Watching")
	} else {
		table.Header("#", "Asset", "Symbol", "Price", "24h %", "Market Cap")
	}

	for i, a := range assets {
		idx := fmt.Sprintf("%d", i+1)
		price := fmt.Sprintf("$%.2f", a.PriceUSD)
		change := fmt.Sprintf("%+.2f%%", a.ChangePercent24h)
		mcap := fmt.Sprintf("$%.0fM", a.MarketCapUSD/1e6)

		if authed {
			mark := ""
			if wl.IsInWatchlist(a.ID) {
				mark = "*"
			}
			table.Append(idx, a.Name, a.Symbol, price, change, mcap, mark)
		} else {
			table.Append(idx, a.Name, a.Symbol, price, change, mcap)
		}
	}
	table.Render()

	if authed {
		fmt.Printf("\nwatchlist: %d assets\n", len(wl.Items()))
	}
}

func fetchAssets(ctx context.Context, serverURL string, limit int) ([]domain.Asset, error) {
	url := fmt.Sprintf("%s/api/assets?limit=%d", serverURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("main.fetchAssets: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("main.fetchAssets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("main.fetchAssets: unexpected status %d", resp.StatusCode)
	}

	var assets []domain.Asset
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		return nil, fmt.Errorf("main.fetchAssets: decode: %w", err)
	}
	return assets, nil
}
