// Package client es el SDK del API del dashboard. Watchlist replica el
// estado derivado que el frontend mantiene por hook: un snapshot local de
// la membresía del watchlist para no pegarle al API desde cada botón de
// toggle de una página con decenas de assets.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/alejandrodnm/retrotoken/internal/domain"
)

// ErrRequestInFlight indica que ya hay una mutación en vuelo para ese asset.
// Es el equivalente a deshabilitar el botón mientras el request resuelve:
// benigno, el caller simplemente ignora el click repetido.
var ErrRequestInFlight = errors.New("request already in flight for asset")

// Watchlist es la caché reactiva del watchlist del usuario actual.
//
// El snapshot es la última verdad conocida del servidor: tras resolver
// cualquier Add/Remove la caché se refresca desde el API, nunca adivina.
// Entre una mutación y su refresh, IsInWatchlist puede estar desfasado —
// los callers no deben asumir que refleja una mutación en vuelo.
type Watchlist struct {
	baseURL string
	http    *http.Client

	mu         sync.Mutex
	credential string
	snapshot   map[string]domain.WatchlistItem // assetId → fila
	inflight   map[string]bool                 // assetId → mutación en vuelo
}

// NewWatchlist crea la caché apuntando al servidor dado, sin identidad.
func NewWatchlist(baseURL string) *Watchlist {
	return &Watchlist{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		snapshot: make(map[string]domain.WatchlistItem),
		inflight: make(map[string]bool),
	}
}

// SetCredential cambia la identidad activa. El snapshot anterior se
// invalida siempre: datos de otra identidad nunca se muestran. Con
// credencial nueva no vacía se refetchea; con vacía (sign-out) queda limpio.
func (c *Watchlist) SetCredential(ctx context.Context, credential string) error {
	c.mu.Lock()
	c.credential = credential
	c.snapshot = make(map[string]domain.WatchlistItem)
	c.mu.Unlock()

	if credential == "" {
		return nil
	}
	return c.Refresh(ctx)
}

// IsInWatchlist consulta el snapshot local, sin red. Devuelve false para
// cualquier asset si no hay identidad activa.
func (c *Watchlist) IsInWatchlist(assetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.snapshot[assetID]
	return ok
}

// Items devuelve el snapshot actual como slice, sin orden garantizado
// distinto del de servidor en el último Refresh.
func (c *Watchlist) Items() []domain.WatchlistItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]domain.WatchlistItem, 0, len(c.snapshot))
	for _, it := range c.snapshot {
		items = append(items, it)
	}
	return items
}

// Add añade el asset al watchlist y refresca el snapshot con la verdad del
// servidor. Un conflicto (ya estaba) también refresca y se devuelve como
// domain.ErrConflict para que la UI lo trate como no-op.
func (c *Watchlist) Add(ctx context.Context, assetID string) error {
	return c.mutate(ctx, assetID, func(ctx context.Context, credential string) error {
		body, err := json.Marshal(map[string]string{"assetId": assetID})
		if err != nil {
			return fmt.Errorf("client.Add: marshal: %w", err)
		}

		resp, err := c.doRequest(ctx, credential, http.MethodPost, "/api/watchlist", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("client.Add: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			return nil
		case http.StatusConflict:
			return domain.ErrConflict
		default:
			return statusError("client.Add", resp)
		}
	})
}

// Remove borra el asset del watchlist y refresca el snapshot. Un 404 (ya
// no estaba) también refresca y se devuelve como domain.ErrNotFound.
func (c *Watchlist) Remove(ctx context.Context, assetID string) error {
	return c.mutate(ctx, assetID, func(ctx context.Context, credential string) error {
		resp, err := c.doRequest(ctx, credential, http.MethodDelete, "/api/watchlist/"+url.PathEscape(assetID), nil)
		if err != nil {
			return fmt.Errorf("client.Remove: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK, http.StatusNoContent:
			return nil
		case http.StatusNotFound:
			return domain.ErrNotFound
		default:
			return statusError("client.Remove", resp)
		}
	})
}

// Refresh refetchea el watchlist completo y reemplaza el snapshot.
// Si la identidad cambió mientras el request estaba en vuelo, la respuesta
// se descarta: pertenece a una identidad que ya no es la activa.
func (c *Watchlist) Refresh(ctx context.Context) error {
	c.mu.Lock()
	credential := c.credential
	c.mu.Unlock()

	if credential == "" {
		return domain.ErrUnauthenticated
	}

	resp, err := c.doRequest(ctx, credential, http.MethodGet, "/api/watchlist", nil)
	if err != nil {
		return fmt.Errorf("client.Refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("client.Refresh", resp)
	}

	var items []domain.WatchlistItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return fmt.Errorf("client.Refresh: decode: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.credential != credential {
		return nil // identidad cambió en vuelo — descartar
	}
	c.snapshot = make(map[string]domain.WatchlistItem, len(items))
	for _, it := range items {
		c.snapshot[it.AssetID] = it
	}
	return nil
}

// mutate serializa la mutación por assetId, la ejecuta y reconcilia el
// snapshot con el servidor. En fallos que no son conflicto/not-found el
// snapshot queda intacto: sin adivinar.
func (c *Watchlist) mutate(ctx context.Context, assetID string, op func(ctx context.Context, credential string) error) error {
	c.mu.Lock()
	if c.credential == "" {
		c.mu.Unlock()
		return domain.ErrUnauthenticated
	}
	if c.inflight[assetID] {
		c.mu.Unlock()
		return ErrRequestInFlight
	}
	c.inflight[assetID] = true
	credential := c.credential
	c.mu.Unlock()

	opErr := op(ctx, credential)

	c.mu.Lock()
	delete(c.inflight, assetID)
	staleIdentity := c.credential != credential
	c.mu.Unlock()

	if staleIdentity {
		// La respuesta es de una identidad que ya no está activa:
		// no tocar el snapshot de la nueva.
		return opErr
	}

	// Éxito, conflicto y not-found reconcilian con la verdad del servidor;
	// el resto de fallos dejan el snapshot como estaba.
	if opErr == nil || errors.Is(opErr, domain.ErrConflict) || errors.Is(opErr, domain.ErrNotFound) {
		if refreshErr := c.Refresh(ctx); refreshErr != nil && opErr == nil {
			return refreshErr
		}
	}
	return opErr
}

// doRequest hace el request autenticado con la credencial dada.
func (c *Watchlist) doRequest(ctx context.Context, credential, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// statusError convierte un status inesperado en error, mapeando 401 al
// error tipado de dominio.
func statusError(op string, resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return domain.ErrUnauthenticated
	}
	return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
}
