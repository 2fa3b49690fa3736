package client_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/retrotoken/internal/adapters/cache"
	"github.com/alejandrodnm/retrotoken/internal/adapters/storage"
	"github.com/alejandrodnm/retrotoken/internal/client"
	"github.com/alejandrodnm/retrotoken/internal/domain"
	"github.com/alejandrodnm/retrotoken/internal/ports"
	"github.com/alejandrodnm/retrotoken/internal/server"
)

// tokenResolver resuelve token → userId con un mapa fijo.
type tokenResolver struct {
	users map[string]string
}

func (r *tokenResolver) ResolveUserID(req *http.Request) (string, error) {
	if userID, ok := r.users[req.Header.Get("Authorization")]; ok {
		return userID, nil
	}
	return "", domain.ErrUnauthenticated
}

// noMarkets satisface el port de market data; el SDK de watchlist no lo toca.
type noMarkets struct{}

func (noMarkets) GetAssets(context.Context, int) ([]domain.Asset, error) {
	return nil, domain.ErrUpstream
}
func (noMarkets) GetAssetByID(context.Context, string) (domain.Asset, error) {
	return domain.Asset{}, domain.ErrUpstream
}
func (noMarkets) GetAssetHistory(context.Context, string, string, time.Time, time.Time) ([]domain.HistoryPoint, error) {
	return nil, domain.ErrUpstream
}
func (noMarkets) GetAssetMarkets(context.Context, string) ([]domain.AssetMarket, error) {
	return nil, domain.ErrUpstream
}
func (noMarkets) GetNews(context.Context, ports.NewsParams) ([]domain.NewsArticle, error) {
	return nil, domain.ErrUpstream
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	resolver := &tokenResolver{users: map[string]string{
		"Bearer token-abc": "0xabc",
		"Bearer token-def": "0xdef",
	}}

	s := server.New(server.Config{}, store, noMarkets{}, cache.NewMemory(), resolver)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestWatchlist_RequiresCredential(t *testing.T) {
	ts := newAPIServer(t)
	wl := client.NewWatchlist(ts.URL)

	assert.False(t, wl.IsInWatchlist("bitcoin"))
	assert.ErrorIs(t, wl.Add(context.Background(), "bitcoin"), domain.ErrUnauthenticated)
	assert.ErrorIs(t, wl.Remove(context.Background(), "bitcoin"), domain.ErrUnauthenticated)
	assert.ErrorIs(t, wl.Refresh(context.Background()), domain.ErrUnauthenticated)
}

func TestWatchlist_AddRemoveRoundTrip(t *testing.T) {
	ts := newAPIServer(t)
	ctx := context.Background()

	wl := client.NewWatchlist(ts.URL)
	require.NoError(t, wl.SetCredential(ctx, "token-abc"))

	require.NoError(t, wl.Add(ctx, "bitcoin"))
	assert.True(t, wl.IsInWatchlist("bitcoin"))
	assert.False(t, wl.IsInWatchlist("ethereum"))
	assert.Len(t, wl.Items(), 1)

	require.NoError(t, wl.Remove(ctx, "bitcoin"))
	assert.False(t, wl.IsInWatchlist("bitcoin"))
	assert.Empty(t, wl.Items())
}

// Un not-found refresca igual: si otra sesión del mismo usuario borró el
// asset, la caché lo refleja al devolver el error.
func TestWatchlist_NotFoundStillReconciles(t *testing.T) {
	ts := newAPIServer(t)
	ctx := context.Background()

	other := client.NewWatchlist(ts.URL)
	require.NoError(t, other.SetCredential(ctx, "token-abc"))
	require.NoError(t, other.Add(ctx, "bitcoin"))

	wl := client.NewWatchlist(ts.URL)
	require.NoError(t, wl.SetCredential(ctx, "token-abc"))
	assert.True(t, wl.IsInWatchlist("bitcoin"))

	// Refrescamos un cliente que no vio el Add
	stale := client.NewWatchlist(ts.URL)
	require.NoError(t, stale.SetCredential(ctx, "token-abc"))
	require.NoError(t, other.Remove(ctx, "bitcoin"))

	err := stale.Remove(ctx, "bitcoin")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, stale.IsInWatchlist("bitcoin"))
}

func TestWatchlist_DuplicateAddIsConflict(t *testing.T) {
	ts := newAPIServer(t)
	ctx := context.Background()

	wl := client.NewWatchlist(ts.URL)
	require.NoError(t, wl.SetCredential(ctx, "token-abc"))

	require.NoError(t, wl.Add(ctx, "bitcoin"))
	assert.ErrorIs(t, wl.Add(ctx, "bitcoin"), domain.ErrConflict)
	assert.True(t, wl.IsInWatchlist("bitcoin"))
}

// Cambiar de identidad invalida el snapshot: nunca se muestra el watchlist
// del usuario anterior.
func TestWatchlist_IdentitySwitchClearsSnapshot(t *testing.T) {
	ts := newAPIServer(t)
	ctx := context.Background()

	wl := client.NewWatchlist(ts.URL)
	require.NoError(t, wl.SetCredential(ctx, "token-abc"))
	require.NoError(t, wl.Add(ctx, "bitcoin"))
	require.True(t, wl.IsInWatchlist("bitcoin"))

	require.NoError(t, wl.SetCredential(ctx, "token-def"))
	assert.False(t, wl.IsInWatchlist("bitcoin"))

	// Sign-out limpia y no refetchea
	require.NoError(t, wl.SetCredential(ctx, ""))
	assert.False(t, wl.IsInWatchlist("bitcoin"))
	assert.Empty(t, wl.Items())
}

// Dos mutaciones concurrentes sobre el mismo asset: solo una viaja, la otra
// recibe ErrRequestInFlight. Con el vuelo resuelto el guard se libera.
func TestWatchlist_PerAssetInFlightGuard(t *testing.T) {
	slow := newSlowPostServer(t, `[{"id":"1","userId":"0xabc","assetId":"bitcoin","createdAt":"2024-01-01T00:00:00Z"}]`)

	wl := client.NewWatchlist(slow.url)
	require.NoError(t, wl.SetCredential(context.Background(), "token-abc"))

	firstDone := make(chan error, 1)
	go func() { firstDone <- wl.Add(context.Background(), "bitcoin") }()

	<-slow.arrived // la primera mutación ya está en vuelo
	require.ErrorIs(t, wl.Add(context.Background(), "bitcoin"), client.ErrRequestInFlight)

	slow.releaseOnce()
	require.NoError(t, <-firstDone)
	assert.True(t, wl.IsInWatchlist("bitcoin"))

	assert.NotErrorIs(t, wl.Add(context.Background(), "bitcoin"), client.ErrRequestInFlight)
}

// Una respuesta que resuelve con otra identidad activa se descarta: el
// snapshot de la identidad nueva no se contamina.
func TestWatchlist_StaleIdentityResponseDiscarded(t *testing.T) {
	slow := newSlowPostServer(t, `[]`)

	wl := client.NewWatchlist(slow.url)
	ctx := context.Background()
	require.NoError(t, wl.SetCredential(ctx, "token-abc"))

	done := make(chan error, 1)
	go func() { done <- wl.Add(ctx, "bitcoin") }()

	<-slow.arrived // el Add está en vuelo: cambiar de identidad ahora
	require.NoError(t, wl.SetCredential(ctx, "token-def"))

	slow.releaseOnce()
	require.NoError(t, <-done)
	assert.False(t, wl.IsInWatchlist("bitcoin"))
}

// Un assetId con caracteres reservados viaja como un único segmento escapado:
// nunca cambia la ruta que recibe el servidor.
func TestWatchlist_RemoveEscapesAssetID(t *testing.T) {
	const assetID = "btc/evil?x=1"

	var (
		mu      sync.Mutex
		gotPath string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			mu.Lock()
			gotPath = r.URL.EscapedPath()
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	}))
	defer ts.Close()

	wl := client.NewWatchlist(ts.URL)
	ctx := context.Background()
	require.NoError(t, wl.SetCredential(ctx, "token-abc"))

	require.NoError(t, wl.Remove(ctx, assetID))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/api/watchlist/"+url.PathEscape(assetID), gotPath)
}

// slowPostServer retiene los POST hasta releaseOnce y señala su llegada por
// arrived. Los GET responden listBody como watchlist.
type slowPostServer struct {
	url     string
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

func newSlowPostServer(t *testing.T, listBody string) *slowPostServer {
	t.Helper()
	s := &slowPostServer{
		arrived: make(chan struct{}, 4),
		release: make(chan struct{}),
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			s.arrived <- struct{}{}
			<-s.release
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":"1","userId":"0xabc","assetId":"bitcoin","createdAt":"2024-01-01T00:00:00Z"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, listBody)
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(s.releaseOnce)

	s.url = ts.URL
	return s
}

func (s *slowPostServer) releaseOnce() {
	s.once.Do(func() { close(s.release) })
}
