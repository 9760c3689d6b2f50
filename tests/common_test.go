package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_dashboard/internal/app"
	"github.com/vitos/crypto_dashboard/internal/config"
	"github.com/vitos/crypto_dashboard/internal/metrics"
	"github.com/vitos/crypto_dashboard/internal/usecase"
	"github.com/vitos/crypto_dashboard/internal/web"
)

// MockCoinGecko serves /simple/price from a mutable price table.
type MockCoinGecko struct {
	mu       sync.Mutex
	prices   map[string]float64
	status   int
	Requests atomic.Int32
	Server   *httptest.Server
}

func NewMockCoinGecko(t *testing.T, prices map[string]float64) *MockCoinGecko {
	t.Helper()
	m := &MockCoinGecko{prices: prices, status: http.StatusOK}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)
	return m
}

func (m *MockCoinGecko) SetPrice(id string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[id] = price
}

func (m *MockCoinGecko) RemovePrice(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prices, id)
}

func (m *MockCoinGecko) SetStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = code
}

func (m *MockCoinGecko) handle(w http.ResponseWriter, r *http.Request) {
	m.Requests.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.URL.Path != "/simple/price" {
		http.NotFound(w, r)
		return
	}
	if m.status != http.StatusOK {
		http.Error(w, `{"error":"upstream unavailable"}`, m.status)
		return
	}

	vs := r.URL.Query().Get("vs_currencies")
	out := make(map[string]map[string]float64)
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		p, ok := m.prices[id]
		if !ok {
			continue
		}
		out[id] = map[string]float64{
			vs:                 p,
			vs + "_24h_change": 1.5,
			vs + "_market_cap": p * 1e6,
			vs + "_24h_vol":    p * 1e4,
			"last_updated_at":  float64(time.Now().Unix()),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// testConfig goes through the YAML loader so the scenarios cover it too.
func testConfig(t *testing.T, source, baseURL string) *config.Config {
	t.Helper()
	yaml := fmt.Sprintf(`
logging:
  level: error
market:
  source: %s
  base_currency: USD
  display_currency: USD
  time_range: short
  refresh_interval: 1h
  seed: 17
  api:
    base_url: %s
    timeout: 2s
    rate_per_minute: 60000
  rates:
    USD: 1.0
    EUR: 0.95
    INR: 85.42
  assets:
    - {id: bitcoin, symbol: BTC, name: Bitcoin, fallback_price: 187432.51}
    - {id: ethereum, symbol: ETH, name: Ethereum, fallback_price: 12876.32}
  indexes:
    - {id: crypto-index, name: Crypto Index, baseline: 1000, delta: 15}
`, source, baseURL)

	cfg, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	return cfg
}

// Stack is the whole dashboard behind an httptest server.
type Stack struct {
	Market *usecase.MarketService
	Web    *web.Server
	HTTP   *httptest.Server
}

func NewStack(t *testing.T, cfg *config.Config) *Stack {
	t.Helper()
	m := metrics.New()
	market, err := app.NewMarketService(cfg, nil, m, nil)
	require.NoError(t, err)

	s := &Stack{Market: market, Web: web.NewServer(cfg.Server.Port, market, m, nil)}
	s.HTTP = httptest.NewServer(s.Web.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Web.Shutdown(ctx)
		s.HTTP.Close()
		_ = market.Stop(ctx)
	})

	require.NoError(t, market.Start(context.Background()))
	return s
}

func (s *Stack) GetJSON(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(s.HTTP.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *Stack) PostJSON(t *testing.T, path, body string) int {
	t.Helper()
	resp, err := http.Post(s.HTTP.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func (s *Stack) Dashboard(t *testing.T) usecase.DashboardView {
	t.Helper()
	var v usecase.DashboardView
	require.Equal(t, http.StatusOK, s.GetJSON(t, "/api/dashboard", &v))
	return v
}
