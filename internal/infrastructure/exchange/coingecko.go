package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"golang.org/x/time/rate"
)

const (
	CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

	defaultTimeout = 3 * time.Second
	maxBodyBytes   = 1 << 20
)

// CoinGeckoAdapter fetches batched prices from the CoinGecko simple/price
// endpoint. Every failure is reported as a *domain.FetchError.
type CoinGeckoAdapter struct {
	baseURL    string
	apiKey     string
	vsCurrency string
	timeout    time.Duration
	client     *http.Client
	limiter    *rate.Limiter
	timeNow    func() time.Time
}

// Option configures a CoinGeckoAdapter.
type Option func(*CoinGeckoAdapter)

// WithTimeout bounds every fetch, including the wait for a rate limit token.
func WithTimeout(d time.Duration) Option {
	return func(a *CoinGeckoAdapter) {
		a.timeout = d
	}
}

// WithAPIKey sets the demo API key header.
func WithAPIKey(key string) Option {
	return func(a *CoinGeckoAdapter) {
		a.apiKey = key
	}
}

// WithRateLimit caps requests per minute. Zero disables the limiter.
func WithRateLimit(perMinute int) Option {
	return func(a *CoinGeckoAdapter) {
		if perMinute <= 0 {
			a.limiter = nil
			return
		}
		a.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1)
	}
}

// WithHTTPClient replaces the default client, which is bounded by the fetch
// timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *CoinGeckoAdapter) {
		a.client = hc
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *CoinGeckoAdapter) {
		a.timeNow = now
	}
}

// NewCoinGeckoAdapter creates an adapter quoting prices in base.
func NewCoinGeckoAdapter(baseURL string, base domain.CurrencyCode, opts ...Option) *CoinGeckoAdapter {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	a := &CoinGeckoAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		vsCurrency: strings.ToLower(string(base)),
		timeout:    defaultTimeout,
		timeNow:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = &http.Client{Timeout: a.timeout}
	}
	return a
}

func (a *CoinGeckoAdapter) Name() string { return "coingecko" }

// FetchPrices issues one request for all ids. Duplicate ids are collapsed and
// an empty set returns without touching the network.
func (a *CoinGeckoAdapter) FetchPrices(ctx context.Context, ids []domain.AssetID) (map[domain.AssetID]domain.PriceEntry, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return map[domain.AssetID]domain.PriceEntry{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, &domain.FetchError{Kind: domain.ErrNetworkTimeout, Err: fmt.Errorf("rate limit: %w", err)}
		}
	}

	body, err := a.get(ctx, ids)
	if err != nil {
		return nil, err
	}
	return a.decode(body, ids)
}

func (a *CoinGeckoAdapter) get(ctx context.Context, ids []domain.AssetID) ([]byte, error) {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	query := url.Values{}
	query.Set("ids", strings.Join(names, ","))
	query.Set("vs_currencies", a.vsCurrency)
	query.Set("include_market_cap", "true")
	query.Set("include_24hr_vol", "true")
	query.Set("include_24hr_change", "true")
	query.Set("include_last_updated_at", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/simple/price?"+query.Encode(), nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.ErrNetworkFailure, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if a.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{
			Kind:   domain.ErrNetworkFailure,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("API error: %s", strings.TrimSpace(string(body))),
		}
	}
	return body, nil
}

// decode validates the body shape: an object keyed by id, each holding at
// least a non-negative price in the quote currency.
func (a *CoinGeckoAdapter) decode(body []byte, ids []domain.AssetID) (map[domain.AssetID]domain.PriceEntry, error) {
	var raw map[string]map[string]*float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.FetchError{Kind: domain.ErrMalformedResponse, Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	now := a.timeNow()
	out := make(map[domain.AssetID]domain.PriceEntry, len(ids))
	for _, id := range ids {
		rec, ok := raw[string(id)]
		if !ok {
			return nil, &domain.FetchError{Kind: domain.ErrMalformedResponse, Err: fmt.Errorf("missing asset %s", id)}
		}
		price := rec[a.vsCurrency]
		if price == nil || *price < 0 {
			return nil, &domain.FetchError{Kind: domain.ErrMalformedResponse, Err: fmt.Errorf("invalid %s price for %s", a.vsCurrency, id)}
		}

		observed := now
		if ts := rec["last_updated_at"]; ts != nil && *ts > 0 {
			observed = time.Unix(int64(*ts), 0)
		}

		out[id] = domain.PriceEntry{
			AssetID:    id,
			BasePrice:  *price,
			Change24h:  value(rec[a.vsCurrency+"_24h_change"]),
			MarketCap:  value(rec[a.vsCurrency+"_market_cap"]),
			Volume24h:  value(rec[a.vsCurrency+"_24h_vol"]),
			ObservedAt: observed,
		}
	}
	return out, nil
}

func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.FetchError{Kind: domain.ErrNetworkTimeout, Err: err}
	}
	return &domain.FetchError{Kind: domain.ErrNetworkFailure, Err: err}
}

func uniqueIDs(ids []domain.AssetID) []domain.AssetID {
	seen := make(map[domain.AssetID]bool, len(ids))
	out := make([]domain.AssetID, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// String is used in logs.
func (a *CoinGeckoAdapter) String() string {
	return a.Name() + "(" + a.baseURL + ", vs=" + a.vsCurrency + ", timeout=" + strconv.FormatInt(a.timeout.Milliseconds(), 10) + "ms)"
}
