// Package external holds clients for public data providers.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultfolio/ledger-backend/internal/httputil"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// PriceOptions tunes the cache and rate guard. Zero values get
// production defaults.
type PriceOptions struct {
	BaseURL     string
	CacheTTL    time.Duration // how long a fetched price stays fresh
	MinInterval time.Duration // minimum spacing between upstream hits
	Logger      zerolog.Logger
}

// PriceClient fetches USD spot prices from CoinGecko with a small
// in-memory cache and a minimum interval between upstream requests.
// When the upstream fails, the last known prices are served stale.
type PriceClient struct {
	baseURL     string
	cacheTTL    time.Duration
	minInterval time.Duration
	httpClient  *http.Client
	retry       httputil.RetryConfig
	log         zerolog.Logger

	mu        sync.Mutex
	cache     map[string]float64
	fetchedAt time.Time
}

func NewPriceClient(opts PriceOptions) *PriceClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 60 * time.Second
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = 10 * time.Second
	}
	return &PriceClient{
		baseURL:     opts.BaseURL,
		cacheTTL:    opts.CacheTTL,
		minInterval: opts.MinInterval,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
		log:   opts.Logger.With().Str("component", "prices").Logger(),
		cache: make(map[string]float64),
	}
}

// GetPrices returns USD prices for the given CoinGecko ids. Fresh cache
// entries and the rate guard both short-circuit the upstream call.
func (c *PriceClient) GetPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.covers(ids) && now.Sub(c.fetchedAt) < c.cacheTTL {
		return c.snapshot(ids), nil
	}

	// Rate guard: too soon since the last upstream hit, serve whatever
	// we have, stale or not.
	if !c.fetchedAt.IsZero() && now.Sub(c.fetchedAt) < c.minInterval {
		if c.covers(ids) {
			return c.snapshot(ids), nil
		}
		return nil, fmt.Errorf("rate limited and no cached prices for %v", ids)
	}

	prices, err := c.fetch(ctx, ids)
	if err != nil {
		if c.covers(ids) {
			c.log.Warn().Err(err).Msg("price fetch failed, serving stale cache")
			return c.snapshot(ids), nil
		}
		return nil, err
	}

	for id, p := range prices {
		c.cache[id] = p
	}
	c.fetchedAt = now
	return c.snapshot(ids), nil
}

func (c *PriceClient) covers(ids []string) bool {
	if len(c.cache) == 0 {
		return false
	}
	for _, id := range ids {
		if _, ok := c.cache[id]; !ok {
			return false
		}
	}
	return true
}

func (c *PriceClient) snapshot(ids []string) map[string]float64 {
	out := make(map[string]float64, len(ids))
	for _, id := range ids {
		out[id] = c.cache[id]
	}
	return out
}

func (c *PriceClient) fetch(ctx context.Context, ids []string) (map[string]float64, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		c.baseURL, strings.Join(sorted, ","))

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var data map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out := make(map[string]float64, len(data))
	for id, v := range data {
		if v.USD <= 0 {
			return nil, fmt.Errorf("invalid price for %s: %f", id, v.USD)
		}
		out[id] = v.USD
	}
	return out, nil
}
