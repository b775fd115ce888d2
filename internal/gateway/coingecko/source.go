// Package coingecko prices a whole cycle with one simple/price call.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/exchange"
	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/text"
	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

const (
	defaultBaseURL  = "https://api.coingecko.com/api/v3"
	defaultTimeout  = 30 * time.Second
	defaultMaxTries = 3
	vsCurrency      = "usd"
	maxBodyBytes    = 4 << 20
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// MaxTries bounds the attempts per batch; 429 and 5xx are retried.
	MaxTries       uint
	InitialBackoff time.Duration
	// MinInterval spaces consecutive calls to respect the public rate limit.
	MinInterval time.Duration
	Proxy       exchange.ProxyConfig
}

func (c *Config) withDefaults() Config {
	out := *c
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	if out.BaseURL == "" {
		out.BaseURL = defaultBaseURL
	}
	out.APIKey = strings.TrimSpace(out.APIKey)
	if out.Timeout <= 0 {
		out.Timeout = defaultTimeout
	}
	if out.MaxTries == 0 {
		out.MaxTries = defaultMaxTries
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = backoff.DefaultInitialInterval
	}
	return out
}

// Source is a pricing tier backed by CoinGecko. Prices are fetched in
// Preload and served from memory by Resolve.
type Source struct {
	cfg     Config
	client  *http.Client
	ids     map[string]string
	limiter *rate.Limiter
	nowFn   func() time.Time

	mu        sync.RWMutex
	prices    map[string]float64
	fetchedAt time.Time
}

func New(cfg Config, ids map[string]string) (*Source, error) {
	final := cfg.withDefaults()
	client, err := exchange.NewHTTPClient(final.Timeout, final.Proxy)
	if err != nil {
		return nil, err
	}
	limit := rate.Inf
	if final.MinInterval > 0 {
		limit = rate.Every(final.MinInterval)
	}
	if ids == nil {
		ids = MergeIDs(nil)
	}
	return &Source{
		cfg:     final,
		client:  client,
		ids:     ids,
		limiter: rate.NewLimiter(limit, 1),
		nowFn:   time.Now,
		prices:  map[string]float64{},
	}, nil
}

func (s *Source) Name() string { return pricing.TierCoinGecko }

// mapIDs resolves each symbol to a CoinGecko id, falling back to the
// lowercase symbol for unmapped coins.
func (s *Source) mapIDs(symbols []string) map[string]string {
	out := make(map[string]string, len(symbols))
	for _, sym := range symbol.NormalizeList(symbols) {
		if id, ok := s.ids[sym]; ok {
			out[sym] = id
			continue
		}
		fallback := strings.ToLower(sym)
		logger.Warnf("coingecko: %s not mapped, using fallback id %q", sym, fallback)
		out[sym] = fallback
	}
	return out
}

func (s *Source) Preload(ctx context.Context, symbols []string) error {
	ids := s.mapIDs(symbols)
	prices := make(map[string]float64, len(ids))
	defer func() {
		s.mu.Lock()
		s.prices, s.fetchedAt = prices, s.nowFn()
		s.mu.Unlock()
	}()
	if len(ids) == 0 {
		return nil
	}
	byID, err := s.fetch(ctx, ids)
	if err != nil {
		return err
	}
	for sym, id := range ids {
		price, ok := byID[id]
		if !ok || price <= 0 {
			logger.Warnf("coingecko: no price for %s (%s)", sym, id)
			continue
		}
		prices[sym] = price
	}
	return nil
}

func (s *Source) fetch(ctx context.Context, ids map[string]string) (map[string]float64, error) {
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	list := make([]string, 0, len(unique))
	for id := range unique {
		list = append(list, id)
	}
	sort.Strings(list)

	q := url.Values{}
	q.Set("ids", strings.Join(list, ","))
	q.Set("vs_currencies", vsCurrency)
	endpoint := s.cfg.BaseURL + "/simple/price?" + q.Encode()

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.cfg.InitialBackoff
	return backoff.Retry(ctx, func() (map[string]float64, error) {
		return s.fetchOnce(ctx, endpoint)
	},
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(s.cfg.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warnf("coingecko: %v, retrying in %s", err, next)
		}),
	)
}

func (s *Source) fetchOnce(ctx context.Context, endpoint string) (map[string]float64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", s.cfg.APIKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
			return nil, backoff.RetryAfter(secs)
		}
		return nil, fmt.Errorf("coingecko status %d", resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("coingecko status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("coingecko status %d: %s", resp.StatusCode, text.Truncate(string(body), 200)))
	}

	var payload map[string]map[string]float64
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode coingecko response: %w", err))
	}
	out := make(map[string]float64, len(payload))
	for id, quotes := range payload {
		if price, ok := quotes[vsCurrency]; ok {
			out[id] = price
		}
	}
	return out, nil
}

func (s *Source) Resolve(_ context.Context, sym string) (types.Quote, bool) {
	base := symbol.Normalize(sym)
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.prices[base]
	if !ok {
		return types.Quote{}, false
	}
	return types.Quote{
		Symbol:    base,
		Price:     price,
		Source:    pricing.TierCoinGecko,
		UpdatedAt: s.fetchedAt,
		Fresh:     true,
	}, true
}
