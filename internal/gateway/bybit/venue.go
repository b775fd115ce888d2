// Package bybit reads spot last prices from the Bybit v5 public market API.
package bybit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/exchange"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
)

const (
	defaultRESTBaseURL = "https://api.bybit.com"
	tickersPath        = "/v5/market/tickers"
	// retCodeNotSupported is returned for symbols not listed on spot.
	retCodeNotSupported = 10001
	maxBodyBytes        = 1 << 20
)

type Config struct {
	RESTBaseURL string
	HTTPTimeout time.Duration
	Proxy       exchange.ProxyConfig
}

func (c *Config) withDefaults() Config {
	out := *c
	out.RESTBaseURL = strings.TrimRight(strings.TrimSpace(out.RESTBaseURL), "/")
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = defaultRESTBaseURL
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = exchange.DefaultHTTPTimeout
	}
	return out
}

type Venue struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (*Venue, error) {
	final := cfg.withDefaults()
	client, err := exchange.NewHTTPClient(final.HTTPTimeout, final.Proxy)
	if err != nil {
		return nil, err
	}
	return &Venue{cfg: final, client: client}, nil
}

func (v *Venue) Name() string { return "bybit" }

func (v *Venue) LastPrice(ctx context.Context, base string) (float64, error) {
	market := symbol.Bybit.ToExchange(base)
	if market == "" {
		return 0, fmt.Errorf("invalid symbol: %q", base)
	}
	q := url.Values{}
	q.Set("category", "spot")
	q.Set("symbol", market)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.RESTBaseURL+tickersPath+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bybit %s: status %d", market, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("bybit %s: invalid json", market)
	}
	doc := gjson.ParseBytes(body)
	if code := doc.Get("retCode").Int(); code != 0 {
		if code == retCodeNotSupported {
			return 0, fmt.Errorf("bybit %s: %w", market, pricing.ErrNoTicker)
		}
		return 0, fmt.Errorf("bybit %s: retCode %d %s", market, code, doc.Get("retMsg").String())
	}
	var last string
	doc.Get("result.list").ForEach(func(_, item gjson.Result) bool {
		if strings.EqualFold(item.Get("symbol").String(), market) {
			last = item.Get("lastPrice").String()
			return false
		}
		return true
	})
	if last == "" {
		return 0, fmt.Errorf("bybit %s: %w", market, pricing.ErrNoTicker)
	}
	return exchange.ParsePrice(last)
}
