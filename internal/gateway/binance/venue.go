package binance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/exchange"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
)

// codeInvalidSymbol is returned by the spot API for unlisted markets.
const codeInvalidSymbol = -1121

// Venue reads spot last prices through the go-binance SDK.
type Venue struct {
	cfg    Config
	client *gobinance.Client
}

func New(cfg Config) (*Venue, error) {
	final := cfg.withDefaults()
	httpClient, err := exchange.NewHTTPClient(final.HTTPTimeout, final.Proxy)
	if err != nil {
		return nil, err
	}
	client := gobinance.NewClient("", "")
	client.BaseURL = final.RESTBaseURL
	client.HTTPClient = httpClient
	return &Venue{cfg: final, client: client}, nil
}

func (v *Venue) Name() string { return "binance" }

func (v *Venue) LastPrice(ctx context.Context, base string) (float64, error) {
	if v == nil || v.client == nil {
		return 0, fmt.Errorf("binance venue not initialized")
	}
	market := symbol.Binance.ToExchange(base)
	if market == "" {
		return 0, fmt.Errorf("invalid symbol: %q", base)
	}
	prices, err := v.client.NewListPricesService().Symbol(market).Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Code == codeInvalidSymbol {
			return 0, fmt.Errorf("binance %s: %w", market, pricing.ErrNoTicker)
		}
		return 0, err
	}
	for _, p := range prices {
		if p == nil || !strings.EqualFold(p.Symbol, market) {
			continue
		}
		return exchange.ParsePrice(p.Price)
	}
	return 0, fmt.Errorf("binance %s: %w", market, pricing.ErrNoTicker)
}
