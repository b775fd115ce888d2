package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antihax/optional"
	gateapi "github.com/gateio/gateapi-go/v7"

	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/exchange"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
)

const labelInvalidPair = "INVALID_CURRENCY_PAIR"

// Venue reads spot tickers through the Gate API v4 SDK.
type Venue struct {
	cfg  Config
	rest *gateapi.APIClient
}

func New(cfg Config) (*Venue, error) {
	final := cfg.withDefaults()
	httpClient, err := exchange.NewHTTPClient(final.HTTPTimeout, final.Proxy)
	if err != nil {
		return nil, err
	}
	conf := gateapi.NewConfiguration()
	conf.BasePath = final.RESTBaseURL
	conf.HTTPClient = httpClient
	return &Venue{cfg: final, rest: gateapi.NewAPIClient(conf)}, nil
}

func (v *Venue) Name() string { return "gate" }

func (v *Venue) LastPrice(ctx context.Context, base string) (float64, error) {
	if v == nil || v.rest == nil {
		return 0, fmt.Errorf("gate venue not initialized")
	}
	pair := symbol.Gate.ToExchange(base)
	if pair == "" {
		return 0, fmt.Errorf("invalid symbol: %q", base)
	}
	tickers, _, err := v.rest.SpotApi.ListTickers(ctx, &gateapi.ListTickersOpts{
		CurrencyPair: optional.NewString(pair),
	})
	if err != nil {
		var apiErr gateapi.GateAPIError
		if errors.As(err, &apiErr) && strings.EqualFold(apiErr.Label, labelInvalidPair) {
			return 0, fmt.Errorf("gate %s: %w", pair, pricing.ErrNoTicker)
		}
		return 0, err
	}
	for _, t := range tickers {
		if strings.EqualFold(t.CurrencyPair, pair) {
			return exchange.ParsePrice(t.Last)
		}
	}
	return 0, fmt.Errorf("gate %s: %w", pair, pricing.ErrNoTicker)
}
