// Package gateway builds the exchange venues named in the configuration.
package gateway

import (
	"fmt"
	"strings"

	"github.com/roteirods-byte/Saida-Posicional/internal/config"
	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/binance"
	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/bybit"
	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/exchange"
	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/gate"
	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
)

// NewVenuesFromConfig returns one venue per enabled entry of pricing.venues,
// in file order.
func NewVenuesFromConfig(cfg *config.Config) ([]pricing.Venue, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	var venues []pricing.Venue
	for _, vc := range cfg.Pricing.EnabledVenues() {
		v, err := newVenue(vc)
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", vc.Name, err)
		}
		venues = append(venues, v)
	}
	return venues, nil
}

func newVenue(vc config.VenueConfig) (pricing.Venue, error) {
	proxy := exchange.ProxyConfig{Enabled: vc.Proxy.Enabled, RESTURL: vc.Proxy.RESTURL}
	timeout := vc.TimeoutDuration()
	switch strings.ToLower(vc.Name) {
	case "binance":
		return binance.New(binance.Config{RESTBaseURL: vc.RESTBaseURL, HTTPTimeout: timeout, Proxy: proxy})
	case "bybit":
		return bybit.New(bybit.Config{RESTBaseURL: vc.RESTBaseURL, HTTPTimeout: timeout, Proxy: proxy})
	case "gate":
		return gate.New(gate.Config{RESTBaseURL: vc.RESTBaseURL, HTTPTimeout: timeout, Proxy: proxy})
	default:
		return nil, fmt.Errorf("unsupported venue: %s", vc.Name)
	}
}
