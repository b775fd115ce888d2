// Package pricing resolves a current USD price per normalized symbol through
// an ordered chain of tiers.
package pricing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

const (
	TierLive      = "live"
	TierSnapshot  = "snapshot"
	TierSibling   = "sibling"
	TierCoinGecko = "coingecko"
)

// ErrNoTicker is returned by a venue that does not list the symbol. It does
// not count as a venue failure.
var ErrNoTicker = errors.New("no ticker for symbol")

// Source is one resolution tier. false means Absent.
type Source interface {
	Name() string
	Resolve(ctx context.Context, sym string) (types.Quote, bool)
}

// Preloader is implemented by tiers that fetch their data once per cycle.
type Preloader interface {
	Preload(ctx context.Context, symbols []string) error
}

// Venue reports the last trade price of BASE/USDT on one exchange.
type Venue interface {
	Name() string
	LastPrice(ctx context.Context, base string) (float64, error)
}

func roundPlaces(val float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(val).Round(places).Float64()
	return f
}
