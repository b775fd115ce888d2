package valuation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

const (
	GainModeSigned  = "signed"
	GainModeClamped = "clamped"
)

// GainPolicy turns entry, price and side into a percentage gain rounded to 2
// decimals.
type GainPolicy interface {
	Name() string
	Gain(side types.Side, entry, price float64) float64
}

// SignedGain reports losses as negative values, which lets the gain
// threshold classifier detect STOP.
type SignedGain struct{}

func (SignedGain) Name() string { return GainModeSigned }

func (SignedGain) Gain(side types.Side, entry, price float64) float64 {
	pct, ok := rawGain(side, entry, price)
	if !ok {
		return 0
	}
	return toFloat(pct.Round(pctPlaces))
}

// ClampedGain only ever reports how much was gained so far.
type ClampedGain struct{}

func (ClampedGain) Name() string { return GainModeClamped }

func (ClampedGain) Gain(side types.Side, entry, price float64) float64 {
	pct, ok := rawGain(side, entry, price)
	if !ok || pct.IsNegative() {
		return 0
	}
	return toFloat(pct.Round(pctPlaces))
}

func rawGain(side types.Side, entry, price float64) (decimal.Decimal, bool) {
	if entry <= 0 || price <= 0 || !side.Known() {
		return decimal.Zero, false
	}
	e := dec(entry)
	p := dec(price)
	diff := p.Sub(e)
	if side == types.SideShort {
		diff = e.Sub(p)
	}
	return diff.Div(e).Mul(decHundred), true
}

// NewGainPolicy resolves panel.gain_mode.
func NewGainPolicy(mode string) (GainPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", GainModeSigned:
		return SignedGain{}, nil
	case GainModeClamped:
		return ClampedGain{}, nil
	default:
		return nil, fmt.Errorf("unknown gain mode %q", mode)
	}
}
