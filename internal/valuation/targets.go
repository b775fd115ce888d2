package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

const (
	pricePlaces = 3
	pctPlaces   = 2
)

// TargetPercents are the favourable moves behind ALVO 1, 2 and 3.
var TargetPercents = [3]int64{1, 2, 3}

// Targets holds the three exit levels. Defined is false when the entry is not
// positive or the side is not recognized.
type Targets struct {
	Levels  [3]float64
	Defined bool
}

// Pointers returns the levels as nullable values for the panel record.
func (t Targets) Pointers() (*float64, *float64, *float64) {
	if !t.Defined {
		return nil, nil, nil
	}
	t1, t2, t3 := t.Levels[0], t.Levels[1], t.Levels[2]
	return &t1, &t2, &t3
}

// ComputeTargets returns entry*(1+p) for LONG and entry*(1-p) for SHORT,
// rounded to 3 decimals.
func ComputeTargets(entry float64, side types.Side) Targets {
	if entry <= 0 || !side.Known() {
		return Targets{}
	}
	base := dec(entry)
	var out Targets
	for i, pct := range TargetPercents {
		factor := decHundred.Add(decimal.NewFromInt(pct))
		if side == types.SideShort {
			factor = decHundred.Sub(decimal.NewFromInt(pct))
		}
		out.Levels[i] = toFloat(base.Mul(factor).Div(decHundred).Round(pricePlaces))
	}
	out.Defined = true
	return out
}
