package valuation

import (
	"fmt"
	"strings"

	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

const (
	ClassifierGainThreshold = "gain_threshold"
	ClassifierPriceTarget   = "price_target"
)

// Signal is everything a classifier may look at for one priced position.
type Signal struct {
	Side    types.Side
	Entry   float64
	Price   float64
	Gain    float64
	Targets Targets
}

// Classifier maps a priced position to its situation. The missing-price case
// never reaches a classifier.
type Classifier interface {
	Name() string
	Classify(sig Signal) types.Situation
}

// GainThreshold checks favourable targets first, then the stop.
type GainThreshold struct {
	Stop float64
}

func (GainThreshold) Name() string { return ClassifierGainThreshold }

func (c GainThreshold) Classify(sig Signal) types.Situation {
	if !sig.Side.Known() {
		return types.SituationOpen
	}
	stop := c.Stop
	if stop == 0 {
		stop = -3
	}
	switch {
	case atLeast(sig.Gain, 3):
		return types.SituationTarget3
	case atLeast(sig.Gain, 2):
		return types.SituationTarget2
	case atLeast(sig.Gain, 1):
		return types.SituationTarget1
	case atMost(sig.Gain, stop):
		return types.SituationStop
	default:
		return types.SituationInProgress
	}
}

// PriceTarget compares the price with the absolute target levels.
type PriceTarget struct{}

func (PriceTarget) Name() string { return ClassifierPriceTarget }

func (PriceTarget) Classify(sig Signal) types.Situation {
	if sig.Entry <= 0 || !sig.Targets.Defined || sig.Price <= 0 {
		return types.SituationOpen
	}
	reached := atLeast
	if sig.Side == types.SideShort {
		reached = atMost
	}
	labels := [3]types.Situation{types.SituationTarget1, types.SituationTarget2, types.SituationTarget3}
	for i := len(labels) - 1; i >= 0; i-- {
		if reached(sig.Price, sig.Targets.Levels[i]) {
			return labels[i]
		}
	}
	return types.SituationOpen
}

// NewClassifier resolves panel.classifier.
func NewClassifier(name string, stop float64) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ClassifierGainThreshold:
		return GainThreshold{Stop: stop}, nil
	case ClassifierPriceTarget:
		return PriceTarget{}, nil
	default:
		return nil, fmt.Errorf("unknown classifier %q", name)
	}
}
