package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

func TestGainThreshold(t *testing.T) {
	c := GainThreshold{}
	cases := []struct {
		gain float64
		want types.Situation
	}{
		{3.5, types.SituationTarget3},
		{3, types.SituationTarget3},
		{2.5, types.SituationTarget2},
		{1, types.SituationTarget1},
		{0.5, types.SituationInProgress},
		{-2.99, types.SituationInProgress},
		{-3, types.SituationStop},
		{-5, types.SituationStop},
	}
	for _, tc := range cases {
		got := c.Classify(Signal{Side: types.SideLong, Entry: 100, Price: 100, Gain: tc.gain})
		assert.Equal(t, tc.want, got, "gain=%v", tc.gain)
	}
}

func TestGainThresholdCustomStop(t *testing.T) {
	c := GainThreshold{Stop: -5}
	assert.Equal(t, types.SituationInProgress, c.Classify(Signal{Side: types.SideShort, Gain: -4}))
	assert.Equal(t, types.SituationStop, c.Classify(Signal{Side: types.SideShort, Gain: -5}))
}

func TestPriceTarget(t *testing.T) {
	c := PriceTarget{}
	long := ComputeTargets(100, types.SideLong)
	short := ComputeTargets(100, types.SideShort)

	cases := []struct {
		name    string
		side    types.Side
		targets Targets
		price   float64
		want    types.Situation
	}{
		{"long between t2 and t3", types.SideLong, long, 102.5, types.SituationTarget2},
		{"long at t1", types.SideLong, long, 101, types.SituationTarget1},
		{"long above t3", types.SideLong, long, 110, types.SituationTarget3},
		{"long below t1", types.SideLong, long, 100.5, types.SituationOpen},
		{"short at t3", types.SideShort, short, 97, types.SituationTarget3},
		{"short between t1 and t2", types.SideShort, short, 98.5, types.SituationTarget1},
		{"short above entry", types.SideShort, short, 104, types.SituationOpen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(Signal{Side: tc.side, Entry: 100, Price: tc.price, Targets: tc.targets})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUndefinedInputsAreOpen(t *testing.T) {
	unknown := types.ParseSide("NAO_ENTRAR")
	assert.Equal(t, types.SituationOpen, PriceTarget{}.Classify(Signal{Side: types.SideLong, Entry: 0, Price: 50}))
	assert.Equal(t, types.SituationOpen, PriceTarget{}.Classify(Signal{Side: unknown, Entry: 100, Price: 150}))
	assert.Equal(t, types.SituationOpen, GainThreshold{}.Classify(Signal{Side: unknown, Entry: 100, Price: 150}))
}

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier("", 0)
	require.NoError(t, err)
	assert.Equal(t, ClassifierGainThreshold, c.Name())

	c, err = NewClassifier("price_target", 0)
	require.NoError(t, err)
	assert.Equal(t, ClassifierPriceTarget, c.Name())

	_, err = NewClassifier("momentum", 0)
	assert.Error(t, err)
}
