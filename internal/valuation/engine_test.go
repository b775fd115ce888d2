package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveAll(ctx context.Context, symbols []string) map[string]types.Quote {
	args := m.Called(ctx, symbols)
	if v := args.Get(0); v != nil {
		return v.(map[string]types.Quote)
	}
	return nil
}

type staticResolver map[string]types.Quote

func (s staticResolver) ResolveAll(_ context.Context, symbols []string) map[string]types.Quote {
	out := make(map[string]types.Quote, len(symbols))
	for _, sym := range symbols {
		if q, ok := s[sym]; ok {
			out[sym] = q
		}
	}
	return out
}

type panicClassifier struct{ Classifier }

func (p panicClassifier) Classify(sig Signal) types.Situation {
	if sig.Entry == 13 {
		panic("boom")
	}
	return p.Classifier.Classify(sig)
}

type rejectValidator struct{}

func (rejectValidator) Validate(raw json.RawMessage) error {
	var probe struct {
		Pair any `json:"par"`
	}
	_ = json.Unmarshal(raw, &probe)
	if _, ok := probe.Pair.(string); !ok {
		return errors.New("par must be a string")
	}
	return nil
}

var fixedNow = time.Date(2025, 12, 6, 15, 4, 0, 0, time.UTC)

func entries(raws ...string) []types.Entry {
	out := make([]types.Entry, len(raws))
	for i, raw := range raws {
		out[i] = types.Entry{Index: i, Raw: json.RawMessage(raw)}
	}
	return out
}

func newTestEngine(resolver Resolver, mutate ...func(*Config)) *Engine {
	cfg := Config{
		ModeFilter: "POSICIONAL",
		Gain:       SignedGain{},
		Classifier: GainThreshold{},
		Location:   time.UTC,
		Now:        func() time.Time { return fixedNow },
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	return NewEngine(resolver, cfg)
}

func TestEngineRunMixedBatch(t *testing.T) {
	resolver := &mockResolver{}
	resolver.On("ResolveAll", mock.Anything, []string{"ADA", "SOL", "XRP"}).Return(map[string]types.Quote{
		"ADA": {Symbol: "ADA", Price: 103, Source: "live", Fresh: true},
		"XRP": {Symbol: "XRP", Price: 2.1, Source: "snapshot", Fresh: true},
	}).Once()

	engine := newTestEngine(resolver)
	batch := engine.Run(context.Background(), entries(
		`{"id":1,"par":"ada/usdt","side":"LONG","modo":"POSICIONAL","entrada":100,"status":"ABERTA","alav":10,"data":"2025-12-01","hora":"10:00"}`,
		`{"id":"b2","par":"BTC","side":"SHORT","modo":"POSICIONAL","entrada":"abc","status":"ABERTA"}`,
		`{"id":3,"par":"SOL-USDT","side":"LONG","modo":"POSICIONAL","entrada":50,"status":"ABERTA","preco":52}`,
		`{"id":4,"par":"ETH","side":"LONG","modo":"POSICIONAL","entrada":2000,"status":"FECHADA"}`,
		`{"id":5,"par":"DOT","side":"LONG","modo":"SWING","entrada":5,"status":"ABERTA"}`,
		`{"id":6,"par":"XRP","side":"NAO_ENTRAR","modo":"posicional","entrada":2,"status":"aberta"}`,
		`"not an object"`,
		`{"id":8,"par":"sol","side":"SHORT","modo":"POSICIONAL","entrada":50,"status":"OPEN"}`,
	), Prior{"3": {Price: 51.5, Situation: types.SituationTarget1, Date: "2025-12-05", Time: "09:00"}})

	resolver.AssertExpectations(t)
	assert.Equal(t, types.BatchSummary{Total: 8, Open: 5, Valued: 2, Degraded: 2, Skipped: 2, Excluded: 2}, batch.Summary)
	require.Len(t, batch.Records, 4)

	ada := batch.Records[0]
	assert.Equal(t, json.RawMessage("1"), ada.ID)
	assert.Equal(t, "ADA", ada.Pair)
	assert.Equal(t, 103.0, ada.Price)
	assert.Equal(t, 3.0, ada.PnLPct)
	assert.Equal(t, types.SituationTarget3, ada.Situation)
	assert.Equal(t, 10.0, ada.Leverage)
	assert.Equal(t, "2025-12-06", ada.Date)
	assert.Equal(t, "15:04", ada.Time)
	assert.Equal(t, "live", ada.Source)

	sol := batch.Records[1]
	assert.Equal(t, types.SituationNoPrice, sol.Situation)
	assert.Equal(t, 51.5, sol.Price)
	assert.Equal(t, 0.0, sol.PnLPct)
	assert.Equal(t, "2025-12-05", sol.Date)
	require.NotNil(t, sol.Target1)
	assert.Equal(t, 50.5, *sol.Target1)

	xrp := batch.Records[2]
	assert.Equal(t, types.SituationOpen, xrp.Situation)
	assert.Nil(t, xrp.Target1)
	assert.Nil(t, xrp.Target3)
	assert.Equal(t, 0.0, xrp.PnLPct)
	assert.Equal(t, "POSICIONAL", xrp.Mode)

	short := batch.Records[3]
	assert.Equal(t, types.SituationNoPrice, short.Situation)
	assert.Equal(t, 50.0, short.Price, "no prior and no recorded price falls back to entry")
	assert.Equal(t, "entrada", short.Source)

	var statuses []OutcomeStatus
	for _, out := range batch.Outcomes {
		statuses = append(statuses, out.Status)
	}
	assert.ElementsMatch(t, []OutcomeStatus{
		OutcomeOK, OutcomeSkipped, OutcomeDegraded, OutcomeExcluded,
		OutcomeExcluded, OutcomeOK, OutcomeSkipped, OutcomeDegraded,
	}, statuses)
}

func TestEngineAbsentPriceUsesRecordedPrice(t *testing.T) {
	engine := newTestEngine(staticResolver{})
	batch := engine.Run(context.Background(), entries(
		`{"id":"x","par":"BNB","side":"SHORT","modo":"POSICIONAL","entrada":860.3,"status":"ABERTA","preco":"851,2","data":"2025-12-02","hora":"20:28"}`,
	), nil)

	require.Len(t, batch.Records, 1)
	rec := batch.Records[0]
	assert.Equal(t, types.SituationNoPrice, rec.Situation)
	assert.Equal(t, 851.2, rec.Price)
	assert.Equal(t, "registro", rec.Source)
	assert.Equal(t, "2025-12-02", rec.Date)
	assert.Equal(t, "20:28", rec.Time)
	assert.Equal(t, OutcomeDegraded, batch.Outcomes[0].Status)
}

func TestEngineStaleQuoteKeepsDateTime(t *testing.T) {
	engine := newTestEngine(staticResolver{
		"ADA": {Symbol: "ADA", Price: 0.4567891, Source: "sibling"},
	}, func(c *Config) { c.Gain = ClampedGain{} })
	batch := engine.Run(context.Background(), entries(
		`{"id":1,"par":"ADA","side":"SHORT","modo":"POSICIONAL","entrada":0.5,"status":"ABERTA","data":"2025-12-01","hora":"08:00"}`,
	), nil)

	require.Len(t, batch.Records, 1)
	rec := batch.Records[0]
	assert.Equal(t, 0.457, rec.Price)
	assert.Equal(t, 8.64, rec.PnLPct)
	assert.Equal(t, "2025-12-01", rec.Date)
	assert.Equal(t, "08:00", rec.Time)
	assert.Equal(t, "sibling", rec.Source)
}

func TestEngineCarriesPriorDateTimeWithoutFreshPrice(t *testing.T) {
	engine := newTestEngine(staticResolver{
		"ADA": {Symbol: "ADA", Price: 0.46, Source: "sibling"},
	})
	prior := Prior{
		"1": {Price: 0.45, Situation: types.SituationInProgress, Date: "2025-12-06", Time: "14:55"},
		"2": {Price: 95000, Situation: types.SituationTarget1, Date: "2025-12-06", Time: "14:55"},
	}
	batch := engine.Run(context.Background(), entries(
		`{"id":1,"par":"ADA","side":"LONG","modo":"POSICIONAL","entrada":0.45,"status":"ABERTA","data":"2025-12-01","hora":"08:00"}`,
		`{"id":2,"par":"BTC","side":"LONG","modo":"POSICIONAL","entrada":94000,"status":"ABERTA","data":"2025-12-01","hora":"08:00"}`,
	), prior)

	require.Len(t, batch.Records, 2)
	for _, rec := range batch.Records {
		assert.Equal(t, "2025-12-06", rec.Date, rec.Pair)
		assert.Equal(t, "14:55", rec.Time, rec.Pair)
	}
	assert.Equal(t, "sibling", batch.Records[0].Source)
	assert.Equal(t, types.SituationNoPrice, batch.Records[1].Situation)
	assert.Equal(t, "anterior", batch.Records[1].Source)
}

func TestEnginePriceTargetClassifier(t *testing.T) {
	engine := newTestEngine(staticResolver{
		"ETH": {Symbol: "ETH", Price: 102.5, Source: "live", Fresh: true},
	}, func(c *Config) { c.Classifier = PriceTarget{} })
	batch := engine.Run(context.Background(), entries(
		`{"id":1,"par":"ETH/USDT","side":"LONG","modo":"POSICIONAL","entrada":100,"status":"ABERTA"}`,
	), nil)

	require.Len(t, batch.Records, 1)
	assert.Equal(t, types.SituationTarget2, batch.Records[0].Situation)
}

func TestEnginePanicIsolatedToOnePosition(t *testing.T) {
	engine := newTestEngine(staticResolver{
		"ADA": {Symbol: "ADA", Price: 14, Fresh: true},
		"BTC": {Symbol: "BTC", Price: 101, Fresh: true},
	}, func(c *Config) { c.Classifier = panicClassifier{GainThreshold{}} })
	batch := engine.Run(context.Background(), entries(
		`{"id":1,"par":"ADA","side":"LONG","modo":"POSICIONAL","entrada":13,"status":"ABERTA"}`,
		`{"id":2,"par":"BTC","side":"LONG","modo":"POSICIONAL","entrada":100,"status":"ABERTA"}`,
	), nil)

	require.Len(t, batch.Records, 1)
	assert.Equal(t, "BTC", batch.Records[0].Pair)
	assert.Equal(t, types.SituationTarget1, batch.Records[0].Situation)
	assert.Equal(t, 1, batch.Summary.Skipped)
	assert.Contains(t, batch.Outcomes[0].Reason, "panic")
}

func TestEngineValidatorSkipsRecord(t *testing.T) {
	engine := newTestEngine(staticResolver{}, func(c *Config) { c.Validator = rejectValidator{} })
	batch := engine.Run(context.Background(), entries(
		`{"id":1,"par":42,"side":"LONG","modo":"POSICIONAL","entrada":1,"status":"ABERTA"}`,
		`{"id":2,"par":"ADA","side":"LONG","modo":"POSICIONAL","entrada":1,"status":"ABERTA"}`,
	), nil)

	require.Len(t, batch.Records, 1)
	assert.Equal(t, json.RawMessage("2"), batch.Records[0].ID)
	assert.Equal(t, 1, batch.Summary.Skipped)
}

func TestEngineNonPositiveEntry(t *testing.T) {
	engine := newTestEngine(staticResolver{
		"ADA": {Symbol: "ADA", Price: 1, Fresh: true},
	})
	batch := engine.Run(context.Background(), entries(
		`{"id":1,"par":"ADA","side":"LONG","modo":"POSICIONAL","entrada":0,"status":"ABERTA"}`,
	), nil)

	require.Len(t, batch.Records, 1)
	rec := batch.Records[0]
	assert.Nil(t, rec.Target1)
	assert.Equal(t, 0.0, rec.PnLPct)
	assert.Equal(t, types.SituationInProgress, rec.Situation)
}

func TestRecordJSONShape(t *testing.T) {
	engine := newTestEngine(staticResolver{})
	batch := engine.Run(context.Background(), entries(
		`{"id": "a-1", "par":"ADA","side":"FLAT","modo":"POSICIONAL","entrada":1,"status":"ABERTA"}`,
		`{"par":"ADA","side":"LONG","modo":"POSICIONAL","entrada":1,"status":"ABERTA"}`,
	), nil)
	require.Len(t, batch.Records, 2)

	raw, err := json.Marshal(batch.Records[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"a-1"`)
	assert.Contains(t, string(raw), `"alvo1_us":null`)
	assert.Contains(t, string(raw), `"situacao":"SEM PREÇO"`)

	raw, err = json.Marshal(batch.Records[1])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":null`)
}
