package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Resolver prices every distinct symbol of a cycle. Symbols it cannot price
// are simply missing from the result.
type Resolver interface {
	ResolveAll(ctx context.Context, symbols []string) map[string]types.Quote
}

// Validator checks one raw position before it is parsed.
type Validator interface {
	Validate(raw json.RawMessage) error
}

// PriorRecord is what the previous output said about a position.
type PriorRecord struct {
	Price     float64
	Situation types.Situation
	Date      string
	Time      string
}

// Prior indexes the previous output by position id.
type Prior map[string]PriorRecord

type Config struct {
	// ModeFilter keeps only positions of this mode; empty keeps all.
	ModeFilter string
	Gain       GainPolicy
	Classifier Classifier
	Validator  Validator
	Location   *time.Location
	Now        func() time.Time
}

type Engine struct {
	resolver   Resolver
	modeFilter string
	gain       GainPolicy
	classifier Classifier
	validator  Validator
	loc        *time.Location
	nowFn      func() time.Time
}

func NewEngine(resolver Resolver, cfg Config) *Engine {
	e := &Engine{
		resolver:   resolver,
		modeFilter: cfg.ModeFilter,
		gain:       cfg.Gain,
		classifier: cfg.Classifier,
		validator:  cfg.Validator,
		loc:        cfg.Location,
		nowFn:      cfg.Now,
	}
	if e.gain == nil {
		e.gain = SignedGain{}
	}
	if e.classifier == nil {
		e.classifier = GainThreshold{}
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.nowFn == nil {
		e.nowFn = time.Now
	}
	return e
}

type candidate struct {
	index int
	pos   types.Position
}

// Run values every entry. No single entry can abort the batch: malformed
// records are skipped, unpriced ones degrade to SEM PREÇO.
func (e *Engine) Run(ctx context.Context, entries []types.Entry, prior Prior) Batch {
	now := e.nowFn().In(e.loc)
	batch := Batch{Records: make([]types.ValuationRecord, 0, len(entries))}
	batch.Summary.Total = len(entries)

	candidates := make([]candidate, 0, len(entries))
	for _, en := range entries {
		pos, open, out := e.prepare(en)
		if open {
			batch.Summary.Open++
		}
		if out != nil {
			e.logOutcome(*out)
			batch.add(*out)
			continue
		}
		candidates = append(candidates, candidate{index: en.Index, pos: pos})
	}

	quotes := e.resolve(ctx, candidates)
	for _, c := range candidates {
		quote, found := quotes[c.pos.Symbol]
		rec, out := e.assemble(c, quote, found, prior, now)
		e.logOutcome(out)
		batch.add(out)
		if out.Status != OutcomeSkipped {
			batch.Records = append(batch.Records, rec)
		}
	}
	return batch
}

func (e *Engine) resolve(ctx context.Context, candidates []candidate) map[string]types.Quote {
	if e.resolver == nil || len(candidates) == 0 {
		return map[string]types.Quote{}
	}
	seen := make(map[string]struct{}, len(candidates))
	symbols := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.pos.Symbol]; ok {
			continue
		}
		seen[c.pos.Symbol] = struct{}{}
		symbols = append(symbols, c.pos.Symbol)
	}
	sort.Strings(symbols)
	quotes := e.resolver.ResolveAll(ctx, symbols)
	if quotes == nil {
		quotes = map[string]types.Quote{}
	}
	return quotes
}

// prepare returns a non-nil outcome when the entry does not reach valuation.
// open reports whether the entry passed the status and mode filter.
func (e *Engine) prepare(en types.Entry) (pos types.Position, open bool, out *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			pos = types.Position{}
			out = &Outcome{Index: en.Index, Status: OutcomeSkipped, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()
	raw, err := decodeRawPosition(en.Raw)
	if err != nil {
		return types.Position{}, false, &Outcome{Index: en.Index, Status: OutcomeSkipped, Reason: err.Error()}
	}
	id := types.IDKey(raw.id)
	if ok, why := raw.isOpen(e.modeFilter); !ok {
		return types.Position{}, false, &Outcome{Index: en.Index, ID: id, Status: OutcomeExcluded, Reason: why}
	}
	skip := func(err error) (types.Position, bool, *Outcome) {
		return types.Position{}, true, &Outcome{Index: en.Index, ID: id, Status: OutcomeSkipped, Reason: err.Error()}
	}
	if e.validator != nil {
		if err := e.validator.Validate(en.Raw); err != nil {
			return skip(fmt.Errorf("%w: %v", ErrMalformedPosition, err))
		}
	}
	pos, err = raw.position()
	if err != nil {
		return skip(err)
	}
	return pos, true, nil
}

func (e *Engine) assemble(c candidate, quote types.Quote, found bool, prior Prior, now time.Time) (rec types.ValuationRecord, out Outcome) {
	pos := c.pos
	out = Outcome{Index: c.index, ID: pos.IDKey(), Symbol: pos.Symbol, Status: OutcomeOK}
	defer func() {
		if r := recover(); r != nil {
			rec = types.ValuationRecord{}
			out.Status = OutcomeSkipped
			out.Reason = fmt.Sprintf("panic: %v", r)
		}
	}()

	targets := ComputeTargets(pos.Entry, pos.Side)
	t1, t2, t3 := targets.Pointers()
	rec = types.ValuationRecord{
		ID:       pos.ID,
		Pair:     pos.Symbol,
		Side:     pos.Side,
		Mode:     pos.Mode,
		Entry:    Round(pos.Entry, pricePlaces),
		Target1:  t1,
		Gain1Pct: float64(TargetPercents[0]),
		Target2:  t2,
		Gain2Pct: float64(TargetPercents[1]),
		Target3:  t3,
		Gain3Pct: float64(TargetPercents[2]),
		Leverage: pos.Leverage,
		Date:     pos.Date,
		Time:     pos.Time,
	}
	if len(rec.ID) == 0 {
		rec.ID = nullID
	}

	last, hasPrior := prior[out.ID]
	if !found || quote.Price <= 0 {
		price, origin := fallbackPrice(pos, last, hasPrior)
		rec.Price = Round(price, pricePlaces)
		rec.Situation = types.SituationNoPrice
		rec.Source = origin
		carryDateTime(&rec, last, hasPrior)
		out.Status = OutcomeDegraded
		out.Reason = "no price, using " + origin
		return rec, out
	}

	gain := e.gain.Gain(pos.Side, pos.Entry, quote.Price)
	rec.Price = Round(quote.Price, pricePlaces)
	rec.PnLPct = gain
	rec.Situation = e.classifier.Classify(Signal{
		Side:    pos.Side,
		Entry:   pos.Entry,
		Price:   quote.Price,
		Gain:    gain,
		Targets: targets,
	})
	rec.Source = quote.Source
	if quote.Fresh {
		rec.Date = now.Format(dateLayout)
		rec.Time = now.Format(timeLayout)
	} else {
		carryDateTime(&rec, last, hasPrior)
	}
	return rec, out
}

// carryDateTime keeps the date and time of the previous output when this
// cycle has no fresh price; the position's own fields are the fallback.
func carryDateTime(rec *types.ValuationRecord, last PriorRecord, hasPrior bool) {
	if hasPrior && last.Date != "" {
		rec.Date, rec.Time = last.Date, last.Time
	}
}

// fallbackPrice picks the best price available when no tier resolved one:
// the previous output, then the price on the position, then the entry.
func fallbackPrice(pos types.Position, last PriorRecord, hasPrior bool) (float64, string) {
	if hasPrior && last.Price > 0 {
		return last.Price, "anterior"
	}
	if pos.Price > 0 {
		return pos.Price, "registro"
	}
	return pos.Entry, "entrada"
}

func (e *Engine) logOutcome(out Outcome) {
	switch out.Status {
	case OutcomeSkipped:
		logger.Warnf("position #%d (id=%s) skipped: %s", out.Index, out.ID, out.Reason)
	case OutcomeDegraded:
		logger.Warnf("position %s (id=%s) degraded: %s", out.Symbol, out.ID, out.Reason)
	case OutcomeExcluded:
		logger.Debugf("position #%d (id=%s) excluded: %s", out.Index, out.ID, out.Reason)
	}
}
