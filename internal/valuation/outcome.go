package valuation

import "github.com/roteirods-byte/Saida-Posicional/internal/types"

type OutcomeStatus string

const (
	OutcomeOK       OutcomeStatus = "ok"
	OutcomeDegraded OutcomeStatus = "degraded"
	OutcomeSkipped  OutcomeStatus = "skipped"
	OutcomeExcluded OutcomeStatus = "excluded"
)

// Outcome is the per-entry result of a cycle. Reason is empty for ok.
type Outcome struct {
	Index  int
	ID     string
	Symbol string
	Status OutcomeStatus
	Reason string
}

// Batch is everything one engine run produced.
type Batch struct {
	Records  []types.ValuationRecord
	Outcomes []Outcome
	Summary  types.BatchSummary
}

func (b *Batch) add(out Outcome) {
	b.Outcomes = append(b.Outcomes, out)
	switch out.Status {
	case OutcomeOK:
		b.Summary.Valued++
	case OutcomeDegraded:
		b.Summary.Degraded++
	case OutcomeSkipped:
		b.Summary.Skipped++
	case OutcomeExcluded:
		b.Summary.Excluded++
	}
}
