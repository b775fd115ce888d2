package panel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/notifier"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
	"github.com/roteirods-byte/Saida-Posicional/internal/valuation"
)

// Transition is a record whose situation moved into an actionable label.
type Transition struct {
	Record   types.ValuationRecord
	Previous types.Situation
}

// DetectTransitions compares this cycle's records with the previous output.
// A record alerts when its situation is actionable and differs from the
// previous one; records without a previous entry count as new.
func DetectTransitions(records []types.ValuationRecord, prior valuation.Prior) []Transition {
	var out []Transition
	for _, rec := range records {
		if !rec.Situation.Actionable() {
			continue
		}
		last, ok := prior[types.IDKey(rec.ID)]
		if ok && last.Situation == rec.Situation {
			continue
		}
		out = append(out, Transition{Record: rec, Previous: last.Situation})
	}
	return out
}

func renderTransition(tr Transition, cycleID string, at time.Time) string {
	rec := tr.Record
	icon := "🎯"
	if rec.Situation == types.SituationStop {
		icon = "🛑"
	}
	previous := string(tr.Previous)
	if previous == "" {
		previous = "nova"
	}
	lines := []string{
		"Situação: " + string(rec.Situation) + " (antes: " + previous + ")",
		"Entrada: " + formatPrice(rec.Entry),
		"Preço: " + formatPrice(rec.Price) + " via " + rec.Source,
		fmt.Sprintf("PnL: %.2f%%", rec.PnLPct),
	}
	if targets := formatTargets(rec); targets != "" {
		lines = append(lines, "Alvos: "+targets)
	}
	if rec.Leverage > 0 {
		lines = append(lines, "Alavancagem: "+strconv.FormatFloat(rec.Leverage, 'f', -1, 64)+"x")
	}
	msg := notifier.StructuredMessage{
		Icon:  icon,
		Title: fmt.Sprintf("Saída posicional %s %s", rec.Pair, rec.Side),
		Sections: []notifier.MessageSection{
			{Title: "id " + types.IDKey(rec.ID), Lines: lines},
		},
		Footer:    "ciclo " + cycleID,
		Timestamp: at,
	}
	return msg.RenderMarkdown()
}

func formatTargets(rec types.ValuationRecord) string {
	parts := make([]string, 0, 3)
	for _, t := range []*float64{rec.Target1, rec.Target2, rec.Target3} {
		if t == nil {
			return ""
		}
		parts = append(parts, formatPrice(*t))
	}
	return strings.Join(parts, " / ")
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
