package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Side is the trade direction. Unrecognized values are kept verbatim and
// treated as a neutral side.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

func ParseSide(raw string) Side {
	return Side(strings.ToUpper(strings.TrimSpace(raw)))
}

func (s Side) Known() bool { return s == SideLong || s == SideShort }

// Situation is the exit label shown on the panel.
type Situation string

const (
	SituationTarget1    Situation = "ALVO 1"
	SituationTarget2    Situation = "ALVO 2"
	SituationTarget3    Situation = "ALVO 3"
	SituationStop       Situation = "STOP"
	SituationInProgress Situation = "EM ANDAMENTO"
	SituationOpen       Situation = "ABERTA"
	SituationNoPrice    Situation = "SEM PREÇO"
)

// Actionable reports whether reaching this label deserves an alert.
func (s Situation) Actionable() bool {
	switch s {
	case SituationTarget1, SituationTarget2, SituationTarget3, SituationStop:
		return true
	}
	return false
}

// Entry is one raw element of the positions list, kept undecoded so a single
// malformed record can be skipped without failing the whole file.
type Entry struct {
	Index int
	Raw   json.RawMessage
}

// Position is an open trade as entered by hand on the positions file.
type Position struct {
	ID       json.RawMessage
	Pair     string
	Symbol   string
	Side     Side
	Mode     string
	Status   string
	Entry    float64
	Leverage float64
	Date     string
	Time     string
	// Price is a price recorded on the position by an earlier writer, 0 when absent.
	Price float64
}

// IDKey renders the opaque id as a map key. The key is the compacted JSON
// literal, so the string "1" and the number 1 stay distinct.
func (p Position) IDKey() string { return IDKey(p.ID) }

func IDKey(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

// Quote is a resolved USD price for a normalized symbol.
type Quote struct {
	Symbol    string
	Price     float64
	Source    string
	Venues    []string
	UpdatedAt time.Time
	// Fresh marks tiers whose price reflects the market now; only fresh
	// quotes refresh the record's date and time.
	Fresh bool
}

// ValuationRecord is one row of the exit panel.
type ValuationRecord struct {
	ID        json.RawMessage `json:"id"`
	Pair      string          `json:"par"`
	Side      Side            `json:"side"`
	Mode      string          `json:"modo"`
	Entry     float64         `json:"entrada"`
	Price     float64         `json:"preco"`
	Target1   *float64        `json:"alvo1_us"`
	Gain1Pct  float64         `json:"ganho1_pct"`
	Target2   *float64        `json:"alvo2_us"`
	Gain2Pct  float64         `json:"ganho2_pct"`
	Target3   *float64        `json:"alvo3_us"`
	Gain3Pct  float64         `json:"ganho3_pct"`
	PnLPct    float64         `json:"pnl_pct"`
	Situation Situation       `json:"situacao"`
	Leverage  float64         `json:"alav"`
	Date      string          `json:"data"`
	Time      string          `json:"hora"`
	Source    string          `json:"fonte"`
}

// BatchSummary counts what happened to each entry of one valuation cycle.
type BatchSummary struct {
	Total    int `json:"total"`
	Open     int `json:"abertas"`
	Valued   int `json:"avaliadas"`
	Degraded int `json:"degradadas"`
	Skipped  int `json:"ignoradas"`
	Excluded int `json:"excluidas"`
}

// PanelDocument is the output file consumed by the exit panel front-end.
type PanelDocument struct {
	Positions []ValuationRecord `json:"posicional"`
	UpdatedAt string            `json:"ultima_atualizacao"`
	CycleID   string            `json:"ciclo_id,omitempty"`
	Summary   *BatchSummary     `json:"resumo,omitempty"`
}
