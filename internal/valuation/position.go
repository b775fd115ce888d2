package valuation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/convert"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

// ErrMalformedPosition marks a record that is skipped while the rest of the
// batch goes on.
var ErrMalformedPosition = errors.New("malformed position")

var nullID = json.RawMessage("null")

// Field aliases accepted on the positions file, first match wins.
var (
	pairKeys     = []string{"par", "pair", "symbol"}
	sideKeys     = []string{"side", "tipo"}
	entryKeys    = []string{"entrada", "entry"}
	statusKeys   = []string{"status", "situacao"}
	modeKeys     = []string{"modo", "mode"}
	leverageKeys = []string{"alav", "leverage"}
	dateKeys     = []string{"data", "date"}
	timeKeys     = []string{"hora", "time"}
	priceKeys    = []string{"preco", "price"}
)

type rawPosition struct {
	fields map[string]any
	id     json.RawMessage
}

func decodeRawPosition(raw json.RawMessage) (rawPosition, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return rawPosition{}, fmt.Errorf("%w: %v", ErrMalformedPosition, err)
	}
	if fields == nil {
		return rawPosition{}, fmt.Errorf("%w: not an object", ErrMalformedPosition)
	}
	var ids struct {
		ID json.RawMessage `json:"id"`
	}
	_ = json.Unmarshal(raw, &ids)
	id := nullID
	if len(bytes.TrimSpace(ids.ID)) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, ids.ID); err == nil {
			id = json.RawMessage(buf.Bytes())
		}
	}
	return rawPosition{fields: fields, id: id}, nil
}

func (r rawPosition) text(keys []string) string {
	for _, k := range keys {
		v, ok := r.fields[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = strings.TrimSpace(t)
		case json.Number:
			s = t.String()
		case bool:
			continue
		default:
			s = strings.TrimSpace(fmt.Sprint(t))
		}
		if s != "" {
			return s
		}
	}
	return ""
}

func (r rawPosition) value(keys []string) any {
	for _, k := range keys {
		if v, ok := r.fields[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// isOpen reports whether the record is an open position of the given mode.
// An empty mode filter accepts every mode.
func (r rawPosition) isOpen(modeFilter string) (bool, string) {
	status := strings.ToUpper(r.text(statusKeys))
	if status != "ABERTA" && status != "OPEN" {
		return false, fmt.Sprintf("status %q", status)
	}
	if modeFilter == "" {
		return true, ""
	}
	mode := r.text(modeKeys)
	if !strings.EqualFold(mode, modeFilter) {
		return false, fmt.Sprintf("mode %q", mode)
	}
	return true, ""
}

// position parses the numeric fields. A non-numeric entry is malformed; a
// missing one is treated as zero and yields zeroed calculations.
func (r rawPosition) position() (types.Position, error) {
	entry, err := convert.ParseFloat(r.value(entryKeys))
	if err != nil && !errors.Is(err, convert.ErrMissing) {
		return types.Position{}, fmt.Errorf("%w: entrada: %v", ErrMalformedPosition, err)
	}
	pair := r.text(pairKeys)
	pos := types.Position{
		ID:       r.id,
		Pair:     pair,
		Symbol:   symbol.Normalize(pair),
		Side:     types.ParseSide(r.text(sideKeys)),
		Mode:     strings.ToUpper(r.text(modeKeys)),
		Status:   strings.ToUpper(r.text(statusKeys)),
		Entry:    entry,
		Leverage: convert.ToFloat64(r.value(leverageKeys)),
		Date:     r.text(dateKeys),
		Time:     r.text(timeKeys),
	}
	if price, err := convert.ParseFloat(r.value(priceKeys)); err == nil && price > 0 {
		pos.Price = price
	}
	if pos.Symbol == "" {
		return types.Position{}, fmt.Errorf("%w: empty pair", ErrMalformedPosition)
	}
	return pos, nil
}

// ParsePosition decodes and parses one raw record without filtering it.
func ParsePosition(raw json.RawMessage) (types.Position, error) {
	r, err := decodeRawPosition(raw)
	if err != nil {
		return types.Position{}, err
	}
	return r.position()
}
