// Package convert provides type conversion utilities.
package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrMissing    = errors.New("value is missing")
	ErrNotNumeric = errors.New("value is not numeric")
)

// ToFloat64 converts various numeric types to float64.
// Returns 0 for unsupported types or parse failures.
func ToFloat64(v any) float64 {
	f, err := ParseFloat(v)
	if err != nil {
		return 0
	}
	return f
}

// ParseFloat is the strict variant of ToFloat64: nil, blank strings, bools,
// non-numeric strings and non-finite values are reported as errors.
// Decimal commas ("860,3") are accepted since the positions file is edited by hand.
func ParseFloat(v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case nil:
		return 0, ErrMissing
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		f, err = t.Float64()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, ErrMissing
		}
		if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotNumeric, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotNumeric, v)
	}
	return f, nil
}
