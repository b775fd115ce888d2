package symbol

import (
	"sort"
	"strings"
)

// QuoteCurrency is the settlement asset every panel pair is quoted in.
const QuoteCurrency = "USDT"

type Format string

const (
	FormatInternal Format = "internal"
	FormatBinance  Format = "binance"
	FormatBybit    Format = "bybit"
	FormatGate     Format = "gate"
)

// Converter maps a normalized base asset to a venue market code.
type Converter interface {
	ToExchange(base string) string

	Format() Format
}

var separators = strings.NewReplacer("/", "", "-", "", "_", "", " ", "", "\t", "")

// Normalize reduces a pair code to its base asset: "ada/usdt", "ADA-USDT" and
// "ADAUSDT" all yield "ADA". The quote suffix is stripped repeatedly so the
// result is a fixed point of Normalize.
func Normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = separators.Replace(s)
	for len(s) > len(QuoteCurrency) && strings.HasSuffix(s, QuoteCurrency) {
		s = s[:len(s)-len(QuoteCurrency)]
	}
	return s
}

func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// Market renders the unified "BASE/USDT" market name used in logs and by the
// live aggregate.
func Market(s string) string {
	base := Normalize(s)
	if base == "" {
		return ""
	}
	return base + "/" + QuoteCurrency
}

// NormalizeList normalizes, de-duplicates and sorts symbols, dropping blanks.
func NormalizeList(symbols []string) []string {
	if len(symbols) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		norm := Normalize(s)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	sort.Strings(out)
	return out
}
