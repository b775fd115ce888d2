package symbol

type GateConverter struct{}

func (GateConverter) ToExchange(base string) string {
	n := Normalize(base)
	if n == "" {
		return ""
	}
	return n + "_" + QuoteCurrency
}

func (GateConverter) Format() Format {
	return FormatGate
}

var Gate = GateConverter{}
