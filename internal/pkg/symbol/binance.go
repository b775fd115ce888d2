package symbol

type BinanceConverter struct{}

func (BinanceConverter) ToExchange(base string) string {
	n := Normalize(base)
	if n == "" {
		return ""
	}
	return n + QuoteCurrency
}

func (BinanceConverter) Format() Format {
	return FormatBinance
}

var Binance = BinanceConverter{}

// BybitConverter shares the concatenated spot format with Binance.
type BybitConverter struct{}

func (BybitConverter) ToExchange(base string) string {
	return Binance.ToExchange(base)
}

func (BybitConverter) Format() Format {
	return FormatBybit
}

var Bybit = BybitConverter{}
