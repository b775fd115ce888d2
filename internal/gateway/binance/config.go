package binance

import (
	"strings"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/exchange"
)

const defaultRESTBaseURL = "https://api.binance.com"

type Config struct {
	RESTBaseURL string
	HTTPTimeout time.Duration
	Proxy       exchange.ProxyConfig
}

func (c *Config) withDefaults() Config {
	out := *c
	out.RESTBaseURL = strings.TrimRight(strings.TrimSpace(out.RESTBaseURL), "/")
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = defaultRESTBaseURL
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = exchange.DefaultHTTPTimeout
	}
	return out
}
