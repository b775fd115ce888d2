package gate

import (
	"strings"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/exchange"
)

const defaultGateREST = "https://api.gateio.ws/api/v4"

type Config struct {
	RESTBaseURL string
	HTTPTimeout time.Duration
	Proxy       exchange.ProxyConfig
}

func (c *Config) withDefaults() Config {
	out := *c
	out.RESTBaseURL = strings.TrimRight(strings.TrimSpace(out.RESTBaseURL), "/")
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = defaultGateREST
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = exchange.DefaultHTTPTimeout
	}
	return out
}
