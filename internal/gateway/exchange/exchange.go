// Package exchange holds the HTTP plumbing shared by the public ticker venues.
package exchange

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
)

const DefaultHTTPTimeout = 10 * time.Second

type ProxyConfig struct {
	Enabled bool
	RESTURL string
}

// NewHTTPClient returns a client with the given timeout, routed through the
// REST proxy when one is enabled.
func NewHTTPClient(timeout time.Duration, proxy ProxyConfig) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	client := &http.Client{Timeout: timeout}
	proxyRaw := strings.TrimSpace(proxy.RESTURL)
	if !proxy.Enabled || proxyRaw == "" {
		return client, nil
	}
	proxyURL, err := url.Parse(proxyRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid REST proxy url: %w", err)
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok || baseTransport == nil {
		return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
	}
	transport := baseTransport.Clone()
	transport.Proxy = http.ProxyURL(proxyURL)
	client.Transport = transport
	return client, nil
}

// ParsePrice parses a ticker price string. Blank values mean the venue has
// no recent trade for the market.
func ParsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, pricing.ErrNoTicker
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", raw, err)
	}
	return price, nil
}
