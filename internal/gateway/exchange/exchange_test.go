package exchange

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
)

func TestNewHTTPClient(t *testing.T) {
	c, err := NewHTTPClient(0, ProxyConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPTimeout, c.Timeout)
	assert.Nil(t, c.Transport)

	c, err = NewHTTPClient(time.Second, ProxyConfig{Enabled: true, RESTURL: "http://127.0.0.1:7890"})
	require.NoError(t, err)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, tr.Proxy)

	_, err = NewHTTPClient(time.Second, ProxyConfig{Enabled: true, RESTURL: "://bad"})
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 0.4512 ")
	require.NoError(t, err)
	assert.Equal(t, 0.4512, p)

	_, err = ParsePrice("")
	assert.ErrorIs(t, err, pricing.ErrNoTicker)

	_, err = ParsePrice("abc")
	assert.Error(t, err)
}
