package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
)

func newTestVenue(t *testing.T, handler http.HandlerFunc) *Venue {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	v, err := New(Config{RESTBaseURL: srv.URL})
	require.NoError(t, err)
	return v
}

func TestLastPrice(t *testing.T) {
	var gotSymbol string
	v := newTestVenue(t, func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"ADAUSDT","price":"0.45120000"}`))
	})

	price, err := v.LastPrice(context.Background(), "ada/usdt")
	require.NoError(t, err)
	assert.Equal(t, 0.4512, price)
	assert.Equal(t, "ADAUSDT", gotSymbol)
	assert.Equal(t, "binance", v.Name())
}

func TestLastPriceUnknownSymbol(t *testing.T) {
	v := newTestVenue(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})

	_, err := v.LastPrice(context.Background(), "RATS")
	assert.ErrorIs(t, err, pricing.ErrNoTicker)
}

func TestLastPriceServerError(t *testing.T) {
	v := newTestVenue(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := v.LastPrice(context.Background(), "BTC")
	require.Error(t, err)
	assert.NotErrorIs(t, err, pricing.ErrNoTicker)
}

func TestConfigDefaults(t *testing.T) {
	cfg := (&Config{RESTBaseURL: " https://api1.binance.com/ "}).withDefaults()
	assert.Equal(t, "https://api1.binance.com", cfg.RESTBaseURL)
	assert.Positive(t, cfg.HTTPTimeout)
	assert.Equal(t, defaultRESTBaseURL, (&Config{}).withDefaults().RESTBaseURL)
}
