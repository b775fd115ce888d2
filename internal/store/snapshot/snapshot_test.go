package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "data", "precos_saida.json"))
	require.NoError(t, err)

	ts := time.Date(2025, 12, 6, 18, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, Snapshot{
		UpdatedAt: ts,
		Prices:    map[string]float64{"ADA": 0.456789, "BTC": 89700.5},
		Venues:    map[string][]string{"ADA": {"bybit", "binance"}},
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ts.Equal(got.UpdatedAt))
	assert.Equal(t, 2, got.Len())
	price, ok := got.Price("ada/usdt")
	require.True(t, ok)
	assert.Equal(t, 0.456789, price)
	assert.Equal(t, []string{"binance", "bybit"}, got.Venues["ADA"])
}

func TestFileStoreReadsWorkerLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "precos_saida.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "ultima_atualizacao": "2025-12-06T15:04:05.123456+00:00",
  "precos": {"ADA": 0.45, "btcusdt": "89700", "BAD": "n/a", "ZERO": 0}
}`), 0o644))
	store, err := NewFileStore(path)
	require.NoError(t, err)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	p, ok := got.Price("BTC")
	require.True(t, ok)
	assert.Equal(t, 89700.0, p)
	_, ok = got.Price("BAD")
	assert.False(t, ok)
	assert.Equal(t, 2025, got.UpdatedAt.Year())
	assert.Equal(t, 123456000, got.UpdatedAt.Nanosecond())
}

func TestFileStoreMissingIsEmpty(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.Len())
	assert.True(t, got.UpdatedAt.IsZero())
	assert.Greater(t, got.Age(time.Now()), 24*time.Hour)
}

func TestFileStoreCorruptIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "precos_saida.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"precos":`), 0o644))
	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = store.Load(context.Background())
	assert.Error(t, err)
}

func TestSQLiteStoreReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	first := time.Unix(1_765_000_000, 0)
	require.NoError(t, store.Save(ctx, Snapshot{
		UpdatedAt: first,
		Prices:    map[string]float64{"ADA": 0.45, "SOL": 140},
		Venues:    map[string][]string{"ADA": {"binance", "bybit"}},
	}))
	second := first.Add(5 * time.Minute)
	require.NoError(t, store.Save(ctx, Snapshot{
		UpdatedAt: second,
		Prices:    map[string]float64{"ADA": 0.46},
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"ADA": 0.46}, got.Prices)
	assert.True(t, second.Equal(got.UpdatedAt))
	assert.Empty(t, got.Venues["ADA"])
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("", filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open("redis", filepath.Join(dir, "b"))
	assert.Error(t, err)
}
