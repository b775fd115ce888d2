package pricing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVenue struct {
	name  string
	price float64
	err   error
	calls atomic.Int32
	block chan struct{}
}

func (f *fakeVenue) Name() string { return f.name }

func (f *fakeVenue) LastPrice(_ context.Context, base string) (float64, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.price, f.err
}

func TestLiveAggregateMean(t *testing.T) {
	live := NewLiveAggregate(LiveConfig{VenueTimeout: time.Second},
		&fakeVenue{name: "bybit", price: 0.46},
		&fakeVenue{name: "binance", price: 0.44},
	)
	q, ok := live.Resolve(context.Background(), "ada/usdt")
	require.True(t, ok)
	assert.Equal(t, "ADA", q.Symbol)
	assert.Equal(t, 0.45, q.Price)
	assert.Equal(t, []string{"binance", "bybit"}, q.Venues)
	assert.True(t, q.Fresh)
	assert.Equal(t, TierLive, q.Source)
}

func TestLiveAggregateExcludesFailures(t *testing.T) {
	live := NewLiveAggregate(LiveConfig{VenueTimeout: time.Second},
		&fakeVenue{name: "binance", price: 100},
		&fakeVenue{name: "bybit", err: errors.New("503")},
		&fakeVenue{name: "gate", err: ErrNoTicker},
		&fakeVenue{name: "kraken", price: -1},
	)
	price, venues, ok := live.Aggregate(context.Background(), "BTC")
	require.True(t, ok)
	assert.Equal(t, 100.0, price)
	assert.Equal(t, []string{"binance"}, venues)
}

func TestLiveAggregateAbsentWhenNoVenueAnswers(t *testing.T) {
	live := NewLiveAggregate(LiveConfig{VenueTimeout: time.Second},
		&fakeVenue{name: "binance", err: ErrNoTicker},
		&fakeVenue{name: "bybit", err: errors.New("dial tcp: timeout")},
	)
	_, ok := live.Resolve(context.Background(), "RATS")
	assert.False(t, ok)

	_, ok = NewLiveAggregate(LiveConfig{}).Resolve(context.Background(), "BTC")
	assert.False(t, ok)
}

func TestLiveAggregateStalledVenueBoundedByTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	stalled := &fakeVenue{name: "gate", price: 999, block: release}
	live := NewLiveAggregate(LiveConfig{VenueTimeout: 50 * time.Millisecond},
		stalled,
		&fakeVenue{name: "binance", price: 10},
	)

	start := time.Now()
	price, venues, ok := live.Aggregate(context.Background(), "SOL")
	elapsed := time.Since(start)

	require.True(t, ok)
	assert.Equal(t, 10.0, price)
	assert.Equal(t, []string{"binance"}, venues)
	assert.Less(t, elapsed, time.Second)
}

func TestLiveAggregateBreakerSkipsFailingVenue(t *testing.T) {
	failing := &fakeVenue{name: "bybit", err: errors.New("502")}
	live := NewLiveAggregate(LiveConfig{VenueTimeout: time.Second, BreakerThreshold: 2, BreakerCooldown: time.Hour},
		failing,
		&fakeVenue{name: "binance", price: 1},
	)
	for i := 0; i < 4; i++ {
		_, _, ok := live.Aggregate(context.Background(), "ADA")
		require.True(t, ok)
	}
	assert.Equal(t, int32(2), failing.calls.Load())
}
