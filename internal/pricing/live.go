package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/circuit"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

type LiveConfig struct {
	// VenueTimeout bounds every single venue call.
	VenueTimeout     time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

func (c LiveConfig) withDefaults() LiveConfig {
	if c.VenueTimeout <= 0 {
		c.VenueTimeout = 5 * time.Second
	}
	if c.BreakerThreshold <= 0 {
		c.BreakerThreshold = 3
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = time.Minute
	}
	return c
}

type venueSlot struct {
	venue   Venue
	breaker *circuit.Breaker
}

// LiveAggregate averages the last price of every venue that answered in
// time. Venues that fail, time out or do not list the symbol are left out.
type LiveAggregate struct {
	cfg    LiveConfig
	venues []venueSlot
	nowFn  func() time.Time
}

func NewLiveAggregate(cfg LiveConfig, venues ...Venue) *LiveAggregate {
	cfg = cfg.withDefaults()
	slots := make([]venueSlot, 0, len(venues))
	for _, v := range venues {
		if v == nil {
			continue
		}
		slots = append(slots, venueSlot{
			venue:   v,
			breaker: circuit.New(v.Name(), cfg.BreakerThreshold, cfg.BreakerCooldown),
		})
	}
	return &LiveAggregate{cfg: cfg, venues: slots, nowFn: time.Now}
}

func (l *LiveAggregate) Name() string { return TierLive }

func (l *LiveAggregate) Venues() []string {
	names := make([]string, len(l.venues))
	for i, slot := range l.venues {
		names[i] = slot.venue.Name()
	}
	return names
}

func (l *LiveAggregate) Resolve(ctx context.Context, sym string) (types.Quote, bool) {
	price, venues, ok := l.Aggregate(ctx, sym)
	if !ok {
		return types.Quote{}, false
	}
	return types.Quote{
		Symbol:    symbol.Normalize(sym),
		Price:     price,
		Source:    TierLive,
		Venues:    venues,
		UpdatedAt: l.nowFn(),
		Fresh:     true,
	}, true
}

// Aggregate queries every venue concurrently and returns the arithmetic mean
// of the positive prices received, with the names of the venues behind it.
func (l *LiveAggregate) Aggregate(ctx context.Context, sym string) (float64, []string, bool) {
	base := symbol.Normalize(sym)
	if base == "" || len(l.venues) == 0 {
		return 0, nil, false
	}
	prices := make([]float64, len(l.venues))
	var g errgroup.Group
	for i, slot := range l.venues {
		if !slot.breaker.Allow() {
			logger.Debugf("pricing: venue %s skipped for %s, breaker %s", slot.venue.Name(), base, slot.breaker.State())
			continue
		}
		g.Go(func() error {
			price, err := callWithTimeout(ctx, l.cfg.VenueTimeout, func(callCtx context.Context) (float64, error) {
				return slot.venue.LastPrice(callCtx, base)
			})
			switch {
			case errors.Is(err, ErrNoTicker):
				slot.breaker.RecordSuccess()
				logger.Debugf("pricing: %s not listed on %s", symbol.Market(base), slot.venue.Name())
			case err != nil:
				slot.breaker.RecordFailure()
				logger.Warnf("pricing: %s on %s failed: %v", symbol.Market(base), slot.venue.Name(), err)
			case price <= 0:
				slot.breaker.RecordSuccess()
				logger.Debugf("pricing: %s on %s returned non-positive price %v", symbol.Market(base), slot.venue.Name(), price)
			default:
				slot.breaker.RecordSuccess()
				prices[i] = price
			}
			return nil
		})
	}
	_ = g.Wait()

	sum := decimal.Zero
	var venues []string
	for i, price := range prices {
		if price <= 0 {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(price))
		venues = append(venues, l.venues[i].venue.Name())
	}
	if len(venues) == 0 {
		return 0, nil, false
	}
	sort.Strings(venues)
	mean, _ := sum.Div(decimal.NewFromInt(int64(len(venues)))).Float64()
	return mean, venues, true
}

// callWithTimeout returns no later than timeout even if fn ignores its
// context; a late result is discarded.
func callWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) (float64, error)) (float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		price float64
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		price, err := fn(callCtx)
		done <- result{price: price, err: err}
	}()
	select {
	case r := <-done:
		return r.price, r.err
	case <-callCtx.Done():
		return 0, fmt.Errorf("venue call: %w", callCtx.Err())
	}
}
