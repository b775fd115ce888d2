package pricing

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

const defaultConcurrency = 8

// Chain tries its sources in order and returns the first price found.
type Chain struct {
	sources     []Source
	concurrency int
}

func NewChain(concurrency int, sources ...Source) *Chain {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	kept := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Chain{sources: kept, concurrency: concurrency}
}

func (c *Chain) Tiers() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return names
}

func (c *Chain) Resolve(ctx context.Context, sym string) (types.Quote, bool) {
	sym = symbol.Normalize(sym)
	if sym == "" {
		return types.Quote{}, false
	}
	for _, src := range c.sources {
		if ctx.Err() != nil {
			return types.Quote{}, false
		}
		q, ok := src.Resolve(ctx, sym)
		if ok && q.Price > 0 {
			if q.Symbol == "" {
				q.Symbol = sym
			}
			if q.Source == "" {
				q.Source = src.Name()
			}
			return q, true
		}
		logger.Debugf("pricing: %s absent on tier %s", sym, src.Name())
	}
	return types.Quote{}, false
}

// ResolveAll preloads every tier, then resolves the symbols in parallel with
// at most concurrency lookups in flight. It returns after all lookups joined.
func (c *Chain) ResolveAll(ctx context.Context, symbols []string) map[string]types.Quote {
	syms := symbol.NormalizeList(symbols)
	if len(syms) == 0 {
		return map[string]types.Quote{}
	}
	for _, src := range c.sources {
		pre, ok := src.(Preloader)
		if !ok {
			continue
		}
		if err := pre.Preload(ctx, syms); err != nil {
			logger.Warnf("pricing: preload of tier %s failed: %v", src.Name(), err)
		}
	}

	type slot struct {
		quote types.Quote
		ok    bool
	}
	results := make([]slot, len(syms))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, sym := range syms {
		g.Go(func() error {
			q, ok := c.Resolve(ctx, sym)
			results[i] = slot{quote: q, ok: ok}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]types.Quote, len(syms))
	for i, sym := range syms {
		if results[i].ok {
			out[sym] = results[i].quote
		}
	}
	return out
}
