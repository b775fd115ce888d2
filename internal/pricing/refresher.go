package pricing

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/store/snapshot"
)

// DefaultSnapshotSymbols is the coin list tracked by the price worker when
// snapshot_job.symbols is empty.
var DefaultSnapshotSymbols = []string{
	"AAVE", "ADA", "APE", "APT", "AR", "ARB", "ATOM", "AVAX", "AXS", "BAT",
	"BCH", "BLUR", "BNB", "BONK", "BTC", "COMP", "CRV", "DASH", "DGB", "DENT",
	"DOGE", "DOT", "EGLD", "EOS", "ETC", "ETH", "FET", "FIL", "FLOKI", "FLOW",
	"FTM", "GALA", "GLM", "GRT", "HBAR", "IMX", "INJ", "IOST", "ICP", "KAS",
	"KAVA", "KSM", "LINK", "LTC", "MANA", "MATIC", "MKR", "NEO", "NEAR", "OMG",
	"ONT", "OP", "ORDI", "PEPE", "QNT", "QTUM", "RNDR", "ROSE", "RUNE", "SAND",
	"SEI", "SHIB", "SNX", "SOL", "STX", "SUSHI", "TIA", "THETA", "TRX", "UNI",
	"VET", "XEM", "XLM", "XRP", "XVS", "ZEC", "ZRX",
}

const snapshotPricePlaces = 6

var ErrNoSnapshotPrices = errors.New("no venue returned a price")

type Aggregator interface {
	Aggregate(ctx context.Context, sym string) (float64, []string, bool)
}

// Refresher is the price worker: it averages the venues for a fixed coin
// list and replaces the stored snapshot.
type Refresher struct {
	live        Aggregator
	store       snapshot.Store
	symbols     []string
	concurrency int
	nowFn       func() time.Time
}

func NewRefresher(live Aggregator, store snapshot.Store, symbols []string, concurrency int) *Refresher {
	syms := symbol.NormalizeList(symbols)
	if len(syms) == 0 {
		syms = symbol.NormalizeList(DefaultSnapshotSymbols)
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Refresher{live: live, store: store, symbols: syms, concurrency: concurrency, nowFn: time.Now}
}

func (r *Refresher) Symbols() []string { return append([]string(nil), r.symbols...) }

// RunOnce refreshes the snapshot. When no symbol got a price, or ctx ended
// while venues were queried, the previous snapshot is kept and an error is
// returned.
func (r *Refresher) RunOnce(ctx context.Context) error {
	type slot struct {
		price  float64
		venues []string
		ok     bool
	}
	results := make([]slot, len(r.symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, sym := range r.symbols {
		g.Go(func() error {
			price, venues, ok := r.live.Aggregate(gctx, sym)
			results[i] = slot{price: price, venues: venues, ok: ok}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := snapshot.Snapshot{
		UpdatedAt: r.nowFn().UTC(),
		Prices:    make(map[string]float64, len(r.symbols)),
		Venues:    make(map[string][]string, len(r.symbols)),
	}
	var missing []string
	for i, sym := range r.symbols {
		if !results[i].ok {
			missing = append(missing, sym)
			continue
		}
		snap.Prices[sym] = roundPlaces(results[i].price, snapshotPricePlaces)
		snap.Venues[sym] = results[i].venues
	}
	if len(missing) > 0 {
		logger.Debugf("snapshot: no price for %v", missing)
	}
	if snap.Len() == 0 {
		return ErrNoSnapshotPrices
	}
	if err := r.store.Save(ctx, snap); err != nil {
		return err
	}
	logger.Infof("snapshot: saved %d/%d prices", snap.Len(), len(r.symbols))
	return nil
}
