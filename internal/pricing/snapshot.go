package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/store/snapshot"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

// SnapshotLoader is the read side of the snapshot store.
type SnapshotLoader interface {
	Load(ctx context.Context) (snapshot.Snapshot, error)
}

// SnapshotSource serves prices from the snapshot written by the price worker.
// The snapshot is loaded once per cycle; MaxAge 0 accepts any age.
type SnapshotSource struct {
	store  SnapshotLoader
	maxAge time.Duration
	nowFn  func() time.Time

	mu     sync.RWMutex
	snap   snapshot.Snapshot
	loaded bool
}

func NewSnapshotSource(store SnapshotLoader, maxAge time.Duration) *SnapshotSource {
	return &SnapshotSource{store: store, maxAge: maxAge, nowFn: time.Now}
}

func (s *SnapshotSource) Name() string { return TierSnapshot }

func (s *SnapshotSource) Preload(ctx context.Context, _ []string) error {
	snap, err := s.store.Load(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snap, s.loaded = snapshot.Snapshot{}, true
		return err
	}
	s.snap, s.loaded = snap, true
	if s.maxAge > 0 && snap.Age(s.nowFn()) > s.maxAge {
		logger.Warnf("pricing: snapshot from %s is older than %s, tier disabled this cycle",
			snap.UpdatedAt.Format(time.RFC3339), s.maxAge)
	}
	return nil
}

func (s *SnapshotSource) current(ctx context.Context) snapshot.Snapshot {
	s.mu.RLock()
	snap, loaded := s.snap, s.loaded
	s.mu.RUnlock()
	if loaded {
		return snap
	}
	if err := s.Preload(ctx, nil); err != nil {
		logger.Warnf("pricing: load snapshot failed: %v", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *SnapshotSource) Resolve(ctx context.Context, sym string) (types.Quote, bool) {
	snap := s.current(ctx)
	if s.maxAge > 0 && snap.Age(s.nowFn()) > s.maxAge {
		return types.Quote{}, false
	}
	price, ok := snap.Price(sym)
	if !ok {
		return types.Quote{}, false
	}
	base := symbol.Normalize(sym)
	return types.Quote{
		Symbol:    base,
		Price:     price,
		Source:    TierSnapshot,
		Venues:    snap.Venues[base],
		UpdatedAt: snap.UpdatedAt,
		Fresh:     true,
	}, true
}
