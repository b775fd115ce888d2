// Package snapshot persists the averaged price snapshot written by the price
// worker and read back as a pricing tier.
package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Snapshot maps normalized symbols to their last averaged USD price.
type Snapshot struct {
	UpdatedAt time.Time
	Prices    map[string]float64
	// Venues lists the venues that contributed to each price, when known.
	Venues map[string][]string
}

func (s Snapshot) Len() int { return len(s.Prices) }

// Price looks up a symbol in any accepted notation.
func (s Snapshot) Price(sym string) (float64, bool) {
	p, ok := s.Prices[symbol.Normalize(sym)]
	if !ok || p <= 0 {
		return 0, false
	}
	return p, true
}

// Age is the time since the snapshot was written; unknown timestamps are
// reported as infinitely old.
func (s Snapshot) Age(now time.Time) time.Duration {
	if s.UpdatedAt.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(s.UpdatedAt)
}

// Store loads and replaces the current snapshot. A store that was never
// written loads as an empty snapshot.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

// Open builds the store selected by pricing.snapshot.backend.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		return NewFileStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", backend)
	}
}
