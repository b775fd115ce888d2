package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/convert"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/jsonfile"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
)

// fileDoc is the precos_saida.json layout shared with the panel.
type fileDoc struct {
	UpdatedAt string              `json:"ultima_atualizacao"`
	Prices    map[string]any      `json:"precos"`
	Venues    map[string][]string `json:"fontes,omitempty"`
}

// FileStore keeps the snapshot in a JSON file rewritten atomically.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("snapshot file path cannot be empty")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	raw, ok, err := jsonfile.ReadBytes(s.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	if !ok {
		return Snapshot{Prices: map[string]float64{}}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc fileDoc
	if err := dec.Decode(&doc); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	snap := Snapshot{
		UpdatedAt: parseTimestamp(doc.UpdatedAt),
		Prices:    make(map[string]float64, len(doc.Prices)),
		Venues:    make(map[string][]string, len(doc.Venues)),
	}
	for key, val := range doc.Prices {
		price, err := convert.ParseFloat(val)
		if err != nil || price <= 0 {
			logger.Debugf("snapshot %s: ignoring %s=%v", s.path, key, val)
			continue
		}
		snap.Prices[symbol.Normalize(key)] = price
	}
	for key, venues := range doc.Venues {
		snap.Venues[symbol.Normalize(key)] = venues
	}
	return snap, nil
}

func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := fileDoc{
		UpdatedAt: snap.UpdatedAt.Format(time.RFC3339),
		Prices:    make(map[string]any, len(snap.Prices)),
	}
	for key, price := range snap.Prices {
		doc.Prices[key] = price
	}
	if len(snap.Venues) > 0 {
		doc.Venues = make(map[string][]string, len(snap.Venues))
		for key, venues := range snap.Venues {
			sorted := append([]string(nil), venues...)
			sort.Strings(sorted)
			doc.Venues[key] = sorted
		}
	}
	if err := jsonfile.WriteAtomic(s.path, doc); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05", "2006-01-02 15:04"}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, logger.Location()); err == nil {
			return ts
		}
	}
	return time.Time{}
}
