package pricing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/convert"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/jsonfile"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
)

const defaultSiblingListKey = "posicional"

// SiblingSource reuses the price recorded by the entry panel. The first record
// whose normalized "par" matches wins. Its quotes are not fresh.
type SiblingSource struct {
	path    string
	listKey string

	mu        sync.RWMutex
	prices    map[string]float64
	updatedAt time.Time
	loaded    bool
}

func NewSiblingSource(path, listKey string) *SiblingSource {
	if strings.TrimSpace(listKey) == "" {
		listKey = defaultSiblingListKey
	}
	return &SiblingSource{path: strings.TrimSpace(path), listKey: listKey}
}

func (s *SiblingSource) Name() string { return TierSibling }

func (s *SiblingSource) Preload(context.Context, []string) error {
	prices, updatedAt, err := s.read()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices, s.updatedAt, s.loaded = prices, updatedAt, true
	return err
}

func (s *SiblingSource) read() (map[string]float64, time.Time, error) {
	prices := map[string]float64{}
	raw, ok, err := jsonfile.ReadBytes(s.path)
	if err != nil {
		return prices, time.Time{}, fmt.Errorf("read sibling panel %s: %w", s.path, err)
	}
	if !ok {
		logger.Debugf("pricing: sibling panel %s not found", s.path)
		return prices, time.Time{}, nil
	}
	if !gjson.ValidBytes(raw) {
		return prices, time.Time{}, fmt.Errorf("sibling panel %s: invalid json", s.path)
	}
	doc := gjson.ParseBytes(raw)
	list := doc
	if !doc.IsArray() {
		list = doc.Get(s.listKey)
	}
	list.ForEach(func(_, item gjson.Result) bool {
		base := symbol.Normalize(item.Get("par").String())
		if base == "" {
			return true
		}
		if _, seen := prices[base]; seen {
			return true
		}
		price, err := convert.ParseFloat(item.Get("preco").Value())
		if err != nil || price <= 0 {
			return true
		}
		prices[base] = price
		return true
	})
	var updatedAt time.Time
	if ts := doc.Get("ultima_atualizacao"); ts.Exists() {
		for _, layout := range []string{"2006-01-02 15:04", time.RFC3339Nano} {
			if parsed, err := time.ParseInLocation(layout, ts.String(), logger.Location()); err == nil {
				updatedAt = parsed
				break
			}
		}
	}
	return prices, updatedAt, nil
}

func (s *SiblingSource) Resolve(ctx context.Context, sym string) (types.Quote, bool) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		if err := s.Preload(ctx, nil); err != nil {
			logger.Warnf("pricing: %v", err)
		}
	}
	base := symbol.Normalize(sym)
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.prices[base]
	if !ok {
		return types.Quote{}, false
	}
	return types.Quote{
		Symbol:    base,
		Price:     price,
		Source:    TierSibling,
		UpdatedAt: s.updatedAt,
	}, true
}
