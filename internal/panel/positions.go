package panel

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/convert"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/jsonfile"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
	"github.com/roteirods-byte/Saida-Posicional/internal/valuation"
)

// positionListKeys are the wrapper keys accepted around the positions list.
var positionListKeys = []string{"posicional", "operacoes"}

// LoadPositions reads the hand-edited positions file. Accepted shapes are a
// bare array or an object wrapping the array under one of positionListKeys.
// Elements are returned undecoded; each is parsed on its own later.
func LoadPositions(path string) ([]types.Entry, error) {
	data, ok, err := jsonfile.ReadBytes(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("positions file %s: %w", path, fs.ErrNotExist)
	}
	list, err := positionList(data)
	if err != nil {
		return nil, fmt.Errorf("positions file %s: %w", path, err)
	}
	entries := make([]types.Entry, 0, len(list))
	for i, item := range list {
		entries = append(entries, types.Entry{Index: i, Raw: []byte(item.Raw)})
	}
	return entries, nil
}

func positionList(data []byte) ([]gjson.Result, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.New("empty file")
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid json")
	}
	root := gjson.ParseBytes(data)
	if root.IsArray() {
		return root.Array(), nil
	}
	if root.IsObject() {
		for _, key := range positionListKeys {
			if list := root.Get(key); list.IsArray() {
				return list.Array(), nil
			}
		}
	}
	return nil, fmt.Errorf("no positions list (expected array or %s)", strings.Join(positionListKeys, "/"))
}

// LoadPrior indexes the previous output by position id. A missing file is
// an empty prior.
func LoadPrior(path string) (valuation.Prior, error) {
	prior := valuation.Prior{}
	data, ok, err := jsonfile.ReadBytes(path)
	if err != nil || !ok {
		return prior, err
	}
	list, err := positionList(data)
	if err != nil {
		return prior, fmt.Errorf("previous output %s: %w", path, err)
	}
	for _, rec := range list {
		id := rec.Get("id")
		if !id.Exists() || id.Type == gjson.Null {
			continue
		}
		key := types.IDKey([]byte(id.Raw))
		price := 0.0
		if p := rec.Get("preco"); p.Exists() {
			price, _ = convert.ParseFloat(p.Value())
		}
		prior[key] = valuation.PriorRecord{
			Price:     price,
			Situation: types.Situation(strings.TrimSpace(rec.Get("situacao").String())),
			Date:      rec.Get("data").String(),
			Time:      rec.Get("hora").String(),
		}
	}
	return prior, nil
}
