package coingecko

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
)

// DefaultIDs maps the project's standard coins to CoinGecko ids.
var DefaultIDs = map[string]string{
	"AAVE":   "aave",
	"ADA":    "cardano",
	"ALGO":   "algorand",
	"APT":    "aptos",
	"ARB":    "arbitrum",
	"AR":     "arweave",
	"ATOM":   "cosmos",
	"AVAX":   "avalanche-2",
	"AXS":    "axie-infinity",
	"BCH":    "bitcoin-cash",
	"BNB":    "binancecoin",
	"BTC":    "bitcoin",
	"DOGE":   "dogecoin",
	"DOT":    "polkadot",
	"EGLD":   "multiversx",
	"ETC":    "ethereum-classic",
	"ETH":    "ethereum",
	"FET":    "fetch-ai",
	"FIL":    "filecoin",
	"FLUX":   "flux",
	"FTM":    "fantom",
	"GALA":   "gala",
	"ICP":    "internet-computer",
	"IMX":    "immutable-x",
	"INJ":    "injective-protocol",
	"JTO":    "jito-governance-token",
	"KAS":    "kaspa",
	"LDO":    "lido-dao",
	"LINK":   "chainlink",
	"LTC":    "litecoin",
	"MATIC":  "matic-network",
	"NEAR":   "near",
	"OP":     "optimism",
	"PEPE":   "pepe",
	"POL":    "polygon-ecosystem-token",
	"RATS":   "rats",
	"RENDER": "render-token",
	"RUNE":   "thorchain",
	"SEI":    "sei-network",
	"SHIB":   "shiba-inu",
	"SOL":    "solana",
	"SUI":    "sui",
	"SNX":    "synthetix-network-token",
	"TIA":    "celestia",
	"TNSR":   "tensor",
	"TON":    "toncoin",
	"TRX":    "tron",
	"UNI":    "uniswap",
	"WIF":    "dogwifcoin",
	"XRP":    "ripple",
}

type idFile struct {
	IDs map[string]string `yaml:"ids"`
}

// LoadIDFile reads an override map of the form
//
//	ids:
//	  RNDR: render-token
//
// Unknown top-level keys are rejected.
func LoadIDFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read coingecko ids %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var doc idFile
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode coingecko ids %s: %w", path, err)
	}
	out := make(map[string]string, len(doc.IDs))
	for sym, id := range doc.IDs {
		sym = symbol.Normalize(sym)
		id = strings.TrimSpace(id)
		if sym == "" || id == "" {
			return nil, fmt.Errorf("coingecko ids %s: empty symbol or id (%q: %q)", path, sym, id)
		}
		out[sym] = id
	}
	return out, nil
}

// MergeIDs returns DefaultIDs overlaid with overrides.
func MergeIDs(overrides map[string]string) map[string]string {
	out := make(map[string]string, len(DefaultIDs)+len(overrides))
	for k, v := range DefaultIDs {
		out[k] = v
	}
	for k, v := range overrides {
		out[symbol.Normalize(k)] = v
	}
	return out
}
