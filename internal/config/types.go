package config

import "strings"

// Config is the root of the panel worker configuration.
type Config struct {
	App         AppConfig         `toml:"app"`
	Panel       PanelConfig       `toml:"panel"`
	Pricing     PricingConfig     `toml:"pricing"`
	SnapshotJob SnapshotJobConfig `toml:"snapshot_job"`
	Notify      NotifyConfig      `toml:"notify"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
	Timezone string `toml:"timezone"`
}

// PanelConfig drives the exit panel job.
type PanelConfig struct {
	Enabled       bool   `toml:"enabled"`
	PositionsPath string `toml:"positions_path"`
	OutputPath    string `toml:"output_path"`
	// SchemaPath overrides the built-in position schema.
	SchemaPath     string  `toml:"schema_path"`
	Interval       string  `toml:"interval"`
	Offset         string  `toml:"offset"`
	ModeFilter     string  `toml:"mode_filter"`
	GainMode       string  `toml:"gain_mode"`
	Classifier     string  `toml:"classifier"`
	StopPct        float64 `toml:"stop_pct"`
	RunImmediately bool    `toml:"run_immediately"`
	WatchPositions bool    `toml:"watch_positions"`
	WatchDebounce  string  `toml:"watch_debounce"`
}

// PricingConfig selects the price tiers and their parameters.
type PricingConfig struct {
	Tiers        []string        `toml:"tiers"`
	Concurrency  int             `toml:"concurrency"`
	VenueTimeout string          `toml:"venue_timeout"`
	Breaker      BreakerConfig   `toml:"breaker"`
	Venues       []VenueConfig   `toml:"venues"`
	CoinGecko    CoinGeckoConfig `toml:"coingecko"`
	Snapshot     SnapshotConfig  `toml:"snapshot"`
	Sibling      SiblingConfig   `toml:"sibling"`
}

type BreakerConfig struct {
	Threshold int    `toml:"threshold"`
	Cooldown  string `toml:"cooldown"`
}

type VenueConfig struct {
	Name        string      `toml:"name"`
	Enabled     bool        `toml:"enabled"`
	RESTBaseURL string      `toml:"rest_base_url"`
	Timeout     string      `toml:"timeout"`
	Proxy       ProxyConfig `toml:"proxy"`
}

type ProxyConfig struct {
	Enabled bool   `toml:"enabled"`
	RESTURL string `toml:"rest_url"`
}

func (p *ProxyConfig) normalize() {
	if p == nil {
		return
	}
	p.RESTURL = strings.TrimSpace(p.RESTURL)
}

type CoinGeckoConfig struct {
	BaseURL     string      `toml:"base_url"`
	APIKey      string      `toml:"api_key"`
	IDsPath     string      `toml:"ids_path"`
	Timeout     string      `toml:"timeout"`
	MaxTries    int         `toml:"max_tries"`
	MinInterval string      `toml:"min_interval"`
	Proxy       ProxyConfig `toml:"proxy"`
}

type SnapshotConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
	// MaxAge of "0" or empty accepts a snapshot of any age.
	MaxAge string `toml:"max_age"`
}

type SiblingConfig struct {
	Path    string `toml:"path"`
	ListKey string `toml:"list_key"`
}

// SnapshotJobConfig drives the price worker that keeps the snapshot fresh.
type SnapshotJobConfig struct {
	Enabled        bool     `toml:"enabled"`
	Interval       string   `toml:"interval"`
	RunImmediately bool     `toml:"run_immediately"`
	Symbols        []string `toml:"symbols"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   int64  `toml:"chat_id"`
}

// EnabledVenues returns the venues switched on, in file order.
func (p PricingConfig) EnabledVenues() []VenueConfig {
	out := make([]VenueConfig, 0, len(p.Venues))
	for _, v := range p.Venues {
		if v.Enabled {
			out = append(out, v)
		}
	}
	return out
}

// HasTier reports whether name is part of the resolution chain.
func (p PricingConfig) HasTier(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range p.Tiers {
		if t == name {
			return true
		}
	}
	return false
}

// keySet tracks the keys explicitly present in the config files.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes how one field gets its default.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
