package config

import (
	"fmt"
	"strings"

	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/symbol"
)

const (
	defaultAppEnv            = "prod"
	defaultAppLogLevel       = "info"
	defaultAppTimezone       = "America/Sao_Paulo"
	defaultPositionsPath     = "data/operacoes_posicional.json"
	defaultOutputPath        = "data/saida_posicional.json"
	defaultPanelInterval     = "5m"
	defaultModeFilter        = "POSICIONAL"
	defaultGainMode          = "signed"
	defaultClassifier        = "gain_threshold"
	defaultStopPct           = -3.0
	defaultWatchDebounce     = "2s"
	defaultConcurrency       = 8
	defaultVenueTimeout      = "5s"
	defaultBreakerThreshold  = 3
	defaultBreakerCooldown   = "1m"
	defaultSnapshotBackend   = "json"
	defaultSnapshotPath      = "data/precos_saida.json"
	defaultSnapshotMaxAge    = "30m"
	defaultSiblingPath       = "data/entrada.json"
	defaultSiblingListKey    = "posicional"
	defaultSnapshotInterval  = "5m"
	defaultCoinGeckoMaxTries = 3
	defaultCoinGeckoTimeout  = "30s"
)

var (
	defaultTiers  = []string{"live", "snapshot", "sibling"}
	defaultVenues = []VenueConfig{
		{Name: "binance", Enabled: true, RESTBaseURL: "https://api.binance.com"},
		{Name: "bybit", Enabled: true, RESTBaseURL: "https://api.bybit.com"},
		{Name: "gate", Enabled: true, RESTBaseURL: "https://api.gateio.ws/api/v4"},
	}
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Panel.applyDefaults(keys)
	c.Pricing.applyDefaults(keys)
	c.SnapshotJob.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.timezone", &a.Timezone, defaultAppTimezone),
	)
}

func (p *PanelConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("panel.enabled", &p.Enabled, true),
		boolFieldDefault("panel.run_immediately", &p.RunImmediately, true),
		stringFieldDefault("panel.positions_path", &p.PositionsPath, defaultPositionsPath),
		stringFieldDefault("panel.output_path", &p.OutputPath, defaultOutputPath),
		stringFieldDefault("panel.interval", &p.Interval, defaultPanelInterval),
		stringFieldDefault("panel.mode_filter", &p.ModeFilter, defaultModeFilter),
		stringFieldDefault("panel.gain_mode", &p.GainMode, defaultGainMode),
		stringFieldDefault("panel.classifier", &p.Classifier, defaultClassifier),
		stringFieldDefault("panel.watch_debounce", &p.WatchDebounce, defaultWatchDebounce),
		fieldDefault{
			key:   "panel.stop_pct",
			need:  func() bool { return p.StopPct == 0 },
			apply: func() { p.StopPct = defaultStopPct },
		},
	)
	p.ModeFilter = strings.TrimSpace(p.ModeFilter)
	p.GainMode = strings.ToLower(strings.TrimSpace(p.GainMode))
	p.Classifier = strings.ToLower(strings.TrimSpace(p.Classifier))
}

func (p *PricingConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	p.Tiers = normalizeNameList(p.Tiers)
	if len(p.Tiers) == 0 {
		p.Tiers = append([]string(nil), defaultTiers...)
	}
	applyFieldDefaults(keys,
		stringFieldDefault("pricing.venue_timeout", &p.VenueTimeout, defaultVenueTimeout),
		stringFieldDefault("pricing.breaker.cooldown", &p.Breaker.Cooldown, defaultBreakerCooldown),
		stringFieldDefault("pricing.snapshot.backend", &p.Snapshot.Backend, defaultSnapshotBackend),
		stringFieldDefault("pricing.snapshot.path", &p.Snapshot.Path, defaultSnapshotPath),
		stringFieldDefault("pricing.snapshot.max_age", &p.Snapshot.MaxAge, defaultSnapshotMaxAge),
		stringFieldDefault("pricing.sibling.path", &p.Sibling.Path, defaultSiblingPath),
		stringFieldDefault("pricing.sibling.list_key", &p.Sibling.ListKey, defaultSiblingListKey),
		stringFieldDefault("pricing.coingecko.timeout", &p.CoinGecko.Timeout, defaultCoinGeckoTimeout),
		fieldDefault{
			key:   "pricing.concurrency",
			need:  func() bool { return p.Concurrency <= 0 },
			apply: func() { p.Concurrency = defaultConcurrency },
		},
		fieldDefault{
			key:   "pricing.breaker.threshold",
			need:  func() bool { return p.Breaker.Threshold <= 0 },
			apply: func() { p.Breaker.Threshold = defaultBreakerThreshold },
		},
		fieldDefault{
			key:   "pricing.coingecko.max_tries",
			need:  func() bool { return p.CoinGecko.MaxTries <= 0 },
			apply: func() { p.CoinGecko.MaxTries = defaultCoinGeckoMaxTries },
		},
	)
	p.Snapshot.Backend = strings.ToLower(strings.TrimSpace(p.Snapshot.Backend))
	p.CoinGecko.Proxy.normalize()
	if len(p.Venues) == 0 {
		p.Venues = append([]VenueConfig(nil), defaultVenues...)
	}
	for i := range p.Venues {
		v := &p.Venues[i]
		v.Proxy.normalize()
		v.Name = strings.ToLower(strings.TrimSpace(v.Name))
		if v.Name == "" {
			v.Name = fmt.Sprintf("venue_%d", i)
		}
		if strings.TrimSpace(v.RESTBaseURL) == "" {
			v.RESTBaseURL = defaultVenueURL(v.Name)
		}
	}
}

func (s *SnapshotJobConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("snapshot_job.enabled", &s.Enabled, true),
		boolFieldDefault("snapshot_job.run_immediately", &s.RunImmediately, true),
		stringFieldDefault("snapshot_job.interval", &s.Interval, defaultSnapshotInterval),
	)
	s.Symbols = symbol.NormalizeList(s.Symbols)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func defaultVenueURL(name string) string {
	for _, v := range defaultVenues {
		if v.Name == name {
			return v.RESTBaseURL
		}
	}
	return ""
}

func normalizeNameList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, name := range in {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
