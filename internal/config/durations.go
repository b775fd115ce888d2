package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/scheduler"
)

// parseDuration accepts the interval notation used across the config
// ("30s", "5m", "1h", "1d"). Empty and "0" mean zero.
func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	if d, ok := scheduler.ParseIntervalDuration(raw); ok {
		return d, nil
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d, nil
	}
	return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
}

func mustDuration(raw string) time.Duration {
	d, _ := parseDuration("", raw)
	return d
}

func (p PanelConfig) IntervalDuration() time.Duration { return mustDuration(p.Interval) }

func (p PanelConfig) OffsetDuration() time.Duration { return mustDuration(p.Offset) }

func (p PanelConfig) DebounceDuration() time.Duration { return mustDuration(p.WatchDebounce) }

func (p PricingConfig) VenueTimeoutDuration() time.Duration { return mustDuration(p.VenueTimeout) }

func (b BreakerConfig) CooldownDuration() time.Duration { return mustDuration(b.Cooldown) }

func (v VenueConfig) TimeoutDuration() time.Duration { return mustDuration(v.Timeout) }

func (c CoinGeckoConfig) TimeoutDuration() time.Duration { return mustDuration(c.Timeout) }

func (c CoinGeckoConfig) MinIntervalDuration() time.Duration { return mustDuration(c.MinInterval) }

func (s SnapshotConfig) MaxAgeDuration() time.Duration { return mustDuration(s.MaxAge) }

func (s SnapshotJobConfig) IntervalDuration() time.Duration { return mustDuration(s.Interval) }
