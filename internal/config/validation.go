package config

import (
	"fmt"
	"strings"
)

var (
	knownTiers       = map[string]bool{"live": true, "snapshot": true, "sibling": true, "coingecko": true}
	knownVenues      = map[string]bool{"binance": true, "bybit": true, "gate": true}
	knownGainModes   = map[string]bool{"signed": true, "clamped": true}
	knownClassifiers = map[string]bool{"gain_threshold": true, "price_target": true}
	knownBackends    = map[string]bool{"json": true, "sqlite": true}
)

func validate(c *Config) error {
	if err := c.Panel.validate(); err != nil {
		return err
	}
	if err := c.Pricing.validate(); err != nil {
		return err
	}
	if err := c.SnapshotJob.validate(c.Pricing); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	if !c.Panel.Enabled && !c.SnapshotJob.Enabled {
		return fmt.Errorf("panel and snapshot_job are both disabled, nothing to run")
	}
	return nil
}

func (p *PanelConfig) validate() error {
	if !p.Enabled {
		return nil
	}
	if strings.TrimSpace(p.PositionsPath) == "" {
		return fmt.Errorf("panel.positions_path cannot be empty")
	}
	if strings.TrimSpace(p.OutputPath) == "" {
		return fmt.Errorf("panel.output_path cannot be empty")
	}
	if err := requirePositive("panel.interval", p.Interval); err != nil {
		return err
	}
	if _, err := parseDuration("panel.offset", p.Offset); err != nil {
		return err
	}
	if _, err := parseDuration("panel.watch_debounce", p.WatchDebounce); err != nil {
		return err
	}
	if !knownGainModes[p.GainMode] {
		return fmt.Errorf("panel.gain_mode must be signed or clamped, got %s", p.GainMode)
	}
	if !knownClassifiers[p.Classifier] {
		return fmt.Errorf("panel.classifier must be gain_threshold or price_target, got %s", p.Classifier)
	}
	if p.StopPct >= 0 {
		return fmt.Errorf("panel.stop_pct must be < 0")
	}
	return nil
}

func (p *PricingConfig) validate() error {
	for _, tier := range p.Tiers {
		if !knownTiers[tier] {
			return fmt.Errorf("pricing.tiers contains unknown tier: %s", tier)
		}
	}
	if err := requirePositive("pricing.venue_timeout", p.VenueTimeout); err != nil {
		return err
	}
	if _, err := parseDuration("pricing.breaker.cooldown", p.Breaker.Cooldown); err != nil {
		return err
	}
	if p.HasTier("live") && len(p.EnabledVenues()) == 0 {
		return fmt.Errorf("pricing.tiers uses live but no venue is enabled")
	}
	for _, v := range p.Venues {
		if !knownVenues[v.Name] {
			return fmt.Errorf("pricing.venues contains unsupported venue: %s", v.Name)
		}
		if !v.Enabled {
			continue
		}
		if strings.TrimSpace(v.RESTBaseURL) == "" {
			return fmt.Errorf("venue %s missing rest_base_url", v.Name)
		}
		if v.Proxy.Enabled && v.Proxy.RESTURL == "" {
			return fmt.Errorf("venue %s has proxy enabled but no rest_url", v.Name)
		}
		if _, err := parseDuration("pricing.venues."+v.Name+".timeout", v.Timeout); err != nil {
			return err
		}
	}
	if !knownBackends[p.Snapshot.Backend] {
		return fmt.Errorf("pricing.snapshot.backend must be json or sqlite, got %s", p.Snapshot.Backend)
	}
	if _, err := parseDuration("pricing.snapshot.max_age", p.Snapshot.MaxAge); err != nil {
		return err
	}
	if p.HasTier("sibling") && strings.TrimSpace(p.Sibling.Path) == "" {
		return fmt.Errorf("pricing.sibling.path cannot be empty when the sibling tier is used")
	}
	if p.HasTier("coingecko") {
		cg := p.CoinGecko
		if _, err := parseDuration("pricing.coingecko.timeout", cg.Timeout); err != nil {
			return err
		}
		if _, err := parseDuration("pricing.coingecko.min_interval", cg.MinInterval); err != nil {
			return err
		}
		if cg.Proxy.Enabled && cg.Proxy.RESTURL == "" {
			return fmt.Errorf("pricing.coingecko has proxy enabled but no rest_url")
		}
	}
	return nil
}

func (s *SnapshotJobConfig) validate(pricing PricingConfig) error {
	if !s.Enabled {
		return nil
	}
	if err := requirePositive("snapshot_job.interval", s.Interval); err != nil {
		return err
	}
	if len(pricing.EnabledVenues()) == 0 {
		return fmt.Errorf("snapshot_job requires at least one enabled venue")
	}
	if strings.TrimSpace(pricing.Snapshot.Path) == "" {
		return fmt.Errorf("snapshot_job requires pricing.snapshot.path")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if n.Telegram.Enabled {
		if strings.TrimSpace(n.Telegram.BotToken) == "" || n.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram notification enabled but missing bot_token or chat_id")
		}
	}
	return nil
}

func requirePositive(key, raw string) error {
	d, err := parseDuration(key, raw)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("%s must be > 0", key)
	}
	return nil
}
