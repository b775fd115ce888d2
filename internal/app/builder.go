package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roteirods-byte/Saida-Posicional/internal/config"
	"github.com/roteirods-byte/Saida-Posicional/internal/gateway"
	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/coingecko"
	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/exchange"
	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/notifier"
	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/panel"
	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
	"github.com/roteirods-byte/Saida-Posicional/internal/store/snapshot"
	"github.com/roteirods-byte/Saida-Posicional/internal/valuation"
)

type AppBuilder struct {
	cfg *config.Config

	venuesFn   func(*config.Config) ([]pricing.Venue, error)
	storeFn    func(config.SnapshotConfig) (snapshot.Store, error)
	notifierFn func(config.TelegramConfig) (notifier.TextNotifier, error)
}

type AppBuilderOption func(*AppBuilder)

// WithVenues replaces the exchange venues, mostly for tests.
func WithVenues(venues ...pricing.Venue) AppBuilderOption {
	return func(b *AppBuilder) {
		b.venuesFn = func(*config.Config) ([]pricing.Venue, error) { return venues, nil }
	}
}

func WithNotifier(n notifier.TextNotifier) AppBuilderOption {
	return func(b *AppBuilder) {
		b.notifierFn = func(config.TelegramConfig) (notifier.TextNotifier, error) { return n, nil }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		venuesFn:   gateway.NewVenuesFromConfig,
		storeFn:    openSnapshotStore,
		notifierFn: buildTelegram,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (app *App, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)
	if err := logger.SetTimezone(cfg.App.Timezone); err != nil {
		return nil, fmt.Errorf("app.timezone: %w", err)
	}

	store, err := b.storeFn(cfg.Pricing.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	defer func() {
		if err != nil {
			_ = store.Close()
		}
	}()

	venues, err := b.venuesFn(cfg)
	if err != nil {
		return nil, err
	}
	live := pricing.NewLiveAggregate(pricing.LiveConfig{
		VenueTimeout:     cfg.Pricing.VenueTimeoutDuration(),
		BreakerThreshold: cfg.Pricing.Breaker.Threshold,
		BreakerCooldown:  cfg.Pricing.Breaker.CooldownDuration(),
	}, venues...)

	app = &App{cfg: cfg, store: store}
	summary := &StartupSummary{
		Env:      cfg.App.Env,
		Timezone: cfg.App.Timezone,
		Venues:   live.Venues(),
		Snapshot: fmt.Sprintf("%s (%s)", cfg.Pricing.Snapshot.Path, cfg.Pricing.Snapshot.Backend),
	}

	if cfg.Panel.Enabled {
		chain, err := b.buildChain(live, store)
		if err != nil {
			return nil, err
		}
		engine, err := buildEngine(cfg.Panel, chain)
		if err != nil {
			return nil, err
		}
		var alerts notifier.TextNotifier
		if cfg.Notify.Telegram.Enabled {
			alerts, err = b.notifierFn(cfg.Notify.Telegram)
			if err != nil {
				return nil, fmt.Errorf("telegram: %w", err)
			}
		}
		app.panelJob = panel.NewJob(engine, alerts, panel.JobConfig{
			PositionsPath: cfg.Panel.PositionsPath,
			OutputPath:    cfg.Panel.OutputPath,
			Location:      logger.Location(),
		})
		if cfg.Panel.WatchPositions {
			app.watcher = buildWatcher(cfg.Panel)
		}
		summary.Panel = &PanelSummary{
			PositionsPath: cfg.Panel.PositionsPath,
			OutputPath:    cfg.Panel.OutputPath,
			Interval:      cfg.Panel.IntervalDuration(),
			ModeFilter:    cfg.Panel.ModeFilter,
			GainMode:      cfg.Panel.GainMode,
			Classifier:    cfg.Panel.Classifier,
			Tiers:         chain.Tiers(),
			Alerts:        alerts != nil,
			Watching:      app.watcher != nil,
		}
	}

	if cfg.SnapshotJob.Enabled {
		app.refresher = pricing.NewRefresher(live, store, cfg.SnapshotJob.Symbols, cfg.Pricing.Concurrency)
		summary.Refresher = &RefresherSummary{
			Interval: cfg.SnapshotJob.IntervalDuration(),
			Symbols:  app.refresher.Symbols(),
		}
	}
	app.Summary = summary
	return app, nil
}

// buildChain assembles the tiers in configured precedence.
func (b *AppBuilder) buildChain(live *pricing.LiveAggregate, store snapshot.Store) (*pricing.Chain, error) {
	cfg := b.cfg.Pricing
	sources := make([]pricing.Source, 0, len(cfg.Tiers))
	for _, tier := range cfg.Tiers {
		switch tier {
		case pricing.TierLive:
			sources = append(sources, live)
		case pricing.TierSnapshot:
			sources = append(sources, pricing.NewSnapshotSource(store, cfg.Snapshot.MaxAgeDuration()))
		case pricing.TierSibling:
			sources = append(sources, pricing.NewSiblingSource(cfg.Sibling.Path, cfg.Sibling.ListKey))
		case pricing.TierCoinGecko:
			src, err := buildCoinGecko(cfg.CoinGecko)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		default:
			return nil, fmt.Errorf("unknown pricing tier: %s", tier)
		}
	}
	return pricing.NewChain(cfg.Concurrency, sources...), nil
}

func buildCoinGecko(cfg config.CoinGeckoConfig) (*coingecko.Source, error) {
	overrides, err := coingecko.LoadIDFile(cfg.IDsPath)
	if err != nil {
		return nil, fmt.Errorf("coingecko ids: %w", err)
	}
	return coingecko.New(coingecko.Config{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Timeout:     cfg.TimeoutDuration(),
		MaxTries:    uint(cfg.MaxTries),
		MinInterval: cfg.MinIntervalDuration(),
		Proxy:       exchange.ProxyConfig{Enabled: cfg.Proxy.Enabled, RESTURL: cfg.Proxy.RESTURL},
	}, coingecko.MergeIDs(overrides))
}

func buildEngine(cfg config.PanelConfig, resolver valuation.Resolver) (*valuation.Engine, error) {
	gain, err := valuation.NewGainPolicy(cfg.GainMode)
	if err != nil {
		return nil, err
	}
	classifier, err := valuation.NewClassifier(cfg.Classifier, cfg.StopPct)
	if err != nil {
		return nil, err
	}
	validator, err := panel.NewSchemaValidator(cfg.SchemaPath)
	if err != nil {
		return nil, err
	}
	return valuation.NewEngine(resolver, valuation.Config{
		ModeFilter: cfg.ModeFilter,
		Gain:       gain,
		Classifier: classifier,
		Validator:  validator,
		Location:   logger.Location(),
	}), nil
}

// buildWatcher returns nil when the positions directory cannot be watched;
// the scheduled cycles still run.
func buildWatcher(cfg config.PanelConfig) *panel.FileWatcher {
	if err := os.MkdirAll(filepath.Dir(cfg.PositionsPath), 0o755); err != nil {
		logger.Warnf("panel: positions watcher disabled: %v", err)
		return nil
	}
	w, err := panel.NewFileWatcher(cfg.PositionsPath, cfg.DebounceDuration())
	if err != nil {
		logger.Warnf("panel: positions watcher disabled: %v", err)
		return nil
	}
	return w
}

func openSnapshotStore(cfg config.SnapshotConfig) (snapshot.Store, error) {
	return snapshot.Open(cfg.Backend, cfg.Path)
}

func buildTelegram(cfg config.TelegramConfig) (notifier.TextNotifier, error) {
	return notifier.NewTelegram(notifier.TelegramConfig{BotToken: cfg.BotToken, ChatID: cfg.ChatID})
}
