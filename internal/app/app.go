package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roteirods-byte/Saida-Posicional/internal/config"
	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/panel"
	"github.com/roteirods-byte/Saida-Posicional/internal/pricing"
	"github.com/roteirods-byte/Saida-Posicional/internal/scheduler"
	"github.com/roteirods-byte/Saida-Posicional/internal/store/snapshot"
)

// App wires the panel job and the snapshot refresher to their schedulers.
type App struct {
	cfg       *config.Config
	panelJob  *panel.Job
	refresher *pricing.Refresher
	watcher   *panel.FileWatcher
	store     snapshot.Store
	Summary   *StartupSummary
}

// NewApp builds the application from config without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run blocks until ctx is cancelled. Each job runs on its own scheduler so a
// slow panel cycle never delays the snapshot refresh.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.panelJob == nil && a.refresher == nil {
		return fmt.Errorf("no job configured")
	}
	defer a.close()

	if a.Summary != nil {
		a.Summary.Print()
	}

	group, ctx := errgroup.WithContext(ctx)

	if a.refresher != nil {
		jobCfg := a.cfg.SnapshotJob
		sched := scheduler.NewAlignedScheduler(ctx, jobCfg.IntervalDuration(), 0)
		sched.Name = "snapshot"
		sched.RunImmediately = jobCfg.RunImmediately
		refresher := a.refresher
		group.Go(func() error {
			sched.Start(func() {
				if err := refresher.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Errorf("snapshot: refresh failed: %v", err)
				}
			})
			return nil
		})
	}

	if a.panelJob != nil {
		panelCfg := a.cfg.Panel
		sched := scheduler.NewAlignedScheduler(ctx, panelCfg.IntervalDuration(), panelCfg.OffsetDuration())
		sched.Name = "panel"
		sched.RunImmediately = panelCfg.RunImmediately
		job := a.panelJob
		group.Go(func() error {
			sched.Start(func() {
				if _, err := job.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Errorf("panel: cycle failed: %v", err)
				}
			})
			return nil
		})
		if a.watcher != nil {
			watcher := a.watcher
			group.Go(func() error {
				return watcher.Run(ctx, sched.Kick)
			})
		}
	}

	err := group.Wait()
	logger.Infof("saida posicional stopped")
	return err
}

func (a *App) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		logger.Warnf("close snapshot store: %v", err)
	}
}
