// Package panel drives the exit panel: it loads the hand-edited positions,
// values them and atomically rewrites the panel document every cycle.
package panel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roteirods-byte/Saida-Posicional/internal/gateway/notifier"
	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
	"github.com/roteirods-byte/Saida-Posicional/internal/pkg/jsonfile"
	"github.com/roteirods-byte/Saida-Posicional/internal/types"
	"github.com/roteirods-byte/Saida-Posicional/internal/valuation"
)

const updatedAtLayout = "2006-01-02 15:04"

// Valuer is the engine as seen by the job.
type Valuer interface {
	Run(ctx context.Context, entries []types.Entry, prior valuation.Prior) valuation.Batch
}

type JobConfig struct {
	PositionsPath string
	OutputPath    string
	Location      *time.Location
	Now           func() time.Time
	NewCycleID    func() string
}

// Job runs one valuation cycle at a time.
type Job struct {
	engine   Valuer
	notifier notifier.TextNotifier
	cfg      JobConfig

	mu sync.Mutex
}

// NewJob builds a job. n may be nil to disable alerts.
func NewJob(engine Valuer, n notifier.TextNotifier, cfg JobConfig) *Job {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewCycleID == nil {
		cfg.NewCycleID = uuid.NewString
	}
	return &Job{engine: engine, notifier: n, cfg: cfg}
}

// CycleResult is what one RunOnce produced.
type CycleResult struct {
	CycleID     string
	Batch       valuation.Batch
	Transitions []Transition
	Duration    time.Duration
}

// RunOnce loads, values and persists one cycle. A failed write or a context
// cancelled before the write is returned as an error and leaves the previous
// output untouched; input problems degrade to an empty or partial panel.
func (j *Job) RunOnce(ctx context.Context) (CycleResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	start := j.cfg.Now()
	res := CycleResult{CycleID: j.cfg.NewCycleID()}

	entries, err := LoadPositions(j.cfg.PositionsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("panel: positions file missing, treating as empty: %v", err)
		} else {
			logger.Warnf("panel: positions file unreadable, treating as empty: %v", err)
		}
		entries = nil
	}
	prior, err := LoadPrior(j.cfg.OutputPath)
	if err != nil {
		logger.Warnf("panel: previous output unreadable, no fallback prices this cycle: %v", err)
		prior = valuation.Prior{}
	}

	res.Batch = j.engine.Run(ctx, entries, prior)
	if err := ctx.Err(); err != nil {
		logger.Warnf("panel: cycle %s interrupted, previous output kept: %v", res.CycleID, err)
		return res, fmt.Errorf("panel cycle %s interrupted: %w", res.CycleID, err)
	}
	records := res.Batch.Records
	if records == nil {
		records = []types.ValuationRecord{}
	}
	now := j.cfg.Now().In(j.cfg.Location)
	summary := res.Batch.Summary
	doc := types.PanelDocument{
		Positions: records,
		UpdatedAt: now.Format(updatedAtLayout),
		CycleID:   res.CycleID,
		Summary:   &summary,
	}
	if err := jsonfile.WriteAtomic(j.cfg.OutputPath, doc); err != nil {
		logger.Errorf("panel: cycle %s write failed, previous output kept: %v", res.CycleID, err)
		return res, fmt.Errorf("write panel output: %w", err)
	}

	res.Transitions = DetectTransitions(records, prior)
	j.alert(res.Transitions, res.CycleID, now)

	res.Duration = j.cfg.Now().Sub(start)
	logger.Infof("panel: cycle %s total=%d abertas=%d avaliadas=%d degradadas=%d ignoradas=%d excluidas=%d alertas=%d in %s",
		res.CycleID, summary.Total, summary.Open, summary.Valued, summary.Degraded,
		summary.Skipped, summary.Excluded, len(res.Transitions), res.Duration.Truncate(time.Millisecond))
	return res, nil
}

func (j *Job) alert(transitions []Transition, cycleID string, at time.Time) {
	if j.notifier == nil || len(transitions) == 0 {
		return
	}
	for _, tr := range transitions {
		text := renderTransition(tr, cycleID, at)
		if err := j.notifier.SendText(text); err != nil {
			logger.Warnf("panel: alert for %s (%s) failed: %v", tr.Record.Pair, tr.Record.Situation, err)
		}
	}
}
