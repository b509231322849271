package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PathRepairer recomputes materialized folder paths and reports how many
// it rewrote. *services.FolderService satisfies it.
type PathRepairer interface {
	ReconcilePaths(ctx context.Context) (int, error)
}

type PathReconciler struct {
	repairer PathRepairer
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
}

func NewPathReconciler(repairer PathRepairer, timeout time.Duration, logger *zap.Logger) *PathReconciler {
	return &PathReconciler{
		repairer: repairer,
		timeout:  timeout,
		logger:   logger,
	}
}

// Schedule registers the job on c using a standard cron spec or a
// descriptor such as "@every 6h".
func (pr *PathReconciler) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, pr.Run)
	if err != nil {
		return 0, fmt.Errorf("schedule path reconciler %q: %w", spec, err)
	}
	pr.logger.Info("path reconciler scheduled", zap.String("spec", spec))
	return id, nil
}

// Run performs one pass. A pass that starts while another is still going is
// skipped.
func (pr *PathReconciler) Run() {
	pr.mu.Lock()
	if pr.running {
		pr.mu.Unlock()
		pr.logger.Warn("path reconciler still running, skipping this tick")
		return
	}
	pr.running = true
	pr.mu.Unlock()

	defer func() {
		pr.mu.Lock()
		pr.running = false
		pr.mu.Unlock()
	}()

	runID := uuid.NewString()
	logger := pr.logger.With(zap.String("run_id", runID))
	logger.Info("path reconcile started")

	ctx := context.Background()
	if pr.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pr.timeout)
		defer cancel()
	}

	start := time.Now()
	repaired, err := pr.repairer.ReconcilePaths(ctx)
	if err != nil {
		logger.Error("path reconcile failed", zap.Error(err))
		return
	}
	logger.Info("path reconcile completed",
		zap.Int("repaired", repaired),
		zap.Duration("took", time.Since(start)),
	)
}
