// internal/app/system/workers/runner.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/mtt/mttdash/internal/app/system/tasks"
	"go.uber.org/zap"
)

// Runner runs periodic jobs in the background, one goroutine per job.
type Runner struct {
	jobs     []tasks.Job
	log      *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRunner creates a runner for jobs. Jobs with a non-positive interval are
// skipped.
func NewRunner(logger *zap.Logger, jobs ...tasks.Job) *Runner {
	return &Runner{
		jobs:   jobs,
		log:    logger,
		stopCh: make(chan struct{}),
	}
}

// Start begins the background loops. When runNow is true every job runs once
// immediately instead of waiting for its first tick.
func (w *Runner) Start(runNow bool) {
	for _, j := range w.jobs {
		if j.Interval <= 0 || j.Run == nil {
			w.log.Info("background job disabled", zap.String("job", j.Name))
			continue
		}
		w.wg.Add(1)
		go w.run(j, runNow)
		w.log.Info("background job started",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop signals every job to stop and waits for them to finish. Safe to call
// more than once.
func (w *Runner) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("background jobs stopped")
	})
}

func (w *Runner) run(j tasks.Job, runNow bool) {
	defer w.wg.Done()

	if runNow {
		w.once(j)
	}

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.once(j)
		}
	}
}

func (w *Runner) once(j tasks.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), j.RunTimeout())
	defer cancel()

	// Stop cancels a run in progress.
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := j.Run(ctx); err != nil {
		w.log.Error("background job failed", zap.String("job", j.Name), zap.Error(err))
	}
}
