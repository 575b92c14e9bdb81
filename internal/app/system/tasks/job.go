// internal/app/system/tasks/job.go
package tasks

import (
	"context"
	"time"
)

// Job is a named unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // per run; defaults to 30s
	Run      func(ctx context.Context) error
}

// RunTimeout returns the per-run timeout.
func (j Job) RunTimeout() time.Duration {
	if j.Timeout > 0 {
		return j.Timeout
	}
	return 30 * time.Second
}
