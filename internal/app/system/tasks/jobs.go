// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	otpstore "github.com/mtt/mttdash/internal/app/store/otp"
	"github.com/mtt/mttdash/internal/app/system/metrics"
	"github.com/mtt/mttdash/internal/app/system/visibility"
	"go.uber.org/zap"
)

// Reporter is implemented by visibility.Sliders and visibility.Highlights.
type Reporter interface {
	Report(ctx context.Context) (visibility.Report, error)
}

// CapacityAuditJob creates a job that recounts every capacity-bounded
// collection, publishes the active counts as gauges, and warns when a
// collection is outside its policy bounds. Out-of-bounds states are only
// reachable when transactions are unavailable or data was edited directly.
func CapacityAuditJob(reporters []Reporter, m *metrics.Metrics, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "capacity-audit",
		Interval: interval,
		Run: func(ctx context.Context) error {
			for _, r := range reporters {
				rep, err := r.Report(ctx)
				if err != nil {
					return err
				}
				m.CapacityActive(rep.Policy, rep.Active)
				if !rep.WithinBounds() {
					logger.Warn("collection outside capacity bounds",
						zap.String("policy", rep.Policy),
						zap.Int64("active", rep.Active),
						zap.Int64("total", rep.Total),
						zap.Int("min", rep.Min),
						zap.Int("max", rep.Max))
				}
			}
			return nil
		},
	}
}

// OTPCleanupJob creates a job that removes one-time codes that expired more
// than a resend window ago. Younger codes are kept so the resend limit still
// sees them.
func OTPCleanupJob(store *otpstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "otp-cleanup",
		Interval: 15 * time.Minute,
		Run: func(ctx context.Context) error {
			count, err := store.DeleteExpired(ctx, time.Now().Add(-otpstore.ResendWindow))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("removed expired one-time codes", zap.Int64("count", count))
			}
			return nil
		},
	}
}
