// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/stratagroups/internal/app/store/audit"
	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// AuditRetentionJob creates a job that deletes audit events older than
// retention.
func AuditRetentionJob(events *audit.Store, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name:     "audit-retention",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().Add(-retention)
			count, err := events.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("purged old audit events",
					zap.Int64("count", count),
					zap.Time("cutoff", cutoff))
			}
			return nil
		},
	}
}
