package jobs

import (
	"context"
	"time"

	"github.com/wonny/aegis-panel/internal/scheduler"
	"github.com/wonny/aegis-panel/pkg/logger"
)

// Pruner deletes evaluations older than a cutoff
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob removes persisted evaluations past the retention window
type RetentionJob struct {
	pruner   Pruner
	days     int
	schedule string
	logger   *logger.Logger
	now      func() time.Time
}

// NewRetentionJob creates a new retention job; days <= 0 keeps everything
func NewRetentionJob(pruner Pruner, days int, schedule string, log *logger.Logger) *RetentionJob {
	if log == nil {
		log = logger.Nop()
	}
	return &RetentionJob{
		pruner:   pruner,
		days:     days,
		schedule: schedule,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "evaluation_retention"
}

// Schedule returns the cron schedule
func (j *RetentionJob) Schedule() string {
	return j.schedule
}

// RetryPolicy keeps a single delete bounded
func (j *RetentionJob) RetryPolicy() scheduler.RetryPolicy {
	return scheduler.RetryPolicy{
		MaxRetries: 2,
		Delay:      1 * time.Minute,
		Timeout:    5 * time.Minute,
	}
}

// Run executes the cleanup
func (j *RetentionJob) Run(ctx context.Context) error {
	if j.days <= 0 {
		return nil
	}

	cutoff := j.now().AddDate(0, 0, -j.days)
	removed, err := j.pruner.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": removed,
			"cutoff":  cutoff.Format("2006-01-02"),
		}).Info("Old evaluations removed")
	}
	return nil
}
