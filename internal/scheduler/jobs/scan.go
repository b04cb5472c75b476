package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/scanner"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// Runner runs one watchlist pass
type Runner interface {
	Run(ctx context.Context, now time.Time) (*scanner.Summary, error)
}

// ScanJob runs the watchlist scanner on a schedule
type ScanJob struct {
	runner   Runner
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewScanJob creates a new scan job
func NewScanJob(runner Runner, schedule string, log *logger.Logger) *ScanJob {
	return &ScanJob{
		runner:   runner,
		schedule: schedule,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "watchlist_scan"
}

// Schedule returns the cron schedule
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run executes one scan. A closed market is a successful run.
func (j *ScanJob) Run(ctx context.Context) error {
	summary, err := j.runner.Run(ctx, j.now())
	if errors.Is(err, scanner.ErrMarketClosed) {
		j.logger.WithField("run_id", summary.RunID).Info("Market closed, nothing sent")
		return nil
	}
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":    summary.RunID,
		"delivered": summary.Delivered,
		"failed":    summary.Failed,
	}).Info("Scheduled scan finished")
	return nil
}
