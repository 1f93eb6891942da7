package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/pipeline"
	"go.uber.org/zap"
)

// RepopulateJobName is the name of the scheduled purge-then-repopulate job
const RepopulateJobName = "repopulate"

// DefaultRepopulateTimeout bounds a scheduled run when none is configured
const DefaultRepopulateTimeout = 30 * time.Minute

// PipelineRunner runs the population pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, trigger string) (*pipeline.Report, error)
}

// RepopulateJob runs the population pipeline from the scheduler
type RepopulateJob struct {
	runner  PipelineRunner
	logger  *zap.Logger
	timeout time.Duration
}

// NewRepopulateJob creates a job whose runs are bounded by timeout
func NewRepopulateJob(runner PipelineRunner, logger *zap.Logger, timeout time.Duration) *RepopulateJob {
	if timeout <= 0 {
		timeout = DefaultRepopulateTimeout
	}
	return &RepopulateJob{
		runner:  runner,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one scheduled repopulation. A run already in progress (for
// example one triggered through the API) makes this tick a no-op.
func (j *RepopulateJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	report, err := j.runner.Run(ctx, "cron")
	if errors.Is(err, pipeline.ErrRunInProgress) {
		j.logger.Warn("skipping scheduled repopulation, a run is already in progress")
		return
	}
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if report != nil {
			fields = append(fields, zap.String("run_id", report.RunID), zap.String("state", string(report.State)))
		}
		j.logger.Error("scheduled repopulation failed", fields...)
		return
	}

	j.logger.Info("scheduled repopulation completed",
		zap.String("run_id", report.RunID),
		zap.Int("skipped_rows", report.TotalSkipped()),
		zap.Duration("duration", report.Duration()),
	)
}

// RegisterRepopulateJob schedules the job when schedule is not empty. It
// reports whether the job was registered.
func RegisterRepopulateJob(s *Scheduler, schedule string, job *RepopulateJob) (bool, error) {
	if schedule == "" {
		return false, nil
	}
	if err := s.AddJob(RepopulateJobName, schedule, job.Run); err != nil {
		return false, err
	}
	return true, nil
}
