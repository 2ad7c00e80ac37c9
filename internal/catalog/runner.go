package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shotlog/shotlog-agent/internal/telemetry"
)

// TelemetryExtractor is the subset of the telemetry package the runner needs.
type TelemetryExtractor interface {
	ExtractDir(ctx context.Context, dir string) (*telemetry.BatchResult, error)
}

// Runner polls the job table and executes pending jobs one at a time.
type Runner struct {
	service      *Service
	repo         Repository
	extractor    TelemetryExtractor
	logger       *slog.Logger
	pollInterval time.Duration
	running      atomic.Bool
	paused       atomic.Bool
}

func NewRunner(service *Service, repo Repository, extractor TelemetryExtractor, logger *slog.Logger) *Runner {
	return &Runner{
		service:      service,
		repo:         repo,
		extractor:    extractor,
		logger:       logger,
		pollInterval: 5 * time.Second,
	}
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("job runner started")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job runner stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
			if !r.paused.Load() {
				r.processNextJob(ctx)
			}
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("job runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("job runner resumed")
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

func (r *Runner) processNextJob(ctx context.Context) {
	jobs, err := r.repo.ListPendingJobs(ctx)
	if err != nil {
		r.logger.Error("failed to list pending jobs", "error", err)
		return
	}

	if len(jobs) == 0 {
		return
	}

	job := jobs[0]
	r.logger.Info("processing job", "job_id", job.ID, "type", job.Type)

	switch job.Type {
	case JobTypeImport:
		r.processImportJob(ctx, job)

	case JobTypeTelemetry:
		r.processTelemetryJob(ctx, job)

	default:
		r.logger.Warn("unknown job type", "type", job.Type)
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, "unknown job type")
	}
}

func (r *Runner) processImportJob(ctx context.Context, job *Job) {
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, "")

	result, err := r.service.ImportCaptures(ctx, job.Path)
	if err != nil {
		r.logger.Error("import failed", "job_id", job.ID, "error", err)
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, err.Error())
		return
	}

	r.repo.UpdateJobProgress(ctx, job.ID, 100)
	if len(result.Errors) > 0 {
		// Partial success still completes the job; the skipped documents
		// are recorded on the job row for the UI.
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusCompleted,
			fmt.Sprintf("%d document(s) skipped: %s", len(result.Errors), truncateStr(result.Errors[0], 256)))
	} else {
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusCompleted, "")
	}
	r.logger.Info("import job completed",
		"job_id", job.ID,
		"videos", result.Videos,
		"scenes", result.Scenes,
		"transcriptions", result.Transcriptions,
	)
}

func (r *Runner) processTelemetryJob(ctx context.Context, job *Job) {
	if r.extractor == nil {
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, "telemetry extractor not configured")
		return
	}

	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, "")

	result, err := r.extractor.ExtractDir(ctx, job.Path)
	if err != nil {
		r.logger.Error("telemetry extraction failed", "job_id", job.ID, "error", err)
		r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, err.Error())
		return
	}

	r.repo.UpdateJobProgress(ctx, job.ID, 100)
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusCompleted, "")
	r.logger.Info("telemetry job completed",
		"job_id", job.ID,
		"files", len(result.Files),
		"total_fixes", result.TotalFixes,
		"files_without_fixes", result.FilesWithNo,
	)
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

func (r *Runner) GetActiveJobCount(ctx context.Context) int {
	jobs, err := r.repo.ListJobs(ctx, 100)
	if err != nil {
		return 0
	}
	count := 0
	for _, j := range jobs {
		if j.Status == JobStatusRunning {
			count++
		}
	}
	return count
}
