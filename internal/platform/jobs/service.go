package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	JobPayslipArchive = "payslip_archive"

	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	maxRuns = 100
)

var ErrQueueFull = errors.New("job queue full")

type RunFunc func(context.Context) (any, error)

// Run is one execution of a job, kept in memory for inspection.
type Run struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Details     any        `json:"details,omitempty"`
	Error       string     `json:"error,omitempty"`
	QueuedAt    time.Time  `json:"queuedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Service struct {
	// DB, when set, also records runs in job_runs.
	DB     *pgxpool.Pool
	logger *zap.Logger
	queue  chan job
	cron   *cron.Cron

	mu   sync.RWMutex
	runs []*Run
}

type job struct {
	run *Run
	fn  RunFunc
}

func New(db *pgxpool.Pool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		DB:     db,
		logger: logger,
		queue:  make(chan job, 32),
		cron:   cron.New(),
	}
}

// Start runs the worker and the cron scheduler until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

// Schedule enqueues fn on a standard five-field cron spec.
func (s *Service) Schedule(spec, jobType string, fn RunFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.Enqueue(jobType, fn); err != nil {
			s.logger.Warn("scheduled job not queued", zap.String("jobType", jobType), zap.Error(err))
		}
	})
	return err
}

func (s *Service) Enqueue(jobType string, fn RunFunc) (Run, error) {
	run := s.track(jobType)
	select {
	case s.queue <- job{run: run, fn: fn}:
		return s.snapshot(run), nil
	default:
		s.finish(run, nil, ErrQueueFull)
		s.logger.Warn("job queue full", zap.String("jobType", jobType))
		return s.snapshot(run), ErrQueueFull
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, fn RunFunc) (Run, error) {
	run := s.track(jobType)
	err := s.execute(ctx, job{run: run, fn: fn})
	return s.snapshot(run), err
}

// Runs lists recorded runs, newest first.
func (s *Service) Runs() []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Run, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		out = append(out, *s.runs[i])
	}
	return out
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if err := s.execute(ctx, j); err != nil {
				s.logger.Warn("job run failed", zap.String("jobType", j.run.Type), zap.String("runId", j.run.ID), zap.Error(err))
			}
		}
	}
}

func (s *Service) execute(ctx context.Context, j job) error {
	started := time.Now()
	s.mu.Lock()
	j.run.Status = StatusRunning
	j.run.StartedAt = &started
	s.mu.Unlock()
	s.recordStart(ctx, j.run)

	details, err := j.fn(ctx)
	s.finish(j.run, details, err)
	s.recordFinish(ctx, j.run)

	s.logger.Info("job run finished",
		zap.String("jobType", j.run.Type),
		zap.String("runId", j.run.ID),
		zap.String("status", j.run.Status),
		zap.Duration("duration", time.Since(started)),
	)
	return err
}

func (s *Service) track(jobType string) *Run {
	run := &Run{ID: uuid.NewString(), Type: jobType, Status: StatusQueued, QueuedAt: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if len(s.runs) > maxRuns {
		s.runs = slices.Delete(s.runs, 0, len(s.runs)-maxRuns)
	}
	return run
}

func (s *Service) finish(run *Run, details any, err error) {
	completed := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	run.Details = details
	run.CompletedAt = &completed
	run.Status = StatusCompleted
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	}
}

func (s *Service) snapshot(run *Run) Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *run
}

func (s *Service) recordStart(ctx context.Context, run *Run) {
	if s.DB == nil {
		return
	}
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, status)
    VALUES ($1,$2,$3)
  `, run.ID, run.Type, StatusRunning); err != nil {
		s.logger.Warn("job run insert failed", zap.Error(err))
	}
}

func (s *Service) recordFinish(ctx context.Context, run *Run) {
	if s.DB == nil {
		return
	}
	current := s.snapshot(run)
	detailsJSON, err := json.Marshal(current.Details)
	if err != nil || current.Details == nil {
		detailsJSON = []byte("{}")
	}
	if _, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, current.Status, detailsJSON, current.ID); err != nil {
		s.logger.Warn("job run update failed", zap.Error(err))
	}
}
