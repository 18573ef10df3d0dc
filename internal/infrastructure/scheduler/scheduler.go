// Package scheduler runs the ledger's periodic batch work: rent generation,
// overdue marking, expiry scans, delinquency sync and penalty accrual.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobType names one batch operation
type JobType string

const (
	JobTypeScanExpirations JobType = "SCAN_EXPIRATIONS"
	JobTypeGenerateRent    JobType = "GENERATE_RENT"
	JobTypeMarkOverdue     JobType = "MARK_OVERDUE"
	JobTypeSyncDelinquency JobType = "SYNC_DELINQUENCY"
	JobTypeAccruePenalties JobType = "ACCRUE_PENALTIES"
	// JobTypeDailyCycle runs DailyCycleSteps in order within one job
	JobTypeDailyCycle JobType = "DAILY_CYCLE"
)

// DailyCycleSteps is the order of the nightly run. Charges must be marked
// overdue before collections syncs from aging, and records must exist
// before penalties accrue on them.
func DailyCycleSteps() []JobType {
	return []JobType{
		JobTypeScanExpirations,
		JobTypeGenerateRent,
		JobTypeMarkOverdue,
		JobTypeSyncDelinquency,
		JobTypeAccruePenalties,
	}
}

// IsValid checks if the job type is known
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeScanExpirations, JobTypeGenerateRent, JobTypeMarkOverdue,
		JobTypeSyncDelinquency, JobTypeAccruePenalties, JobTypeDailyCycle:
		return true
	}
	return false
}

// Job represents one queued batch operation
type Job struct {
	ID       uuid.UUID
	TenantID *uuid.UUID // nil means all tenants
	Type     JobType
	// Year and Month select the rent period; zero means the current month
	Year  int
	Month int

	Status      JobStatus
	Error       string
	Summary     string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a new job instance
func NewJob(tenantID *uuid.UUID, jobType JobType, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Type:       jobType,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// ForPeriod sets the rent period of the job
func (j *Job) ForPeriod(year, month int) *Job {
	j.Year = year
	j.Month = month
	return j
}

// Scope returns "all" or the tenant id, for logs and job records
func (j *Job) Scope() string {
	if j.TenantID == nil {
		return "all"
	}
	return j.TenantID.String()
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry
func (j *Job) ScheduleRetry(delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// JobExecutor executes batch jobs
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// JobRecorder persists the outcome of job runs. Optional.
type JobRecorder interface {
	RecordJobStart(ctx context.Context, job *Job) error
	RecordJobComplete(ctx context.Context, job *Job) error
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		QueueSize:         100,
		JobTimeout:        30 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// Validate checks the configuration
func (c SchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("%w: max concurrent jobs must be at least 1", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Scheduler runs submitted jobs on a bounded worker pool
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	recorder JobRecorder
	logger   *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	stopped   bool
}

// NewScheduler creates a new scheduler instance. recorder may be nil.
func NewScheduler(config SchedulerConfig, executor JobExecutor, recorder JobRecorder, logger *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		recorder: recorder,
		logger:   logger.Named("scheduler"),
		jobs:     make(chan *Job, queueSize),
	}, nil
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	if s.stopped {
		return ErrSchedulerNotRunning
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Ledger scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler. A stopped scheduler cannot be restarted.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.stopped = true
	s.cancel()
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Ledger scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Ledger scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether workers are accepting jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// SubmitJob queues a job for execution
func (s *Scheduler) SubmitJob(job *Job) error {
	if !job.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidJobType, job.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.String("scope", job.Scope()),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Schedule builds and submits a job with the configured retry budget
func (s *Scheduler) Schedule(tenantID *uuid.UUID, jobType JobType) (*Job, error) {
	job := NewJob(tenantID, jobType, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	if job.NextRetryAt != nil {
		wait := time.Until(*job.NextRetryAt)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}

	job.Start()
	s.record(ctx, job, true)
	s.logger.Info("Processing job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.String("scope", job.Scope()),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := s.executor.Execute(jobCtx, job)
	cancel()

	if err != nil {
		job.Fail(err.Error())
		s.record(ctx, job, false)
		s.logger.Error("Job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
		if job.ShouldRetry() && ctx.Err() == nil {
			job.ScheduleRetry(s.config.RetryDelay)
			s.requeue(job)
		}
		return
	}

	job.Complete()
	s.record(ctx, job, false)
	s.logger.Info("Job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.String("summary", job.Summary),
	)
}

// requeue puts a retry back on the queue unless the scheduler is stopping
func (s *Scheduler) requeue(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	select {
	case s.jobs <- job:
		s.logger.Info("Job scheduled for retry",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
		)
	default:
		s.logger.Warn("Failed to re-queue job for retry", zap.String("job_id", job.ID.String()))
	}
}

func (s *Scheduler) record(ctx context.Context, job *Job, start bool) {
	if s.recorder == nil {
		return
	}
	var err error
	if start {
		err = s.recorder.RecordJobStart(ctx, job)
	} else {
		err = s.recorder.RecordJobComplete(ctx, job)
	}
	if err != nil {
		s.logger.Warn("Failed to record job run",
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
	}
}
