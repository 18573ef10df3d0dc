package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRecord is one persisted scheduler run. Retries overwrite the record
// of their job and bump Attempts.
type JobRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID    *uuid.UUID `gorm:"column:tenant_id;type:uuid;index" json:"tenant_id,omitempty"`
	JobType     string     `gorm:"column:job_type;size:30;not null;index" json:"job_type"`
	Status      string     `gorm:"column:status;size:20;not null" json:"status"`
	Attempts    int        `gorm:"column:attempts;not null;default:1" json:"attempts"`
	Summary     string     `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Error       string     `gorm:"column:last_error;type:text" json:"error,omitempty"`
	StartedAt   *time.Time `gorm:"column:started_at;index" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the table name for GORM
func (JobRecord) TableName() string {
	return "scheduler_jobs"
}

// JobRepository persists job runs
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// RecordJobStart inserts the run, or resets it to RUNNING on retry
func (r *JobRepository) RecordJobStart(ctx context.Context, job *Job) error {
	now := time.Now()
	record := &JobRecord{
		ID:        job.ID,
		TenantID:  job.TenantID,
		JobType:   string(job.Type),
		Status:    string(JobStatusRunning),
		Attempts:  job.RetryCount + 1,
		StartedAt: job.StartedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "attempts", "started_at", "last_error", "updated_at"}),
		}).
		Create(record).Error
}

// RecordJobComplete stores the final status of the run
func (r *JobRepository) RecordJobComplete(ctx context.Context, job *Job) error {
	return r.db.WithContext(ctx).
		Model(&JobRecord{}).
		Where("id = ?", job.ID).
		Updates(map[string]any{
			"status":       string(job.Status),
			"summary":      job.Summary,
			"last_error":   job.Error,
			"completed_at": job.CompletedAt,
			"updated_at":   time.Now(),
		}).Error
}

// GetLastJobStatus returns the latest run of a job type for a scope.
// A nil tenantID selects all-tenant runs.
func (r *JobRepository) GetLastJobStatus(ctx context.Context, tenantID *uuid.UUID, jobType JobType) (*JobRecord, error) {
	var record JobRecord
	query := r.db.WithContext(ctx).Where("job_type = ?", string(jobType))
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	} else {
		query = query.Where("tenant_id IS NULL")
	}
	if err := query.Order("started_at DESC").First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindRecent lists the latest runs, newest first
func (r *JobRepository) FindRecent(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var records []JobRecord
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Order("id").
		Limit(limit).
		Find(&records).Error
	return records, err
}

var _ JobRecorder = (*JobRepository)(nil)
