package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/infrastructure/auth"
	"github.com/inmobiliaria/backend/internal/infrastructure/scheduler"
	"github.com/inmobiliaria/backend/internal/interfaces/http/dto"
	"github.com/inmobiliaria/backend/internal/interfaces/http/middleware"
)

// JobQueue accepts batch jobs
type JobQueue interface {
	SubmitJob(job *scheduler.Job) error
	IsRunning() bool
}

// CycleTrigger is the nightly daily-cycle trigger
type CycleTrigger interface {
	TriggerManualRun(ctx context.Context, tenantID *uuid.UUID) (*scheduler.Job, error)
	GetStatus() scheduler.CronStatus
}

// JobHistory lists recorded runs
type JobHistory interface {
	FindRecent(ctx context.Context, limit int) ([]scheduler.JobRecord, error)
}

// SchedulerHandler exposes the batch scheduler: its state, manual runs and
// the run history
type SchedulerHandler struct {
	BaseHandler
	queue      JobQueue
	trigger    CycleTrigger
	history    JobHistory
	maxRetries int
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(queue JobQueue, trigger CycleTrigger, history JobHistory, maxRetries int) *SchedulerHandler {
	return &SchedulerHandler{queue: queue, trigger: trigger, history: history, maxRetries: maxRetries}
}

// SchedulerStatusResponse describes the scheduler
// @Description Scheduler state
type SchedulerStatusResponse struct {
	Running  bool                 `json:"running"`
	Cron     scheduler.CronStatus `json:"cron"`
	JobTypes []string             `json:"job_types"`
}

// RunJobRequest asks for one batch job
// @Description Manual job request
type RunJobRequest struct {
	JobType string `json:"job_type" binding:"omitempty,oneof=DAILY_CYCLE SCAN_EXPIRATIONS GENERATE_RENT MARK_OVERDUE SYNC_DELINQUENCY ACCRUE_PENALTIES" example:"DAILY_CYCLE"`
	Year    int    `json:"year" binding:"omitempty,min=2000,max=2100"`
	Month   int    `json:"month" binding:"omitempty,min=1,max=12,required_with=Year"`
	// AllTenants runs the job across every tenant; needs the wildcard permission
	AllTenants bool `json:"all_tenants"`
}

// RunJobResponse identifies the queued job
// @Description Queued job
type RunJobResponse struct {
	JobID   uuid.UUID `json:"job_id"`
	JobType string    `json:"job_type"`
	Scope   string    `json:"scope"`
}

// Status godoc
// @ID           schedulerStatus
// @Summary      Scheduler state
// @Tags         scheduler
// @Produce      json
// @Success      200 {object} APIResponse[SchedulerStatusResponse]
// @Security     BearerAuth
// @Router       /scheduler/status [get]
func (h *SchedulerHandler) Status(c *gin.Context) {
	types := []string{string(scheduler.JobTypeDailyCycle)}
	for _, t := range scheduler.DailyCycleSteps() {
		types = append(types, string(t))
	}
	h.Success(c, SchedulerStatusResponse{
		Running:  h.queue.IsRunning(),
		Cron:     h.trigger.GetStatus(),
		JobTypes: types,
	})
}

// Run godoc
// @ID           runSchedulerJob
// @Summary      Queue a batch job now
// @Description  Runs the daily cycle, or one of its steps, for the caller's tenant in the background
// @Tags         scheduler
// @Accept       json
// @Produce      json
// @Param        request body RunJobRequest false "Job"
// @Success      202 {object} APIResponse[RunJobResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /scheduler/run [post]
func (h *SchedulerHandler) Run(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req RunJobRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	scope := &tenantID
	if req.AllTenants {
		if claims := middleware.GetClaims(c); claims == nil || !claims.HasPermission(auth.PermissionAll) {
			h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, "Running for all tenants needs full access")
			return
		}
		scope = nil
	}

	jobType := scheduler.JobType(req.JobType)
	if jobType == "" {
		jobType = scheduler.JobTypeDailyCycle
	}

	var (
		job *scheduler.Job
		err error
	)
	if jobType == scheduler.JobTypeDailyCycle && req.Year == 0 {
		job, err = h.trigger.TriggerManualRun(c.Request.Context(), scope)
	} else {
		job = scheduler.NewJob(scope, jobType, h.maxRetries).ForPeriod(req.Year, req.Month)
		err = h.queue.SubmitJob(job)
	}
	if err != nil {
		h.handleSubmitError(c, err)
		return
	}
	h.Accepted(c, RunJobResponse{JobID: job.ID, JobType: string(job.Type), Scope: job.Scope()})
}

func (h *SchedulerHandler) handleSubmitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Scheduler is not running")
	case errors.Is(err, scheduler.ErrJobQueueFull):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Job queue is full, try again later")
	case errors.Is(err, scheduler.ErrInvalidJobType):
		h.BadRequest(c, err.Error())
	default:
		h.HandleDomainError(c, err)
	}
}

// Jobs godoc
// @ID           listSchedulerJobs
// @Summary      Recent batch runs
// @Description  Runs of the caller's tenant and all-tenant runs, newest first
// @Tags         scheduler
// @Produce      json
// @Param        limit query int false "Max rows" default(20)
// @Success      200 {object} APIResponse[[]scheduler.JobRecord]
// @Security     BearerAuth
// @Router       /scheduler/jobs [get]
func (h *SchedulerHandler) Jobs(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			h.BadRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	records, err := h.history.FindRecent(c.Request.Context(), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	visible := make([]scheduler.JobRecord, 0, len(records))
	for _, r := range records {
		if r.TenantID == nil || *r.TenantID == tenantID {
			visible = append(visible, r)
		}
	}
	h.Success(c, visible)
}
