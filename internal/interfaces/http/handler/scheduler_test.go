package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/infrastructure/auth"
	"github.com/inmobiliaria/backend/internal/infrastructure/scheduler"
	"github.com/inmobiliaria/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type schedulerDeps struct {
	queue   *mockJobQueue
	trigger *mockCycleTrigger
	history *mockJobHistory
}

func schedulerRouter(perms ...string) (*gin.Engine, schedulerDeps) {
	deps := schedulerDeps{new(mockJobQueue), new(mockCycleTrigger), new(mockJobHistory)}
	h := NewSchedulerHandler(deps.queue, deps.trigger, deps.history, 3)
	r := authed()
	r.Use(func(c *gin.Context) {
		c.Set("jwt_claims", &auth.Claims{TenantID: testTenant.String(), UserID: testUser.String(), Permissions: perms})
		c.Next()
	})
	r.GET("/scheduler/status", h.Status)
	r.POST("/scheduler/run", h.Run)
	r.GET("/scheduler/jobs", h.Jobs)
	return r, deps
}

func TestSchedulerHandler_Status(t *testing.T) {
	r, deps := schedulerRouter(auth.PermissionSchedulerRun)
	deps.queue.On("IsRunning").Return(true)
	deps.trigger.On("GetStatus").Return(scheduler.CronStatus{Enabled: true, Schedule: "02:00"})

	w := do(r, http.MethodGet, "/scheduler/status", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got SchedulerStatusResponse
	envelope(t, w, &got)
	assert.True(t, got.Running)
	assert.Equal(t, "02:00", got.Cron.Schedule)
	assert.Contains(t, got.JobTypes, "DAILY_CYCLE")
	assert.Contains(t, got.JobTypes, "GENERATE_RENT")
}

func TestSchedulerHandler_Run_DailyCycleForTenant(t *testing.T) {
	r, deps := schedulerRouter(auth.PermissionSchedulerRun)
	tenant := testTenant
	job := scheduler.NewJob(&tenant, scheduler.JobTypeDailyCycle, 3)
	deps.trigger.On("TriggerManualRun", mock.Anything, mock.MatchedBy(func(id *uuid.UUID) bool {
		return id != nil && *id == testTenant
	})).Return(job, nil)

	w := do(r, http.MethodPost, "/scheduler/run", nil)

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var got RunJobResponse
	envelope(t, w, &got)
	assert.Equal(t, job.ID, got.JobID)
	assert.Equal(t, testTenant.String(), got.Scope)
}

func TestSchedulerHandler_Run_SingleStepForPeriod(t *testing.T) {
	r, deps := schedulerRouter(auth.PermissionSchedulerRun)
	deps.queue.On("SubmitJob", mock.MatchedBy(func(j *scheduler.Job) bool {
		return j.Type == scheduler.JobTypeGenerateRent && j.Year == 2024 && j.Month == 2 &&
			j.TenantID != nil && *j.TenantID == testTenant && j.MaxRetries == 3
	})).Return(nil)

	w := do(r, http.MethodPost, "/scheduler/run", map[string]any{"job_type": "GENERATE_RENT", "year": 2024, "month": 2})

	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	deps.queue.AssertExpectations(t)
}

func TestSchedulerHandler_Run_AllTenantsNeedsFullAccess(t *testing.T) {
	r, deps := schedulerRouter(auth.PermissionSchedulerRun)

	w := do(r, http.MethodPost, "/scheduler/run", map[string]any{"all_tenants": true})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))
	deps.trigger.AssertNotCalled(t, "TriggerManualRun", mock.Anything, mock.Anything)

	r, deps = schedulerRouter(auth.PermissionAll)
	deps.trigger.On("TriggerManualRun", mock.Anything, (*uuid.UUID)(nil)).
		Return(scheduler.NewJob(nil, scheduler.JobTypeDailyCycle, 3), nil)
	w = do(r, http.MethodPost, "/scheduler/run", map[string]any{"all_tenants": true})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var got RunJobResponse
	envelope(t, w, &got)
	assert.Equal(t, "all", got.Scope)
}

func TestSchedulerHandler_Run_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not running", scheduler.ErrSchedulerNotRunning, http.StatusServiceUnavailable},
		{"queue full", scheduler.ErrJobQueueFull, http.StatusServiceUnavailable},
		{"invalid type", scheduler.ErrInvalidJobType, http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, deps := schedulerRouter(auth.PermissionSchedulerRun)
			deps.queue.On("SubmitJob", mock.Anything).Return(tt.err)

			w := do(r, http.MethodPost, "/scheduler/run", map[string]any{"job_type": "MARK_OVERDUE"})
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSchedulerHandler_Run_RejectsUnknownType(t *testing.T) {
	r, deps := schedulerRouter(auth.PermissionSchedulerRun)
	w := do(r, http.MethodPost, "/scheduler/run", map[string]any{"job_type": "REINDEX"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.queue.AssertNotCalled(t, "SubmitJob", mock.Anything)
}

func TestSchedulerHandler_Jobs_FiltersOtherTenants(t *testing.T) {
	r, deps := schedulerRouter(auth.PermissionSchedulerRun)
	tenant := testTenant
	other := uuid.New()
	deps.history.On("FindRecent", mock.Anything, 5).Return([]scheduler.JobRecord{
		{ID: uuid.New(), TenantID: &tenant, JobType: "MARK_OVERDUE"},
		{ID: uuid.New(), TenantID: &other, JobType: "MARK_OVERDUE"},
		{ID: uuid.New(), JobType: "DAILY_CYCLE"},
	}, nil)

	w := do(r, http.MethodGet, "/scheduler/jobs?limit=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []scheduler.JobRecord
	envelope(t, w, &got)
	require.Len(t, got, 2)
	for _, rec := range got {
		if rec.TenantID != nil {
			assert.Equal(t, testTenant, *rec.TenantID)
		}
	}

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/scheduler/jobs?limit=0", nil).Code)
}
