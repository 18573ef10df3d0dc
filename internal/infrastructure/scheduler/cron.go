package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// cronTickerInterval is how often the cron loop checks the wall clock
const cronTickerInterval = 1 * time.Minute

const (
	defaultCronHour   = 0
	defaultCronMinute = 30
)

// ParseCronSchedule extracts hour and minute from a "minute hour * * *"
// expression. Empty or short expressions fall back to 00:30.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour, minute = defaultCronHour, defaultCronMinute

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if minute, err = strconv.Atoi(parts[0]); err != nil {
			return defaultCronHour, defaultCronMinute, fmt.Errorf("%w: minute %q", ErrInvalidConfig, parts[0])
		}
	}
	if parts[1] != "*" {
		if hour, err = strconv.Atoi(parts[1]); err != nil {
			return defaultCronHour, defaultCronMinute, fmt.Errorf("%w: hour %q", ErrInvalidConfig, parts[1])
		}
	}

	if minute < 0 || minute > 59 {
		return defaultCronHour, defaultCronMinute, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return defaultCronHour, defaultCronMinute, fmt.Errorf("hour must be 0-23, got %d", hour)
	}
	return hour, minute, nil
}

// JobSubmitter accepts jobs for execution
type JobSubmitter interface {
	SubmitJob(job *Job) error
}

// CronStatus is the externally visible state of the daily trigger
type CronStatus struct {
	Enabled   bool       `json:"enabled"`
	Running   bool       `json:"running"`
	Schedule  string     `json:"schedule"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

// DailyCycleCron submits one all-tenant DAILY_CYCLE job per day at the
// configured wall-clock time of the ledger timezone
type DailyCycleCron struct {
	hour       int
	minute     int
	enabled    bool
	maxRetries int
	submitter  JobSubmitter
	clock      shared.Clock
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewDailyCycleCron creates the trigger. clock decides both the firing
// time and its timezone.
func NewDailyCycleCron(
	schedule string,
	enabled bool,
	maxRetries int,
	submitter JobSubmitter,
	clock shared.Clock,
	logger *zap.Logger,
) (*DailyCycleCron, error) {
	hour, minute, err := ParseCronSchedule(schedule)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = shared.NewSystemClock(time.UTC)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyCycleCron{
		hour:       hour,
		minute:     minute,
		enabled:    enabled,
		maxRetries: maxRetries,
		submitter:  submitter,
		clock:      clock,
		logger:     logger.Named("daily_cron"),
	}, nil
}

// Start starts the cron loop. A disabled trigger only serves manual runs.
func (c *DailyCycleCron) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning || !c.enabled {
		return nil
	}
	c.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.nextRunAt = c.nextRunAfter(c.clock.Now())

	c.wg.Add(1)
	go c.cronLoop(ctx)

	c.logger.Info("Daily cycle cron started",
		zap.Int("cron_hour", c.hour),
		zap.Int("cron_minute", c.minute),
		zap.Timep("next_run_at", c.nextRunAt),
	)
	return nil
}

// Stop stops the cron loop
func (c *DailyCycleCron) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Daily cycle cron stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *DailyCycleCron) cronLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(c.clock.Now())
		}
	}
}

// tick fires the daily cycle when now falls on the scheduled minute and
// it has not fired for that day yet
func (c *DailyCycleCron) tick(now time.Time) bool {
	if !c.shouldRun(now) {
		return false
	}
	c.mu.Lock()
	c.lastRunAt = &now
	c.nextRunAt = c.nextRunAfter(now)
	c.mu.Unlock()
	if _, err := c.fire(nil); err != nil {
		c.logger.Error("Failed to submit daily cycle", zap.Error(err))
	}
	return true
}

func (c *DailyCycleCron) shouldRun(now time.Time) bool {
	if now.Hour() != c.hour || now.Minute() != c.minute {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRunAt == nil {
		return true
	}
	return !shared.DateOf(*c.lastRunAt).Equal(shared.DateOf(now))
}

func (c *DailyCycleCron) nextRunAfter(now time.Time) *time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), c.hour, c.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return &next
}

func (c *DailyCycleCron) fire(tenantID *uuid.UUID) (*Job, error) {
	job := NewJob(tenantID, JobTypeDailyCycle, c.maxRetries)
	if err := c.submitter.SubmitJob(job); err != nil {
		return nil, err
	}
	c.logger.Info("Daily cycle submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("scope", job.Scope()),
	)
	return job, nil
}

// TriggerManualRun submits a daily cycle right away, for one tenant or all.
// It leaves the nightly schedule untouched.
func (c *DailyCycleCron) TriggerManualRun(_ context.Context, tenantID *uuid.UUID) (*Job, error) {
	return c.fire(tenantID)
}

// GetStatus returns the trigger state
func (c *DailyCycleCron) GetStatus() CronStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CronStatus{
		Enabled:   c.enabled,
		Running:   c.isRunning,
		Schedule:  fmt.Sprintf("%d %d * * *", c.minute, c.hour),
		LastRunAt: c.lastRunAt,
		NextRunAt: c.nextRunAt,
	}
}
