// Cron trigger HTTP handlers.
//
// The two scheduled jobs are invoked over HTTP by an external scheduler:
//   - POST /cron/check-user-status   (proactive stress notifier)
//   - POST /cron/weekly-digest       (weekly summary notes)
//
// Both sit behind the CronAuth middleware, as does GET /cron/runs, which
// reads the audit history the jobs write. The Redis fixed-window limiter
// is checked here, per job name, before the job runs: a rejected request
// performs no work and writes no audit row. A run that completes with
// per-user failures is still HTTP 200; only a run-level abort is 500.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
	"github.com/nourish-labs/go-coach-backend/internal/ratelimit"
	"github.com/nourish-labs/go-coach-backend/internal/services"
	"github.com/nourish-labs/go-coach-backend/internal/utils"
)

// NotifierService runs the proactive stress-detection job.
type NotifierService interface {
	CheckUserStatus(ctx context.Context) (*services.CheckUserStatusResult, error)
}

// DigestService runs the weekly digest job.
type DigestService interface {
	GenerateWeeklyDigest(ctx context.Context) (*services.WeeklyDigestResult, error)
}

// CronRunLister reads the append-only job audit history.
type CronRunLister interface {
	ListCronRuns(ctx context.Context, functionName string, limit int) ([]domain.CronRun, error)
}

// CronHandlers groups the scheduled-job trigger and audit endpoints.
type CronHandlers struct {
	notifier NotifierService
	digest   DigestService
	limiter  *ratelimit.FixedWindow
	runs     CronRunLister
}

// NewCron constructs a CronHandlers bound to the two jobs, the shared
// fixed-window limiter, and the audit history reader. A nil limiter
// disables rate limiting.
func NewCron(n NotifierService, d DigestService, lim *ratelimit.FixedWindow, runs CronRunLister) *CronHandlers {
	return &CronHandlers{notifier: n, digest: d, limiter: lim, runs: runs}
}

// CheckUserStatusResponse is the 200 body of the notifier trigger.
type CheckUserStatusResponse struct {
	Success          bool                             `json:"success"`
	Message          string                           `json:"message"`
	Notifications    []services.TriggeredNotification `json:"notifications"`
	Failures         []services.UserFailure           `json:"failures"`
	SkippedNoConsent []string                         `json:"skipped_no_consent"`
}

// WeeklyDigestResponse is the 200 body of the digest trigger.
type WeeklyDigestResponse struct {
	Success  bool                        `json:"success"`
	Message  string                      `json:"message"`
	Results  []services.DigestUserResult `json:"results"`
	Failures []services.UserFailure      `json:"failures"`
}

// CronErrorResponse is the 500 body when a run aborts entirely.
type CronErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RateLimitedResponse is the 429 body for an exhausted job window. It extends
// the error envelope with the counter state so the scheduler can back off
// without parsing headers.
type RateLimitedResponse struct {
	ErrorResponse
	RetryAfter   int64 `json:"retry_after"`
	RequestCount int64 `json:"request_count"`
	Limit        int64 `json:"limit"`
}

// CheckUserStatus godoc
// @ID          cronCheckUserStatus
// @Summary     Run the proactive stress notifier
// @Description Scans recent interaction logs, detects multi-day stress patterns, and queues consent-gated notifications. Requires the scheduler's shared secret.
// @Tags        Cron
// @Produce     json
//
// @Param       X-Cron-Secret  header  string  true  "Scheduler shared secret"
//
// @Success     200  {object}  handlers.CheckUserStatusResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid secret"
// @Failure     429  {object}  handlers.RateLimitedResponse  "Rate window exhausted"
// @Failure     500  {object}  handlers.CronErrorResponse "Run aborted"
// @Router      /cron/check-user-status [post]
func (h *CronHandlers) CheckUserStatus(c *gin.Context) {
	if !h.allow(c, services.JobCheckUserStatus) {
		return
	}

	res, err := h.notifier.CheckUserStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, CronErrorResponse{Success: false, Error: err.Error()})
		return
	}

	ok(c, http.StatusOK, CheckUserStatusResponse{
		Success: true,
		Message: fmt.Sprintf("checked %d users, created %d notifications",
			res.UsersConsidered, len(res.Notifications)),
		Notifications:    res.Notifications,
		Failures:         res.Failures,
		SkippedNoConsent: res.SkippedNoConsent,
	})
}

// WeeklyDigest godoc
// @ID          cronWeeklyDigest
// @Summary     Run the weekly digest
// @Description Summarizes each user's week of coach conversations into a coach note. Requires the scheduler's shared secret.
// @Tags        Cron
// @Produce     json
//
// @Param       X-Cron-Secret  header  string  true  "Scheduler shared secret"
//
// @Success     200  {object}  handlers.WeeklyDigestResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid secret"
// @Failure     429  {object}  handlers.RateLimitedResponse  "Rate window exhausted"
// @Failure     500  {object}  handlers.CronErrorResponse "Run aborted"
// @Router      /cron/weekly-digest [post]
func (h *CronHandlers) WeeklyDigest(c *gin.Context) {
	if !h.allow(c, services.JobWeeklyDigest) {
		return
	}

	res, err := h.digest.GenerateWeeklyDigest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, CronErrorResponse{Success: false, Error: err.Error()})
		return
	}

	ok(c, http.StatusOK, WeeklyDigestResponse{
		Success: true,
		Message: fmt.Sprintf("considered %d users, wrote %d notes",
			res.UsersConsidered, len(res.Results)),
		Results:  res.Results,
		Failures: res.Failures,
	})
}

// CronRunsResponse is the 200 body of the audit history endpoint.
type CronRunsResponse struct {
	Runs []domain.CronRun `json:"runs"`
}

// Runs godoc
// @ID          cronRuns
// @Summary     List recent runs of a scheduled job
// @Description Returns the newest audit rows for one job, for operational inspection. Requires the scheduler's shared secret.
// @Tags        Cron
// @Produce     json
//
// @Param       X-Cron-Secret  header  string  true   "Scheduler shared secret"
// @Param       job            query   string  true   "Job name (checkUserStatus or generateWeeklyDigest)"
// @Param       limit          query   int     false  "Max rows (default 20)"
//
// @Success     200  {object}  handlers.CronRunsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown job name"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid secret"
// @Router      /cron/runs [get]
func (h *CronHandlers) Runs(c *gin.Context) {
	job := c.Query("job")
	if job != services.JobCheckUserStatus && job != services.JobWeeklyDigest {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest,
			fmt.Sprintf("job must be %q or %q", services.JobCheckUserStatus, services.JobWeeklyDigest))
		return
	}

	limit := utils.AtoiDefault(c.Query("limit"), 20)
	rows, err := h.runs.ListCronRuns(c.Request.Context(), job, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to list cron runs")
		return
	}
	ok(c, http.StatusOK, CronRunsResponse{Runs: rows})
}

// allow consumes one fixed-window slot for job and writes the 429 when the
// window is exhausted. The limit headers are set on every decision so the
// scheduler can observe its remaining quota.
func (h *CronHandlers) allow(c *gin.Context, job string) bool {
	if h.limiter == nil {
		return true
	}

	res := h.limiter.Check(c.Request.Context(), job)
	remaining := res.Limit - res.Count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

	if res.Allowed {
		return true
	}

	retryAfter := int64(res.RetryAfter.Seconds())
	c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitedResponse{
		ErrorResponse: ErrorResponse{
			RequestID: c.Writer.Header().Get("X-Request-ID"),
			Code:      ErrCodeRateLimited,
			Message:   fmt.Sprintf("rate limit exceeded for %s", job),
		},
		RetryAfter:   retryAfter,
		RequestCount: res.Count,
		Limit:        res.Limit,
	})
	return false
}
