package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
)

// fakeNotifierRepo is an in-memory NotifierRepo with programmable failures.
type fakeNotifierRepo struct {
	logs []domain.InteractionLog

	fetchErr      error
	fetchFailures int // fail this many fetches, then succeed

	existing  map[string]int64 // userID -> recent notification count
	countErr  error
	insertErr error

	inserted []domain.CoachNotification
	runs     []domain.CronRun
	runErr   error
}

func (f *fakeNotifierRepo) ListInteractionsSince(_ context.Context, _ *gorm.DB, _ time.Time) ([]domain.InteractionLog, error) {
	if f.fetchFailures > 0 {
		f.fetchFailures--
		return nil, errors.New("transient fetch failure")
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.logs, nil
}

func (f *fakeNotifierRepo) CountRecentNotifications(_ context.Context, _ *gorm.DB, userID, _ string, _ time.Time) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.existing[userID], nil
}

func (f *fakeNotifierRepo) CreateNotification(_ context.Context, _ *gorm.DB, n *domain.CoachNotification) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	n.ID = "n-" + n.UserID
	f.inserted = append(f.inserted, *n)
	return nil
}

func (f *fakeNotifierRepo) CreateCronRun(_ context.Context, _ *gorm.DB, run *domain.CronRun) error {
	if f.runErr != nil {
		return f.runErr
	}
	f.runs = append(f.runs, *run)
	return nil
}

// allowAll / denyAll are trivial consent gates for tests.
type allowAll struct{}

func (allowAll) HasConsent(context.Context, string, string) bool { return true }

type gateFor struct{ allowed map[string]bool }

func (g gateFor) HasConsent(_ context.Context, userID, _ string) bool { return g.allowed[userID] }

func stressLogsFor(userID string, days ...int) []domain.InteractionLog {
	out := make([]domain.InteractionLog, 0, len(days))
	for _, d := range days {
		out = append(out, domain.InteractionLog{
			UserID:      userID,
			UserMessage: "feeling stressed",
			CreatedAt:   time.Date(2025, 6, d, 12, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func newTestNotifier(repo *fakeNotifierRepo, gate ConsentGate) *NotifierService {
	svc := NewNotifierService(nil, repo, gate)
	svc.Now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	svc.Sleep = func(time.Duration) {}
	return svc
}

func TestCheckUserStatus_EndToEnd(t *testing.T) {
	// userA: stress on two days -> triggered.
	// userB: stress on one day only -> silently skipped.
	// userC: stress on two days, no consent -> skipped_no_consent.
	logs := append(stressLogsFor("userA", 8, 9), stressLogsFor("userB", 9)...)
	logs = append(logs, stressLogsFor("userC", 8, 9)...)

	repo := &fakeNotifierRepo{logs: logs, existing: map[string]int64{}}
	svc := newTestNotifier(repo, gateFor{allowed: map[string]bool{"userA": true, "userB": true}})

	res, err := svc.CheckUserStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.UsersConsidered != 3 {
		t.Fatalf("UsersConsidered = %d, want 3", res.UsersConsidered)
	}
	if len(res.Notifications) != 1 || res.Notifications[0].UserID != "userA" {
		t.Fatalf("Notifications = %+v, want one for userA", res.Notifications)
	}
	if len(res.SkippedNoConsent) != 1 || res.SkippedNoConsent[0] != "userC" {
		t.Fatalf("SkippedNoConsent = %v, want [userC]", res.SkippedNoConsent)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("Failures = %+v, want none", res.Failures)
	}
	if res.RunStatus != domain.RunStatusSuccess {
		t.Fatalf("RunStatus = %q, want success", res.RunStatus)
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d notifications, want 1", len(repo.inserted))
	}
	n := repo.inserted[0]
	if n.Type != domain.NotificationTypeProactive || n.Status != "pending" || n.DeliveryChannel != "in_app" {
		t.Fatalf("notification fields wrong: %+v", n)
	}
	if !strings.Contains(n.Message, "check-in") {
		t.Fatalf("unexpected message: %q", n.Message)
	}

	if len(repo.runs) != 1 {
		t.Fatalf("cron runs = %d, want exactly 1", len(repo.runs))
	}
	run := repo.runs[0]
	if run.FunctionName != JobCheckUserStatus || run.RunStatus != domain.RunStatusSuccess {
		t.Fatalf("cron run wrong: %+v", run)
	}
}

func TestCheckUserStatus_DedupWindow(t *testing.T) {
	repo := &fakeNotifierRepo{
		logs:     stressLogsFor("userA", 8, 9),
		existing: map[string]int64{"userA": 1},
	}
	svc := newTestNotifier(repo, allowAll{})

	res, err := svc.CheckUserStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Notifications) != 0 || len(repo.inserted) != 0 {
		t.Fatal("a recent notification must suppress a new insert")
	}
	if len(res.SkippedRecent) != 1 || res.SkippedRecent[0] != "userA" {
		t.Fatalf("SkippedRecent = %v, want [userA]", res.SkippedRecent)
	}
	if res.RunStatus != domain.RunStatusSuccess {
		t.Fatalf("RunStatus = %q, want success (skips are not failures)", res.RunStatus)
	}
}

func TestCheckUserStatus_FetchRetriesThenSucceeds(t *testing.T) {
	repo := &fakeNotifierRepo{
		logs:          stressLogsFor("userA", 8, 9),
		fetchFailures: 2, // two transient failures, third attempt succeeds
		existing:      map[string]int64{},
	}
	svc := newTestNotifier(repo, allowAll{})

	res, err := svc.CheckUserStatus(context.Background())
	if err != nil {
		t.Fatalf("fetch should have recovered on the third attempt: %v", err)
	}
	if len(res.Notifications) != 1 {
		t.Fatalf("Notifications = %d, want 1", len(res.Notifications))
	}
}

func TestCheckUserStatus_FetchExhaustionAbortsWithAuditRow(t *testing.T) {
	repo := &fakeNotifierRepo{fetchErr: errors.New("db down")}
	svc := newTestNotifier(repo, allowAll{})

	_, err := svc.CheckUserStatus(context.Background())
	if err == nil {
		t.Fatal("expected run-level error")
	}
	if len(repo.runs) != 1 {
		t.Fatalf("cron runs = %d, want exactly 1 on the error path", len(repo.runs))
	}
	run := repo.runs[0]
	if run.RunStatus != domain.RunStatusError || run.Attempts != DefaultRetryAttempts {
		t.Fatalf("cron run = %+v, want error status after %d attempts", run, DefaultRetryAttempts)
	}
	if run.ErrorMessage == "" {
		t.Fatal("error message must be recorded")
	}
}

func TestCheckUserStatus_InsertFailureIsolatedPerUser(t *testing.T) {
	// userA's insert fails; userB has no stress pattern. Run becomes error
	// because there were failures and zero successes.
	repo := &fakeNotifierRepo{
		logs:      append(stressLogsFor("userA", 8, 9), stressLogsFor("userB", 9)...),
		existing:  map[string]int64{},
		insertErr: errors.New("insert failed"),
	}
	svc := newTestNotifier(repo, allowAll{})

	res, err := svc.CheckUserStatus(context.Background())
	if err != nil {
		t.Fatalf("per-user failures must not abort the run: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].UserID != "userA" {
		t.Fatalf("Failures = %+v, want one for userA", res.Failures)
	}
	if res.RunStatus != domain.RunStatusError {
		t.Fatalf("RunStatus = %q, want error (all per-user ops failed)", res.RunStatus)
	}
}

func TestCheckUserStatus_DedupCountErrorIsFailure(t *testing.T) {
	repo := &fakeNotifierRepo{
		logs:     stressLogsFor("userA", 8, 9),
		countErr: errors.New("count failed"),
	}
	svc := newTestNotifier(repo, allowAll{})

	res, err := svc.CheckUserStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Failures) != 1 || len(repo.inserted) != 0 {
		t.Fatalf("an unverifiable dedup window must not be inserted into: %+v", res)
	}
}

func TestClassifyRun(t *testing.T) {
	cases := map[string]struct {
		successes, failures int
		want                string
	}{
		"all ok":     {2, 0, domain.RunStatusSuccess},
		"nothing":    {0, 0, domain.RunStatusSuccess},
		"mixed":      {1, 1, domain.RunStatusPartialSuccess},
		"all failed": {0, 3, domain.RunStatusError},
	}
	for name, tc := range cases {
		if got := classifyRun(tc.successes, tc.failures); got != tc.want {
			t.Errorf("%s: classifyRun(%d,%d) = %q, want %q", name, tc.successes, tc.failures, got, tc.want)
		}
	}
}

func TestGroupByUser_PreservesFirstSeenOrder(t *testing.T) {
	logs := []domain.InteractionLog{
		{UserID: "b"}, {UserID: "a"}, {UserID: "b"}, {UserID: "c"}, {UserID: "a"},
	}
	order, groups := groupByUser(logs)
	want := []string{"b", "a", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if len(groups["b"]) != 2 || len(groups["a"]) != 2 || len(groups["c"]) != 1 {
		t.Fatalf("groups sized wrong: %v", groups)
	}
}
