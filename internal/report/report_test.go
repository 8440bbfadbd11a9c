package report

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/juniperhall/taskpoints/internal/database"
	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/model"
	"github.com/juniperhall/taskpoints/internal/store"
)

type fixture struct {
	db          *sql.DB
	tenants     *store.TenantStore
	people      *store.PersonStore
	tasks       *store.TaskStore
	completions *store.CompletionStore
	svc         *Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:          db,
		tenants:     store.NewTenantStore(db),
		people:      store.NewPersonStore(db),
		tasks:       store.NewTaskStore(db),
		completions: store.NewCompletionStore(db),
	}
	f.svc = NewService(f.people, f.tasks, f.completions)
	return f
}

func (f *fixture) seedPerson(t *testing.T, tenantName, personName string, goal *int) (int64, int64) {
	t.Helper()
	tenant, err := f.tenants.Create(tenantName, "pw")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	person, err := f.people.Create(tenant.ID, personName, nil)
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	if goal != nil {
		if _, err := f.people.UpdateGoal(person.ID, *goal); err != nil {
			t.Fatalf("set goal: %v", err)
		}
	}
	return tenant.ID, person.ID
}

func (f *fixture) seedTask(t *testing.T, personID int64, title, activeDays string, points int) int64 {
	t.Helper()
	task, err := f.tasks.Create(store.TaskFields{
		Title:        title,
		IsRecurring:  true,
		ActiveDays:   activeDays,
		Points:       &points,
		AssignedToID: &personID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task.ID
}

func (f *fixture) complete(t *testing.T, taskID int64, date string) {
	t.Helper()
	if _, err := f.completions.Toggle(taskID, dates.MustParse(date), model.StatusCompleted); err != nil {
		t.Fatalf("complete %s: %v", date, err)
	}
}

func intPtr(n int) *int { return &n }

func TestMonthlyPastMonth(t *testing.T) {
	f := setup(t)
	tenantID, personID := f.seedPerson(t, "Baggins", "Frodo", intPtr(100))
	taskID := f.seedTask(t, personID, "Practice piano", "1,3,5", 10)

	f.complete(t, taskID, "2025-12-01")
	f.complete(t, taskID, "2025-12-03")
	if _, err := f.completions.Toggle(taskID, dates.MustParse("2025-12-05"), model.StatusExcluded); err != nil {
		t.Fatalf("exclude: %v", err)
	}

	// Report requested from January, so December is a full past month.
	r, err := f.svc.Monthly(tenantID, personID, 2025, 12, dates.MustParse("2026-01-10"))
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if r.TotalPoints != 20 || r.CompletionCount != 2 {
		t.Errorf("totals = %d pts / %d completions, want 20/2", r.TotalPoints, r.CompletionCount)
	}
	if len(r.TaskSummaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(r.TaskSummaries))
	}
	s := r.TaskSummaries[0]
	// December 2025 has 14 Mon/Wed/Fri days; one excluded leaves 13.
	if s.PossibleCompletions != 14 {
		t.Errorf("possible = %d, want 14", s.PossibleCompletions)
	}
	if s.ExcludedCount != 1 {
		t.Errorf("excluded = %d, want 1", s.ExcludedCount)
	}
	if s.PercentComplete != 15 { // 2/13 = 15.38 -> 15
		t.Errorf("percent = %d, want 15", s.PercentComplete)
	}
	if r.Progress != 20 { // 20 points of a 100 goal
		t.Errorf("progress = %d, want 20", r.Progress)
	}
}

// For the current month the window ends at the as-of date, not month end.
func TestMonthlyCurrentMonthProrated(t *testing.T) {
	f := setup(t)
	tenantID, personID := f.seedPerson(t, "Baggins", "Frodo", nil)
	taskID := f.seedTask(t, personID, "Dishes", "0,1,2,3,4,5,6", 1)

	f.complete(t, taskID, "2025-12-02")
	f.complete(t, taskID, "2025-12-04")

	r, err := f.svc.Monthly(tenantID, personID, 2025, 12, dates.MustParse("2025-12-04"))
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	s := r.TaskSummaries[0]
	if s.PossibleCompletions != 4 {
		t.Errorf("possible = %d, want 4 (Dec 1-4 only)", s.PossibleCompletions)
	}
	if s.PercentComplete != 50 {
		t.Errorf("percent = %d, want 50", s.PercentComplete)
	}
	if r.Progress != 0 {
		t.Errorf("progress = %d, want 0 without a goal", r.Progress)
	}
}

// Allowance payouts roll up alongside points.
func TestMonthlyTotalsMoney(t *testing.T) {
	f := setup(t)
	tenantID, personID := f.seedPerson(t, "Baggins", "Frodo", nil)

	money := 0.75
	task, err := f.tasks.Create(store.TaskFields{
		Title:        "Take out trash",
		IsRecurring:  true,
		ActiveDays:   "0,1,2,3,4,5,6",
		Money:        &money,
		AssignedToID: &personID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	f.complete(t, task.ID, "2025-12-01")
	f.complete(t, task.ID, "2025-12-02")

	r, err := f.svc.Monthly(tenantID, personID, 2025, 12, dates.MustParse("2026-01-01"))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.TotalMoney != 1.50 {
		t.Errorf("total money = %v, want 1.50", r.TotalMoney)
	}
	if s := r.TaskSummaries[0]; s.MoneyPerCompletion != 0.75 || s.TotalMoney != 1.50 {
		t.Errorf("summary money = %v/%v, want 0.75/1.50", s.MoneyPerCompletion, s.TotalMoney)
	}
}

func TestMonthlySortsByCompletedCount(t *testing.T) {
	f := setup(t)
	tenantID, personID := f.seedPerson(t, "Baggins", "Frodo", nil)
	quiet := f.seedTask(t, personID, "Quiet", "0,1,2,3,4,5,6", 1)
	busy := f.seedTask(t, personID, "Busy", "0,1,2,3,4,5,6", 1)

	f.complete(t, quiet, "2025-12-01")
	f.complete(t, busy, "2025-12-01")
	f.complete(t, busy, "2025-12-02")

	r, err := f.svc.Monthly(tenantID, personID, 2025, 12, dates.MustParse("2026-01-01"))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.TaskSummaries[0].TaskTitle != "Busy" || r.TaskSummaries[1].TaskTitle != "Quiet" {
		t.Errorf("order = [%s %s], want [Busy Quiet]", r.TaskSummaries[0].TaskTitle, r.TaskSummaries[1].TaskTitle)
	}
}

func TestMonthlyCrossTenantDenied(t *testing.T) {
	f := setup(t)
	_, personID := f.seedPerson(t, "Baggins", "Frodo", nil)
	otherTenant, _ := f.seedPerson(t, "Took", "Pippin", nil)

	_, err := f.svc.Monthly(otherTenant, personID, 2025, 12, dates.MustParse("2025-12-15"))
	if !errors.Is(err, store.ErrAccessDenied) {
		t.Errorf("error = %v, want ErrAccessDenied", err)
	}
}

func TestMonthlyPersonNotFound(t *testing.T) {
	f := setup(t)
	tenantID, _ := f.seedPerson(t, "Baggins", "Frodo", nil)

	_, err := f.svc.Monthly(tenantID, 4242, 2025, 12, dates.MustParse("2025-12-15"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMonthlyInvalidRange(t *testing.T) {
	f := setup(t)
	tenantID, personID := f.seedPerson(t, "Baggins", "Frodo", nil)

	cases := []struct{ year, month int }{
		{1899, 6},
		{2500, 6},
		{2025, 0},
		{2025, 13},
	}
	for _, c := range cases {
		_, err := f.svc.Monthly(tenantID, personID, c.year, c.month, dates.MustParse("2025-12-15"))
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Monthly(%d, %d) error = %v, want ErrInvalidRange", c.year, c.month, err)
		}
	}
}
