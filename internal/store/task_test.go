package store

import (
	"errors"
	"testing"
)

func TestTaskCRUD(t *testing.T) {
	db := setupTestDB(t)
	_, personID := seedTenantAndPerson(t, db, "Baggins", "Frodo")
	ts := NewTaskStore(db)

	task, err := ts.Create(TaskFields{
		Title:        "Take out trash",
		Description:  strPtr("Bins to the curb"),
		IsRecurring:  true,
		ActiveDays:   "2,4",
		Points:       intPtr(3),
		Money:        float64Ptr(0.50),
		AssignedToID: &personID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Title != "Take out trash" || task.ActiveDays != "2,4" {
		t.Errorf("task = %+v", task)
	}
	if task.Points == nil || *task.Points != 3 {
		t.Errorf("points = %v, want 3", task.Points)
	}
	if task.Money == nil || *task.Money != 0.50 {
		t.Errorf("money = %v, want 0.50", task.Money)
	}

	updated, err := ts.Update(task.ID, TaskFields{
		Title:        "Take out trash and recycling",
		IsRecurring:  true,
		ActiveDays:   "2",
		AssignedToID: &personID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Take out trash and recycling" || updated.ActiveDays != "2" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Points != nil {
		t.Errorf("points = %v, want cleared", updated.Points)
	}

	if err := ts.Delete(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted task")
	}
}

func TestTaskGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)

	got, err := ts.GetByID(9999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent task")
	}
}

func TestListByTenantOrdersAndFilters(t *testing.T) {
	db := setupTestDB(t)
	tenantID, personID := seedTenantAndPerson(t, db, "Baggins", "Frodo")
	ps := NewPersonStore(db)
	other, err := ps.Create(tenantID, "Sam", nil)
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	ts := NewTaskStore(db)

	for _, c := range []struct {
		title  string
		person int64
	}{
		{"First", personID},
		{"Second", other.ID},
		{"Third", personID},
	} {
		pid := c.person
		if _, err := ts.Create(TaskFields{Title: c.title, IsRecurring: true, ActiveDays: "1", AssignedToID: &pid}); err != nil {
			t.Fatalf("create %s: %v", c.title, err)
		}
	}

	all, err := ts.ListByTenant(tenantID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if all[i].Title != want {
			t.Errorf("all[%d] = %q, want %q (display order)", i, all[i].Title, want)
		}
	}

	mine, err := ts.ListByTenant(tenantID, &personID)
	if err != nil {
		t.Fatalf("list by person: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("len = %d, want 2", len(mine))
	}
}

func TestListByTenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	_, personA := seedTenantAndPerson(t, db, "Baggins", "Frodo")
	tenantB, _ := seedTenantAndPerson(t, db, "Took", "Pippin")
	ts := NewTaskStore(db)

	if _, err := ts.Create(TaskFields{Title: "Secret task", IsRecurring: true, ActiveDays: "1", AssignedToID: &personA}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tasks, err := ts.ListByTenant(tenantB, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("tenant B sees %d of tenant A's tasks", len(tasks))
	}
}

func TestReorderAppliesAtomically(t *testing.T) {
	db := setupTestDB(t)
	tenantID, personID := seedTenantAndPerson(t, db, "Baggins", "Frodo")
	ts := NewTaskStore(db)

	t1, _ := ts.Create(TaskFields{Title: "One", IsRecurring: true, ActiveDays: "1", AssignedToID: &personID})
	t2, _ := ts.Create(TaskFields{Title: "Two", IsRecurring: true, ActiveDays: "1", AssignedToID: &personID})

	err := ts.Reorder(tenantID, []TaskOrder{
		{ID: t1.ID, DisplayOrder: 5},
		{ID: t2.ID, DisplayOrder: 2},
	})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	tasks, _ := ts.ListByTenant(tenantID, nil)
	if tasks[0].ID != t2.ID || tasks[1].ID != t1.ID {
		t.Errorf("order = [%d %d], want [%d %d]", tasks[0].ID, tasks[1].ID, t2.ID, t1.ID)
	}
}

// If any task in the batch fails the tenant check, no task's order changes.
func TestReorderRollsBackOnCrossTenantTask(t *testing.T) {
	db := setupTestDB(t)
	tenantA, personA := seedTenantAndPerson(t, db, "Baggins", "Frodo")
	_, personB := seedTenantAndPerson(t, db, "Took", "Pippin")
	ts := NewTaskStore(db)

	mine, _ := ts.Create(TaskFields{Title: "Mine", IsRecurring: true, ActiveDays: "1", AssignedToID: &personA})
	theirs, _ := ts.Create(TaskFields{Title: "Theirs", IsRecurring: true, ActiveDays: "1", AssignedToID: &personB})

	err := ts.Reorder(tenantA, []TaskOrder{
		{ID: mine.ID, DisplayOrder: 99},
		{ID: theirs.ID, DisplayOrder: 98},
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("error = %v, want ErrAccessDenied", err)
	}

	got, _ := ts.GetByID(mine.ID)
	if got.DisplayOrder == 99 {
		t.Error("first task's order changed despite batch failure")
	}
}

// A task with no assigned person has no tenant and cannot be reordered.
func TestReorderRejectsUnassignedTask(t *testing.T) {
	db := setupTestDB(t)
	tenantID, _ := seedTenantAndPerson(t, db, "Baggins", "Frodo")
	ts := NewTaskStore(db)

	loose, _ := ts.Create(TaskFields{Title: "Unassigned", IsRecurring: true, ActiveDays: "1"})

	err := ts.Reorder(tenantID, []TaskOrder{{ID: loose.ID, DisplayOrder: 1}})
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("error = %v, want ErrAccessDenied", err)
	}
}

func float64Ptr(f float64) *float64 { return &f }
