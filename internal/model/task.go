package model

import "time"

// Completion statuses. An excluded day is intentionally removed from the
// denominator of a completion percentage; it never earns points.
const (
	StatusCompleted = "completed"
	StatusExcluded  = "excluded"
)

// Task is a unit of work assigned to at most one person. ActiveDays holds
// comma-separated weekday integers (0 = Sunday .. 6 = Saturday). A
// non-recurring task is deleted the first time it is completed.
type Task struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	IsRecurring  bool      `json:"is_recurring"`
	ActiveDays   string    `json:"active_days"`
	Points       *int      `json:"points"`
	Money        *float64  `json:"money"`
	AssignedToID *int64    `json:"assigned_to_id"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TaskCompletion records that a task reached a status on a calendar date.
// At most one row exists per (TaskID, CompletedDate) pair. CreatedAt is an
// audit timestamp only, never used in business logic.
type TaskCompletion struct {
	ID            int64     `json:"id"`
	TaskID        int64     `json:"task_id"`
	CompletedDate string    `json:"completed_date"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
