package store

import (
	"database/sql"
	"fmt"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/model"
)

// CompletionStore is the ledger of (task, date) -> status cells. It owns
// the toggle state machine and the one-off task retirement side effect.
type CompletionStore struct {
	db *sql.DB
}

func NewCompletionStore(db *sql.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

// ToggleResult describes the cell state after a toggle. Status is nil when
// the toggle removed the record. Deleted reports that a one-off task
// retired itself.
type ToggleResult struct {
	Completed bool    `json:"completed"`
	Status    *string `json:"status"`
	Deleted   bool    `json:"deleted,omitempty"`
}

// Toggle applies the cell state machine for (taskID, date):
//
//	absent           -> set to status
//	same as current  -> delete the record (toggle off)
//	different        -> update the status in place
//
// When the task is non-recurring and the cell lands in "completed", the task
// row is deleted in the same transaction. A concurrent insert losing the
// unique-constraint race is retried as an update, never surfaced as an error.
func (s *CompletionStore) Toggle(taskID int64, date dates.Date, status string) (*ToggleResult, error) {
	if status != model.StatusCompleted && status != model.StatusExcluded {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var isRecurring bool
	err = tx.QueryRow(`SELECT is_recurring FROM tasks WHERE id = ?`, taskID).Scan(&isRecurring)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	result, err := s.toggleCell(tx, taskID, date, status)
	if err != nil {
		return nil, err
	}

	// One-off tasks retire the moment they are completed. The delete rides
	// the same transaction so a failure leaves neither write behind.
	if !isRecurring && result.Completed && *result.Status == model.StatusCompleted {
		if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, taskID); err != nil {
			return nil, fmt.Errorf("retire one-off task: %w", err)
		}
		result.Deleted = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit toggle: %w", err)
	}
	return result, nil
}

func (s *CompletionStore) toggleCell(tx *sql.Tx, taskID int64, date dates.Date, status string) (*ToggleResult, error) {
	var existingID int64
	var existingStatus string
	err := tx.QueryRow(
		`SELECT id, status FROM task_completions WHERE task_id = ? AND completed_date = ?`,
		taskID, date.String(),
	).Scan(&existingID, &existingStatus)

	switch {
	case err == sql.ErrNoRows:
		_, err := tx.Exec(
			`INSERT INTO task_completions (task_id, completed_date, status) VALUES (?, ?, ?)`,
			taskID, date.String(), status,
		)
		if isUniqueViolation(err) {
			// Lost the race to a concurrent toggle; the row exists now,
			// so fall through to the update/delete arm.
			return s.toggleCell(tx, taskID, date, status)
		}
		if err != nil {
			return nil, fmt.Errorf("insert completion: %w", err)
		}
		return &ToggleResult{Completed: true, Status: &status}, nil

	case err != nil:
		return nil, fmt.Errorf("get completion: %w", err)

	case existingStatus == status:
		if _, err := tx.Exec(`DELETE FROM task_completions WHERE id = ?`, existingID); err != nil {
			return nil, fmt.Errorf("delete completion: %w", err)
		}
		return &ToggleResult{Completed: false, Status: nil}, nil

	default:
		if _, err := tx.Exec(`UPDATE task_completions SET status = ? WHERE id = ?`, status, existingID); err != nil {
			return nil, fmt.Errorf("update completion: %w", err)
		}
		return &ToggleResult{Completed: true, Status: &status}, nil
	}
}

// ListForTaskInRange returns the task's completions in [start, end],
// ordered by date ascending.
func (s *CompletionStore) ListForTaskInRange(taskID int64, start, end dates.Date) ([]model.TaskCompletion, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, completed_date, status, created_at
		 FROM task_completions
		 WHERE task_id = ? AND completed_date >= ? AND completed_date <= ?
		 ORDER BY completed_date ASC`,
		taskID, start.String(), end.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.TaskCompletion
	for rows.Next() {
		var c model.TaskCompletion
		if err := rows.Scan(&c.ID, &c.TaskID, &c.CompletedDate, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// ListForTaskInMonth returns the task's completions for a calendar month.
func (s *CompletionStore) ListForTaskInMonth(taskID int64, year, month int) ([]model.TaskCompletion, error) {
	return s.ListForTaskInRange(taskID, dates.MonthStart(year, month), dates.MonthEnd(year, month))
}

// CountForCell reports how many rows exist for a (task, date) cell.
// The unique index keeps this at most 1; tests assert it.
func (s *CompletionStore) CountForCell(taskID int64, date dates.Date) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM task_completions WHERE task_id = ? AND completed_date = ?`,
		taskID, date.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}
