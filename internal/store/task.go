package store

import (
	"database/sql"
	"fmt"

	"github.com/juniperhall/taskpoints/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, title, description, is_recurring, active_days, points, money, assigned_to_id, display_order, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var desc sql.NullString
	var points sql.NullInt64
	var money sql.NullFloat64
	var assignedTo sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.Title, &desc, &t.IsRecurring, &t.ActiveDays,
		&points, &money, &assignedTo, &t.DisplayOrder,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if desc.Valid {
		t.Description = &desc.String
	}
	if points.Valid {
		p := int(points.Int64)
		t.Points = &p
	}
	if money.Valid {
		t.Money = &money.Float64
	}
	if assignedTo.Valid {
		t.AssignedToID = &assignedTo.Int64
	}
	return &t, nil
}

// TaskFields carries the mutable attributes for Create and Update.
type TaskFields struct {
	Title        string
	Description  *string
	IsRecurring  bool
	ActiveDays   string
	Points       *int
	Money        *float64
	AssignedToID *int64
}

func (f TaskFields) args() (desc sql.NullString, points sql.NullInt64, money sql.NullFloat64, assignedTo sql.NullInt64) {
	if f.Description != nil {
		desc = sql.NullString{String: *f.Description, Valid: true}
	}
	if f.Points != nil {
		points = sql.NullInt64{Int64: int64(*f.Points), Valid: true}
	}
	if f.Money != nil {
		money = sql.NullFloat64{Float64: *f.Money, Valid: true}
	}
	if f.AssignedToID != nil {
		assignedTo = sql.NullInt64{Int64: *f.AssignedToID, Valid: true}
	}
	return
}

// Create inserts a task at the end of the display order.
func (s *TaskStore) Create(f TaskFields) (*model.Task, error) {
	desc, points, money, assignedTo := f.args()

	var maxOrder int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(display_order), -1) FROM tasks`).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("query max display_order: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (title, description, is_recurring, active_days, points, money, assigned_to_id, display_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Title, desc, f.IsRecurring, f.ActiveDays, points, money, assignedTo, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListByTenant returns the tenant's tasks ordered for display. Only tasks
// reachable through an assigned person carry a tenant; unassigned tasks are
// not listed here.
func (s *TaskStore) ListByTenant(tenantID int64, personID *int64) ([]model.Task, error) {
	query := `SELECT t.` + taskColsPrefixed + ` FROM tasks t
		JOIN people p ON p.id = t.assigned_to_id
		WHERE p.tenant_id = ?`
	args := []any{tenantID}
	if personID != nil {
		query += ` AND t.assigned_to_id = ?`
		args = append(args, *personID)
	}
	query += ` ORDER BY t.display_order ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

const taskColsPrefixed = `id, t.title, t.description, t.is_recurring, t.active_days, t.points, t.money, t.assigned_to_id, t.display_order, t.created_at, t.updated_at`

func (s *TaskStore) Update(id int64, f TaskFields) (*model.Task, error) {
	desc, points, money, assignedTo := f.args()

	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, is_recurring = ?, active_days = ?,
			points = ?, money = ?, assigned_to_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		f.Title, desc, f.IsRecurring, f.ActiveDays, points, money, assignedTo, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// TaskOrder pairs a task with its new display position.
type TaskOrder struct {
	ID           int64 `json:"id"`
	DisplayOrder int   `json:"display_order"`
}

// Reorder applies the new display order as one transaction. Every task must
// belong to the tenant through its assigned person; any violation rolls the
// whole batch back so readers never see a half-reordered list.
func (s *TaskStore) Reorder(tenantID int64, orders []TaskOrder) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, o := range orders {
		var ownerTenant sql.NullInt64
		err := tx.QueryRow(
			`SELECT p.tenant_id FROM tasks t
			 LEFT JOIN people p ON p.id = t.assigned_to_id
			 WHERE t.id = ?`,
			o.ID,
		).Scan(&ownerTenant)
		if err == sql.ErrNoRows {
			return fmt.Errorf("task %d: %w", o.ID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("check task tenant: %w", err)
		}
		if !ownerTenant.Valid || ownerTenant.Int64 != tenantID {
			return fmt.Errorf("task %d: %w", o.ID, ErrAccessDenied)
		}

		if _, err := tx.Exec(
			`UPDATE tasks SET display_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			o.DisplayOrder, o.ID,
		); err != nil {
			return fmt.Errorf("update display order: %w", err)
		}
	}
	return tx.Commit()
}
