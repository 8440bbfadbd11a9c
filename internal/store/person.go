package store

import (
	"database/sql"
	"fmt"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/model"
)

type PersonStore struct {
	db *sql.DB
}

func NewPersonStore(db *sql.DB) *PersonStore {
	return &PersonStore{db: db}
}

const personCols = `id, name, color, point_goal, tenant_id, created_at`

func scanPerson(scanner interface{ Scan(...any) error }) (*model.Person, error) {
	var p model.Person
	var color sql.NullString
	var goal sql.NullInt64

	if err := scanner.Scan(&p.ID, &p.Name, &color, &goal, &p.TenantID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if color.Valid {
		p.Color = &color.String
	}
	if goal.Valid {
		g := int(goal.Int64)
		p.PointGoal = &g
	}
	return &p, nil
}

// Create inserts a person for the tenant. A duplicate name inside the
// tenant returns ErrConflict.
func (s *PersonStore) Create(tenantID int64, name string, color *string) (*model.Person, error) {
	var c sql.NullString
	if color != nil {
		c = sql.NullString{String: *color, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO people (name, color, tenant_id) VALUES (?, ?, ?)`,
		name, c, tenantID,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("person name %q: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PersonStore) GetByID(id int64) (*model.Person, error) {
	row := s.db.QueryRow(`SELECT `+personCols+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (s *PersonStore) ListByTenant(tenantID int64) ([]model.Person, error) {
	rows, err := s.db.Query(
		`SELECT `+personCols+` FROM people WHERE tenant_id = ? ORDER BY name ASC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// ListWithPoints annotates each person with the points earned in
// [start, end]. Only completed entries score; excluded days earn nothing.
func (s *PersonStore) ListWithPoints(tenantID int64, start, end dates.Date) ([]model.PersonWithPoints, error) {
	rows, err := s.db.Query(`
		SELECT `+personCols+`,
			COALESCE((
				SELECT SUM(COALESCE(t.points, 0))
				FROM tasks t
				JOIN task_completions tc ON tc.task_id = t.id
				WHERE t.assigned_to_id = people.id
				AND tc.status = 'completed'
				AND tc.completed_date >= ? AND tc.completed_date <= ?
			), 0)
		FROM people
		WHERE tenant_id = ?
		ORDER BY name ASC`,
		start.String(), end.String(), tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list people with points: %w", err)
	}
	defer rows.Close()

	var people []model.PersonWithPoints
	for rows.Next() {
		var p model.PersonWithPoints
		var color sql.NullString
		var goal sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &color, &goal, &p.TenantID, &p.CreatedAt, &p.CurrentMonthPoints); err != nil {
			return nil, fmt.Errorf("scan person with points: %w", err)
		}
		if color.Valid {
			p.Color = &color.String
		}
		if goal.Valid {
			g := int(goal.Int64)
			p.PointGoal = &g
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (s *PersonStore) Update(id int64, name string, color *string) (*model.Person, error) {
	var c sql.NullString
	if color != nil {
		c = sql.NullString{String: *color, Valid: true}
	}

	_, err := s.db.Exec(`UPDATE people SET name = ?, color = ? WHERE id = ?`, name, c, id)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("person name %q: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	return s.GetByID(id)
}

// UpdateGoal sets the person's monthly point goal.
func (s *PersonStore) UpdateGoal(id int64, pointGoal int) (*model.Person, error) {
	_, err := s.db.Exec(`UPDATE people SET point_goal = ? WHERE id = ?`, pointGoal, id)
	if err != nil {
		return nil, fmt.Errorf("update point goal: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes a person. Their tasks, and those tasks' completions,
// cascade away with them.
func (s *PersonStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return nil
}
