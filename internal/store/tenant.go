package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors shared by the stores. Handlers map these onto HTTP
// status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
	ErrConflict     = errors.New("conflict")
)

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. modernc.org/sqlite exposes no typed error for this.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type TenantStore struct {
	db *sql.DB
}

func NewTenantStore(db *sql.DB) *TenantStore {
	return &TenantStore{db: db}
}

const tenantCols = `id, name, password_hash, created_at`

func scanTenant(scanner interface{ Scan(...any) error }) (*model.Tenant, error) {
	var t model.Tenant
	if err := scanner.Scan(&t.ID, &t.Name, &t.PasswordHash, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create hashes the password and inserts a tenant. A duplicate name
// (case-insensitive) returns ErrConflict.
func (s *TenantStore) Create(name, password string) (*model.Tenant, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO tenants (name, password_hash) VALUES (?, ?)`,
		name, string(hash),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("tenant name %q: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert tenant: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TenantStore) GetByID(id int64) (*model.Tenant, error) {
	row := s.db.QueryRow(`SELECT `+tenantCols+` FROM tenants WHERE id = ?`, id)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// GetByName looks a tenant up case-insensitively.
func (s *TenantStore) GetByName(name string) (*model.Tenant, error) {
	row := s.db.QueryRow(
		`SELECT `+tenantCols+` FROM tenants WHERE name = ? COLLATE NOCASE`,
		strings.TrimSpace(name),
	)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant by name: %w", err)
	}
	return t, nil
}

func (s *TenantStore) List() ([]model.Tenant, error) {
	rows, err := s.db.Query(`SELECT ` + tenantCols + ` FROM tenants ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

// VerifyCredentials returns the tenant when the name/password pair matches,
// or (nil, nil) when either is wrong. Callers cannot distinguish an unknown
// name from a bad password.
func (s *TenantStore) VerifyCredentials(name, password string) (*model.Tenant, error) {
	t, err := s.GetByName(name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return t, nil
}

// ChangePassword verifies the current password before setting a new one.
// A wrong current password returns ErrAccessDenied.
func (s *TenantStore) ChangePassword(id int64, current, next string) error {
	t, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("tenant %d: %w", id, ErrNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(current)) != nil {
		return fmt.Errorf("current password: %w", ErrAccessDenied)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE tenants SET password_hash = ? WHERE id = ?`, string(hash), id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SetPassword overwrites a tenant's password without verifying the old one.
// Admin-only path.
func (s *TenantStore) SetPassword(id int64, next string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	result, err := s.db.Exec(`UPDATE tenants SET password_hash = ? WHERE id = ?`, string(hash), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("tenant %d: %w", id, ErrNotFound)
	}
	return nil
}

// TenantStats summarizes one tenant's activity for the admin overview.
type TenantStats struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PeopleCount int    `json:"people_count"`
	TaskCount   int    `json:"task_count"`
	UsageDays   int    `json:"usage_days"`
}

// MonthlyStats returns per-tenant people/task counts and the number of
// distinct dates with any completion inside [start, end].
func (s *TenantStore) MonthlyStats(start, end dates.Date) ([]TenantStats, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name,
			(SELECT COUNT(*) FROM people p WHERE p.tenant_id = t.id),
			(SELECT COUNT(*) FROM tasks k
				JOIN people p ON p.id = k.assigned_to_id
				WHERE p.tenant_id = t.id),
			(SELECT COUNT(DISTINCT tc.completed_date) FROM task_completions tc
				JOIN tasks k ON k.id = tc.task_id
				JOIN people p ON p.id = k.assigned_to_id
				WHERE p.tenant_id = t.id
				AND tc.completed_date >= ? AND tc.completed_date <= ?)
		FROM tenants t
		ORDER BY t.name ASC`,
		start.String(), end.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("tenant stats: %w", err)
	}
	defer rows.Close()

	var stats []TenantStats
	for rows.Next() {
		var st TenantStats
		if err := rows.Scan(&st.ID, &st.Name, &st.PeopleCount, &st.TaskCount, &st.UsageDays); err != nil {
			return nil, fmt.Errorf("scan tenant stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
