package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/juniperhall/taskpoints/internal/database"
)

// setupTestDB opens a throwaway database with the full schema applied,
// through the same Open path the server uses so the DSN pragmas hold on
// every pooled connection.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedTenantAndPerson creates a tenant with one person and returns their IDs.
func seedTenantAndPerson(t *testing.T, db *sql.DB, tenantName, personName string) (int64, int64) {
	t.Helper()
	tenant, err := NewTenantStore(db).Create(tenantName, "secret-pw")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	person, err := NewPersonStore(db).Create(tenant.ID, personName, nil)
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	return tenant.ID, person.ID
}

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }
func strPtr(s string) *string { return &s }
