package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/juniperhall/taskpoints/internal/model"
)

// CalendarSettingsStore persists per-tenant Google Calendar connections.
type CalendarSettingsStore struct {
	db *sql.DB
}

func NewCalendarSettingsStore(db *sql.DB) *CalendarSettingsStore {
	return &CalendarSettingsStore{db: db}
}

const calendarCols = `id, tenant_id, access_token, refresh_token, token_expiry, selected_calendars, created_at, updated_at`

func scanCalendarSettings(scanner interface{ Scan(...any) error }) (*model.CalendarSettings, error) {
	var cs model.CalendarSettings
	err := scanner.Scan(
		&cs.ID, &cs.TenantID, &cs.AccessToken, &cs.RefreshToken,
		&cs.TokenExpiry, &cs.SelectedCalendars, &cs.CreatedAt, &cs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (s *CalendarSettingsStore) GetByTenant(tenantID int64) (*model.CalendarSettings, error) {
	row := s.db.QueryRow(`SELECT `+calendarCols+` FROM calendar_settings WHERE tenant_id = ?`, tenantID)
	cs, err := scanCalendarSettings(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar settings: %w", err)
	}
	return cs, nil
}

// SaveTokens stores a fresh token set for the tenant, creating the row on
// first connect.
func (s *CalendarSettingsStore) SaveTokens(tenantID int64, accessToken, refreshToken string, expiry time.Time) (*model.CalendarSettings, error) {
	_, err := s.db.Exec(`
		INSERT INTO calendar_settings (tenant_id, access_token, refresh_token, token_expiry)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (tenant_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token != '' THEN excluded.refresh_token ELSE refresh_token END,
			token_expiry = excluded.token_expiry,
			updated_at = CURRENT_TIMESTAMP`,
		tenantID, accessToken, refreshToken, expiry.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("save calendar tokens: %w", err)
	}
	return s.GetByTenant(tenantID)
}

// UpdateSelectedCalendars stores the comma-separated calendar ID list.
func (s *CalendarSettingsStore) UpdateSelectedCalendars(tenantID int64, calendarIDs string) error {
	result, err := s.db.Exec(
		`UPDATE calendar_settings SET selected_calendars = ?, updated_at = CURRENT_TIMESTAMP WHERE tenant_id = ?`,
		calendarIDs, tenantID,
	)
	if err != nil {
		return fmt.Errorf("update selected calendars: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("calendar settings for tenant %d: %w", tenantID, ErrNotFound)
	}
	return nil
}

// Delete disconnects the tenant's calendar.
func (s *CalendarSettingsStore) Delete(tenantID int64) error {
	_, err := s.db.Exec(`DELETE FROM calendar_settings WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return fmt.Errorf("delete calendar settings: %w", err)
	}
	return nil
}
