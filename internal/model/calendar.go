package model

import "time"

// CalendarSettings holds a tenant's Google Calendar connection. Tokens are
// never serialized; SelectedCalendars is a comma-separated ID list.
type CalendarSettings struct {
	ID                int64     `json:"id"`
	TenantID          int64     `json:"tenant_id"`
	AccessToken       string    `json:"-"`
	RefreshToken      string    `json:"-"`
	TokenExpiry       time.Time `json:"-"`
	SelectedCalendars string    `json:"selected_calendars"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
