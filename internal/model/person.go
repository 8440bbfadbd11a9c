package model

import "time"

// Person is a member of a tenant. PointGoal is an optional monthly target
// used for prorated progress.
type Person struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color"`
	PointGoal *int      `json:"point_goal"`
	TenantID  int64     `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PersonWithPoints annotates a Person with their point total for the
// current month, as computed for the person list.
type PersonWithPoints struct {
	Person
	CurrentMonthPoints int `json:"current_month_points"`
}
