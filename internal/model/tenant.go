package model

import "time"

// Tenant is an isolated account (e.g. a family) owning people and tasks.
// PasswordHash is never serialized.
type Tenant struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
