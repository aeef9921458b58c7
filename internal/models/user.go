package models

import "time"

// UserRole represents the available roles.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	NIM          string    `db:"nim" json:"nim"`
	DOB          time.Time `db:"dob" json:"dob"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserWithRequestCount joins a user with the number of requests they own.
type UserWithRequestCount struct {
	User
	RequestCount int `db:"request_count" json:"request_count"`
}

// UserStats aggregates counters for the admin dashboard.
type UserStats struct {
	TotalUsers        int `json:"total_users"`
	TotalRequests     int `json:"total_requests"`
	PendingRequests   int `json:"pending_requests"`
	CompletedRequests int `json:"completed_requests"`
}
