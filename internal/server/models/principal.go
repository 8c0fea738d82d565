// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role is the closed set of authorization roles a principal can carry.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Principal is an authenticated identity. Rows are created at provisioning
// time and are read-only from the session core's perspective.
type Principal struct {
	ID           string
	StudentID    string
	Username     string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}

// Summary is the minimal principal view returned to callers on login.
type Summary struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
}

// Summary returns the external view of p.
func (p *Principal) Summary() Summary {
	return Summary{ID: p.ID, StudentID: p.StudentID, Username: p.Username, Role: p.Role}
}
