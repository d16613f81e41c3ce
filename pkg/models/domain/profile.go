package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Profile is the resolved session actor. ID matches the auth subject id.
// Admins see and manage every profile; staff see only themselves.
type Profile struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	CreatedAt   time.Time
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Session is the authenticated state handed out by the auth gateway.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}
