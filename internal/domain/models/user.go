package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role stored on a user record.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// User is the persistent user record as stored in Postgres. The password hash
// and the current refresh token never leave the repository/service layer;
// everything the route layer needs lives in Identity.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	Role         Role      `json:"role"`
	Confirmed    bool      `json:"confirmed"`
	IsActive     bool      `json:"is_active"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the authorization-relevant projection of a User. It is what the
// identity cache stores and what the access gate hands to route handlers.
// Keeping it separate from User keeps password hashes and refresh tokens out
// of the cache payload.
type Identity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Role      Role      `json:"role"`
	Confirmed bool      `json:"confirmed"`
	IsActive  bool      `json:"is_active"`
}

// IdentityOf builds the cacheable projection of a user record.
func IdentityOf(u *User) *Identity {
	return &Identity{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Avatar:    u.Avatar,
		Role:      u.Role,
		Confirmed: u.Confirmed,
		IsActive:  u.IsActive,
	}
}
