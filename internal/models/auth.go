package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the JWT payload for session tokens. It deliberately carries
// only the user identifier: the role is re-read from storage on every call so
// a role change takes effect immediately.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// UserInfo is the public projection of a user, never including the hash.
type UserInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// PublicInfo derives the public projection from a stored user.
func (u *User) PublicInfo() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
