package models

import "time"

// AuthSession is the opaque token pair issued by the identity provider,
// plus the identity it belongs to. It is persisted locally so the CLI can
// resume an authenticated state across restarts.
type AuthSession struct {
	// AccessToken is the bearer credential sent on every remote call.
	AccessToken string `json:"access_token"`

	// RefreshToken replaces the pair when the access token expires.
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the absolute expiry of the access token, in UTC.
	ExpiresAt time.Time `json:"expires_at"`

	// UserID is the provider-issued opaque user identifier.
	UserID string `json:"user_id"`

	// Email is the address the session was issued for.
	Email string `json:"email"`
}

// Valid reports whether the session can still be used at the given instant.
// An expired session is treated identically to no session at all.
func (s *AuthSession) Valid(now time.Time) bool {
	return s != nil && s.AccessToken != "" && now.Before(s.ExpiresAt)
}
