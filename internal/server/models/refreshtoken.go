package models

import "time"

// RefreshToken is the persisted record of an issued refresh credential.
// SecretHash is a salted one-way hash of the token's signed serialized form;
// the plaintext token is never stored. Revoked is one-way: records flip
// false→true on rotation or logout and are never flipped back or deleted
// by the session core.
type RefreshToken struct {
	ID          string
	PrincipalID string
	SecretHash  []byte
	ExpiresAt   time.Time
	Revoked     bool
	CreatedAt   time.Time
}

// Usable reports whether the record can still back a rotation at time now.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
