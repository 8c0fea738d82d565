// Package auth implements the signed token codec: creation and verification
// of self-describing, time-bounded JWTs carrying the principal claim set.
//
// Two independent codecs are constructed from two independent secrets, one
// for access tokens and one for refresh tokens. A token signed with one key
// never verifies under the other.
package auth

import (
	"errors"
	"time"

	"github.com/dkozyrev/classauth/internal/common"
	"github.com/dkozyrev/classauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the claim set carried by both access and refresh tokens.
// The jti registered claim is a fresh uuid per token, so two tokens issued
// within the same second are never byte-identical.
type Claims struct {
	jwt.RegisteredClaims
	PrincipalID string      `json:"pid"`
	StudentID   string      `json:"sid"`
	Role        models.Role `json:"role"`
}

// Codec signs and verifies tokens with a single HMAC key and TTL.
type Codec struct {
	key []byte
	ttl time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{key: []byte(secret), ttl: ttl}
}

// TTL returns the lifetime applied to issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue mints a signed HS256 token for the given principal, valid for the
// codec's TTL from now.
func (c *Codec) Issue(principalID, studentID string, role models.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		PrincipalID: principalID,
		StudentID:   studentID,
		Role:        role,
	})

	return token.SignedString(c.key)
}

// Verify checks the token's signature and embedded expiry and returns its
// claims. An elapsed expiry yields common.ErrTokenExpired; any other failure
// (bad signature, malformed input, wrong signing method) yields
// common.ErrInvalidToken. The two are distinct so callers can map an expired
// refresh token to a forced re-login rather than a generic rejection.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// PeekClaims parses the token WITHOUT verifying its signature and returns
// whatever claims it carries. It must never be used to authorize anything;
// its only caller is logout, which uses the principal id as a best-effort
// revocation hint.
func PeekClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
