// Package common contains shared constants and sentinel errors used across
// classauth components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// RefreshTokenCookieName is the httpOnly cookie carrying the refresh token.
const RefreshTokenCookieName = "refresh_token"
