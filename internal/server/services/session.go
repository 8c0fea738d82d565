// Package services contains server-side business logic. This file implements
// SessionService, which handles login, single-use refresh-token rotation, and
// logout on top of the token codec, the secret hasher, and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkozyrev/classauth/internal/common"
	"github.com/dkozyrev/classauth/internal/dbx"
	"github.com/dkozyrev/classauth/internal/logging"
	"github.com/dkozyrev/classauth/internal/secrets"
	"github.com/dkozyrev/classauth/internal/server/auth"
	"github.com/dkozyrev/classauth/internal/server/config"
	"github.com/dkozyrev/classauth/internal/server/models"
	"github.com/dkozyrev/classauth/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned to a successfully authenticated caller.
type LoginResult struct {
	TokenPair
	Principal models.Summary
}

// SessionService drives the refresh-token lifecycle:
//   - Login: verify credentials and mint a token pair
//   - Refresh: rotate a presented refresh token (single use)
//   - Logout: revoke every active session of a principal
type SessionService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	access   *auth.Codec
	refresh  *auth.Codec
	hashCost int
	logger   logging.Logger
}

// NewSessionService constructs a SessionService using repositories and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *SessionService {
	return &SessionService{
		db:       db,
		repos:    m,
		access:   auth.NewCodec(cfg.AccessTokenSecret, cfg.AccessTokenValidityDuration),
		refresh:  auth.NewCodec(cfg.RefreshTokenSecret, cfg.RefreshTokenValidityDuration),
		hashCost: cfg.BcryptCost,
		logger:   l.With("module", "session_service"),
	}
}

// AccessCodec exposes the access-token codec for request authentication.
func (s *SessionService) AccessCodec() *auth.Codec {
	return s.access
}

// Login authenticates the principal identified by studentID and, on success,
// mints a token pair and persists the refresh record. An unknown student id
// and a wrong password both yield common.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, studentID, password string) (*LoginResult, error) {
	p, err := s.repos.Principals(s.db).GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !secrets.Verify([]byte(password), p.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.mintPair(ctx, s.db, p)
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "login", "principal_id", p.ID)
	return &LoginResult{TokenPair: *pair, Principal: p.Summary()}, nil
}

// Refresh rotates the presented refresh token. The token's signature is
// verified first; its hash is then matched concurrently against every
// non-revoked stored record of the claimed principal. The matched record is
// revoked (single use) and a fresh pair is minted within one transaction.
//
// Failure taxonomy: empty input → ErrMissingToken; lapsed signature →
// ErrRefreshTokenExpired; bad signature or malformed input → ErrInvalidToken;
// signature fine but no usable stored record (reuse after rotation, reuse
// after logout, record expiry, or losing a rotation race) →
// ErrInvalidOrExpiredToken.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := s.refresh.Verify(presented)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	candidates, err := s.repos.RefreshTokens(s.db).FindActiveByPrincipal(ctx, claims.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("error fetching candidate records: %w", err)
	}

	match := s.findUsableCandidate(ctx, presented, candidates)
	if match == nil {
		return nil, common.ErrInvalidOrExpiredToken
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		flipped, err := s.repos.RefreshTokens(tx).MarkRevoked(ctx, match.ID)
		if err != nil {
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
		if !flipped {
			// A concurrent rotation consumed this record first.
			return common.ErrInvalidOrExpiredToken
		}

		p, err := s.repos.Principals(tx).GetByID(ctx, claims.PrincipalID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidOrExpiredToken
			}
			return fmt.Errorf("error loading principal: %w", err)
		}

		pair, err = s.mintPair(ctx, tx, p)
		return err
	}); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "refresh token rotated", "principal_id", claims.PrincipalID)
	return pair, nil
}

// Logout revokes every active record of the principal hinted at by the
// presented token. The hint comes from an UNVERIFIED decode: a forged token
// can only trigger revocation for the principal id it names, whose secrets
// the forger does not hold. Logout is idempotent and succeeds with no token,
// an unparseable token, or nothing to revoke.
func (s *SessionService) Logout(ctx context.Context, presented string) error {
	if presented == "" {
		return nil
	}

	claims, err := auth.PeekClaims(presented)
	if err != nil || claims.PrincipalID == "" {
		return nil
	}

	if err := s.repos.RefreshTokens(s.db).RevokeAllForPrincipal(ctx, claims.PrincipalID); err != nil {
		s.logger.Error(ctx, "error revoking sessions", "error", err.Error())
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "logout", "principal_id", claims.PrincipalID)
	return nil
}

// findUsableCandidate tests the presented token against every candidate
// concurrently and returns the first one passing BOTH checks: the stored
// hash matches and the record's own expiry has not passed. A hash match on
// an expired record does not short-circuit; remaining candidates are still
// collected. Ties between simultaneously valid candidates (transient, under
// concurrent rotations) are resolved by whichever comparison finishes first.
func (s *SessionService) findUsableCandidate(ctx context.Context, presented string, candidates []*models.RefreshToken) *models.RefreshToken {
	if len(candidates) == 0 {
		return nil
	}

	now := time.Now()
	// Buffered so laggard goroutines never block after a winner is picked.
	results := make(chan *models.RefreshToken, len(candidates))

	for _, candidate := range candidates {
		go func(c *models.RefreshToken) {
			if secrets.Verify([]byte(presented), c.SecretHash) && c.ExpiresAt.After(now) {
				results <- c
				return
			}
			results <- nil
		}(candidate)
	}

	for range candidates {
		select {
		case <-ctx.Done():
			return nil
		case match := <-results:
			if match != nil {
				return match
			}
		}
	}
	return nil
}

// mintPair issues a fresh access+refresh pair for p and persists the hash of
// the refresh token's serialized form with the refresh TTL.
func (s *SessionService) mintPair(ctx context.Context, db dbx.DBTX, p *models.Principal) (*TokenPair, error) {
	accessToken, err := s.access.Issue(p.ID, p.StudentID, p.Role)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}

	refreshToken, err := s.refresh.Issue(p.ID, p.StudentID, p.Role)
	if err != nil {
		return nil, fmt.Errorf("error issuing refresh token: %w", err)
	}

	hash, err := secrets.Hash([]byte(refreshToken), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing refresh token: %w", err)
	}

	if _, err := s.repos.RefreshTokens(db).Create(ctx, p.ID, hash, s.refresh.TTL()); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
