package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkozyrev/classauth/internal/common"
	"github.com/dkozyrev/classauth/internal/secrets"
	"github.com/dkozyrev/classauth/internal/server/config"
	"github.com/dkozyrev/classauth/internal/server/models"
	"github.com/dkozyrev/classauth/internal/server/repositories/repomanager"
)

// PrincipalService handles account provisioning. It is exercised by the
// provisioning CLI, not by the public HTTP surface.
type PrincipalService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	hashCost int
}

func NewPrincipalService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *PrincipalService {
	return &PrincipalService{db: db, repos: m, hashCost: cfg.BcryptCost}
}

// Register creates a principal with a salted one-way hash of password.
// A duplicate student id yields common.ErrAlreadyExists.
func (s *PrincipalService) Register(ctx context.Context, studentID, username, password string, role models.Role) (*models.Principal, error) {
	if studentID == "" || username == "" || password == "" {
		return nil, errors.New("student id, username and password are required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := secrets.Hash([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	p, err := s.repos.Principals(s.db).Create(ctx, &models.Principal{
		StudentID:    studentID,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating principal: %w", err)
	}
	return p, nil
}
