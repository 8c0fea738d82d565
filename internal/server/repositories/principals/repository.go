// Package principals declares the repository contract for principal records.
package principals

import (
	"context"

	"github.com/dkozyrev/classauth/internal/server/models"
)

// Repository defines persistence operations for principals. Rows are created
// at provisioning time and never mutated by the session core.
type Repository interface {
	// Create inserts a new principal and returns it with its generated id.
	// A duplicate student id yields common.ErrAlreadyExists.
	Create(ctx context.Context, p *models.Principal) (*models.Principal, error)

	// GetByStudentID returns the principal with the given student id, or
	// common.ErrorNotFound.
	GetByStudentID(ctx context.Context, studentID string) (*models.Principal, error)

	// GetByID returns the principal with the given record id, or
	// common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Principal, error)
}
