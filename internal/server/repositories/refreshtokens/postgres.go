package refreshtokens

import (
	"context"
	"fmt"
	"time"

	"github.com/dkozyrev/classauth/internal/dbx"
	"github.com/dkozyrev/classauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, principalID string, secretHash []byte, validity time.Duration) (*models.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (principal_id, secret_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	record := &models.RefreshToken{
		PrincipalID: principalID,
		SecretHash:  secretHash,
		ExpiresAt:   time.Now().Add(validity),
	}
	err := r.db.QueryRowContext(ctx, query,
		record.PrincipalID, record.SecretHash, record.ExpiresAt).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return record, nil
}

func (r *PostgresRepository) FindActiveByPrincipal(ctx context.Context, principalID string) ([]*models.RefreshToken, error) {
	query := `
		SELECT id, principal_id, secret_hash, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE principal_id = $1 AND NOT revoked
	`
	rows, err := r.db.QueryContext(ctx, query, principalID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var records []*models.RefreshToken
	for rows.Next() {
		record := &models.RefreshToken{}
		if err := rows.Scan(&record.ID, &record.PrincipalID, &record.SecretHash,
			&record.ExpiresAt, &record.Revoked, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return records, nil
}

// MarkRevoked is conditional on the record not being revoked yet, so that of
// two racing rotations exactly one observes the flip.
func (r *PostgresRepository) MarkRevoked(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE id = $1 AND NOT revoked
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}

func (r *PostgresRepository) RevokeAllForPrincipal(ctx context.Context, principalID string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE principal_id = $1 AND NOT revoked
	`
	if _, err := r.db.ExecContext(ctx, query, principalID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
