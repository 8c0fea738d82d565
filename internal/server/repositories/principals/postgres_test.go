package principals

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkozyrev/classauth/internal/common"
	"github.com/dkozyrev/classauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+principals\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`

	created := time.Now()
	mock.ExpectQuery(q).
		WithArgs("s12345", "alice", []byte("hash"), models.RoleStudent).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p1", created))

	got, err := repo.Create(context.Background(), &models.Principal{
		StudentID:    "s12345",
		Username:     "alice",
		PasswordHash: []byte("hash"),
		Role:         models.RoleStudent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "p1" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected principal: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateStudentID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+principals\b`

	mock.ExpectQuery(q).
		WithArgs("s12345", "alice", []byte("hash"), models.RoleStudent).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	_, err := repo.Create(context.Background(), &models.Principal{
		StudentID:    "s12345",
		Username:     "alice",
		PasswordHash: []byte("hash"),
		Role:         models.RoleStudent,
	})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("want common.ErrAlreadyExists, got %v", err)
	}
}

func TestGetByStudentID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*student_id,\s*username,\s*password_hash,\s*role,\s*created_at\s+FROM\s+principals\s+WHERE\s+student_id\s*=\s*\$1\s*$`

	created := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "username", "password_hash", "role", "created_at"}).
		AddRow("p1", "s12345", "alice", []byte("hash"), "student", created)

	mock.ExpectQuery(q).WithArgs("s12345").WillReturnRows(rows)

	got, err := repo.GetByStudentID(context.Background(), "s12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "p1" || got.Username != "alice" || got.Role != models.RoleStudent {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestGetByStudentID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\b.*FROM\s+principals\s+WHERE\s+student_id\b`

	mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByStudentID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\b.*FROM\s+principals\s+WHERE\s+id\b`

	mock.ExpectQuery(q).WithArgs("p-missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "p-missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\b.*FROM\s+principals\s+WHERE\s+id\b`

	mock.ExpectQuery(q).WithArgs("p1").WillReturnError(errors.New("db down"))

	if _, err := repo.GetByID(context.Background(), "p1"); err == nil {
		t.Fatal("expected wrapped db error")
	}
}
