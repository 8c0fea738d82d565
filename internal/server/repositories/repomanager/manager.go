// Package repomanager wires repository constructors together behind a single
// interface, so services can obtain repositories bound to either a plain
// connection or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkozyrev/classauth/internal/dbx"
	"github.com/dkozyrev/classauth/internal/server/repositories/principals"
	"github.com/dkozyrev/classauth/internal/server/repositories/refreshtokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Principals(db dbx.DBTX) principals.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
