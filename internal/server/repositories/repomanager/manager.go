package repomanager

import (
	"context"
	"database/sql"

	"github.com/mviktors/minichat/internal/dbx"
	"github.com/mviktors/minichat/internal/server/repositories/msgs"
	"github.com/mviktors/minichat/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX and owns schema
// migrations. Services bind repositories to the transaction handle they get
// from dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Msgs(db dbx.DBTX) msgs.Repository
}
