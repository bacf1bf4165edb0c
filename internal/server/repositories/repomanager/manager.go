package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/poskeeper/internal/dbx"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/records"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle or transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
}
