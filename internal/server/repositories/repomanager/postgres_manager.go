// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/dmitrijs2005/poskeeper/internal/dbx"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/server/migrations"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/records"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/users"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	log logging.Logger
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return records.NewPostgresRepository(db)
}

// migrate is a seam for testing dbx.Migrate.
var migrate = func(ctx context.Context, db *sql.DB, fsys fs.FS, dialect string, log logging.Logger) error {
	return dbx.Migrate(ctx, db, fsys, dialect, log)
}

// RunMigrations applies the embedded backend schema.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, migrations.Migrations, dbx.DialectPostgres, m.log)
}

func NewPostgresRepositoryManager(log logging.Logger) RepositoryManager {
	return &PostgresRepositoryManager{log: log}
}

// OpenDB opens the PostgreSQL database at dsn and checks the connection.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
