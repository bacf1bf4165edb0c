package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/poskeeper/internal/client/migrations"
	"github.com/dmitrijs2005/poskeeper/internal/dbx"
	"github.com/dmitrijs2005/poskeeper/internal/logging"

	_ "modernc.org/sqlite"
)

// FileName is the journal database inside the data directory.
const FileName = "sync-journal.db"

// RunMigrations brings the journal schema up to date.
func RunMigrations(ctx context.Context, db *sql.DB, log logging.Logger) error {
	return dbx.Migrate(ctx, db, migrations.Migrations, dbx.DialectSQLite, log)
}

// InitDatabase opens (creating if needed) the SQLite database at dsn and
// applies migrations.
func InitDatabase(ctx context.Context, dsn string, log logging.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// one writer; SQLite serializes anyway
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
