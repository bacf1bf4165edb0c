// Package attempts stores the local sync journal: one row per reconciliation
// attempt driven by the terminal UI.
//
// SQLiteRepository works over a dbx.DBTX, so it can run on a *sql.DB or
// inside a transaction opened with dbx.WithTx. Timestamps are stored as Unix
// milliseconds (UTC).
//
//	repo := attempts.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, a)
//	recent, _ := repo.List(ctx, 20)
package attempts
