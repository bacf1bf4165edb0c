// Package server wires the backend: PostgreSQL store, migrations, operator
// bootstrap, optional S3 archive and the JSON API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/server/archive"
	"github.com/dmitrijs2005/poskeeper/internal/server/config"
	"github.com/dmitrijs2005/poskeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/poskeeper/internal/server/services"
)

// openDB is a seam for tests.
var openDB = repomanager.OpenDB

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	syncService *services.SyncService
	server      *httpapi.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager(logger))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(db, rm, c)
	if c.OperatorUser != "" && c.OperatorPassword != "" {
		created, err := us.EnsureOperator(ctx, c.OperatorUser, c.OperatorPassword)
		if err != nil {
			return nil, fmt.Errorf("operator init error: %w", err)
		}
		if created {
			logger.Info(ctx, "operator account created", "username", c.OperatorUser)
		}
	}

	var arch services.Archiver
	if c.ArchiveEnabled() {
		a, err := archive.NewS3Archive(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		arch = a
		logger.Info(ctx, "batch archive enabled", "bucket", c.S3Bucket)
	}

	ss := services.NewSyncService(db, rm, arch, logger)
	srv := httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, us, ss, c.SecretKey)

	return &App{config: c, logger: logger, db: db, userService: us, syncService: ss, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close error", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
