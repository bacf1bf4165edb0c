// Package shell wires the desktop shell: the durable cache, the settings
// store, the sync journal, the auto-sync timer and the IPC server.
package shell

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/client/config"
	"github.com/dmitrijs2005/poskeeper/internal/client/ipc"
	"github.com/dmitrijs2005/poskeeper/internal/client/journal"
	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/client/scheduler"
	"github.com/dmitrijs2005/poskeeper/internal/client/services"
	"github.com/dmitrijs2005/poskeeper/internal/client/store"
	"github.com/dmitrijs2005/poskeeper/internal/filex"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/netx"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	offline  services.OfflineService
	settings services.SettingsService
	journal  *journal.Journal
	ticker   *scheduler.Ticker
	server   *ipc.GRPCServer
}

// NewApp opens the stores under c.DataDir. A sync journal that cannot be
// opened is logged and left out; the cache keeps working without it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := filex.EnsureDir(c.DataDir); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	docs := store.NewJSONStore(c.DocumentPath(), models.NewCacheDocument, logger)
	prefs := store.NewJSONStore(c.SettingsPath(), models.DefaultSettings, logger)

	offline := services.NewOfflineService(docs, time.Now, c.ExportDir, logger)
	settings := services.NewSettingsService(prefs, logger)

	app := &App{config: c, logger: logger, offline: offline, settings: settings}

	var j ipc.Journal
	if jr, err := journal.Open(ctx, c.JournalPath(), logger); err != nil {
		logger.Warn(ctx, "sync journal disabled", "path", c.JournalPath(), "error", err)
	} else {
		app.journal = jr
		j = jr
	}

	httpClient := &http.Client{}
	check := func(ctx context.Context) bool {
		return netx.CheckConnectivity(ctx, httpClient, c.CheckURL, c.CheckTimeout)
	}

	app.ticker = scheduler.NewTicker(settings.Get(ctx).Interval(), logger)
	handler := ipc.NewHandler(offline, settings, j, check, logger)
	app.server = ipc.NewGRPCServer(c.IPCAddr, handler, app.ticker, logger)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		if _, ok := <-sigs; ok {
			cancelFunc()
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(sigs)
	}
}

// applySettings keeps the auto-sync timer in line with s.
func (app *App) applySettings(ctx context.Context, s models.Settings) {
	if !s.AutoSync {
		app.ticker.Stop()
		return
	}
	app.ticker.Reset(ctx, s.Interval())
	app.ticker.Start(ctx)
}

// Run serves IPC until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	app.logger.Info(ctx, "Starting shell...", "dataDir", app.config.DataDir, "ipc", app.config.IPCAddr)

	app.applySettings(ctx, app.settings.Get(ctx))
	app.settings.Subscribe(func(s models.Settings) { app.applySettings(ctx, s) })

	var (
		wg     sync.WaitGroup
		runErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
			cancelFunc()
		}
	}()
	wg.Wait()

	app.ticker.Stop()
	if app.journal != nil {
		if err := app.journal.Close(); err != nil {
			app.logger.Warn(context.Background(), "close journal", "error", err)
		}
	}
	app.logger.Info(context.Background(), "shell stopped")
	return runErr
}
