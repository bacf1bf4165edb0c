package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/client/ipc"
	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/client/syncer"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds one backend health check of the status watcher.
const pingTimeout = 3 * time.Second

// eventsRetry is the pause before reopening a dropped Events stream.
const eventsRetry = 2 * time.Second

// Shell is the IPC surface of the desktop shell used by the terminal UI.
type Shell interface {
	syncer.Shell
	SaveOfflineData(ctx context.Context, b models.Batch) (ipc.SaveResult, error)
	ClearOfflineData(ctx context.Context) (ipc.StatusResult, error)
	GetOfflineStats(ctx context.Context) (ipc.StatsResult, error)
	SaveSettings(ctx context.Context, s models.Settings) (ipc.SettingsResult, error)
	ExportOfflineData(ctx context.Context, destination string) (ipc.ExportResult, error)
	ListSyncAttempts(ctx context.Context, limit int) (ipc.JournalResult, error)
	Events(ctx context.Context, fn func(ipc.Notification)) error
}

// Backend is the remote POS API.
type Backend interface {
	syncer.Backend
	Login(ctx context.Context, username, password string) error
	Ping(ctx context.Context) error
}

type App struct {
	shell    Shell
	backend  Backend
	syncer   *syncer.Syncer
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time
	userName string

	mu   sync.Mutex
	mode Mode
}

func NewApp(shell Shell, backend Backend, userName string, log logging.Logger) *App {
	return &App{
		shell:    shell,
		backend:  backend,
		syncer:   syncer.New(shell, backend, log),
		log:      log.With("module", "cli"),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		now:      time.Now,
		userName: userName,
		mode:     ModeOffline,
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.printf("Switched to %s mode\n", mode)
	}
}

// printf serializes output of the REPL and background goroutines.
func (a *App) printf(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) isLoggedIn() bool {
	return a.backend.LoggedIn()
}

// Run starts the background watchers and blocks in the REPL until the user
// exits or stdin closes.
func (a *App) Run(ctx context.Context, onlineCheckInterval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Root(ctx, onlineCheckInterval)
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// mode accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.backend.Ping(ctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// WatchEvents follows the shell's notification stream and runs an auto-sync
// for every auto-sync tick. A dropped stream is reopened until ctx is done.
func (a *App) WatchEvents(ctx context.Context) {
	for {
		err := a.shell.Events(ctx, func(n ipc.Notification) {
			if n.Channel == ipc.ChannelAutoSync {
				a.autoSync(ctx)
			}
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			a.log.Debug(ctx, "events stream closed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(eventsRetry):
		}
	}
}

func (a *App) autoSync(ctx context.Context) {
	rep, err := a.syncer.OnAutoSync(ctx)
	switch {
	case err != nil:
		a.log.Info(ctx, "auto-sync skipped", "reason", err)
	case rep.Pushed > 0:
		a.printf("\nAuto-sync: pushed %d record(s), %d pending\n", rep.Pushed, rep.Remaining)
	}
}
