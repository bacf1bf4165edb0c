// Package syncer reconciles the shell's cache with the backend on behalf of
// the terminal UI.
//
// One run walks the states offline_caching -> sync_attempting -> synced (or
// failed): it reads the pending records from the shell, pushes them, asks
// the shell to drop the references the backend confirmed and reports each
// transition to the shell's sync journal.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/client/ipc"
	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
)

var (
	ErrInProgress    = errors.New("sync already in progress")
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrOffline       = errors.New("offline")
	ErrShellRejected = errors.New("shell rejected request")
)

// Shell is the part of the IPC client the syncer needs.
type Shell interface {
	GetOfflineData(ctx context.Context) (ipc.DataResult, error)
	GetSettings(ctx context.Context) (ipc.SettingsResult, error)
	CheckConnection(ctx context.Context) (ipc.ConnectionResult, error)
	MarkSynced(ctx context.Context, refs []models.PendingRef) (ipc.MarkSyncedResult, error)
	RecordSyncAttempt(ctx context.Context, a models.SyncAttempt) (ipc.AttemptResult, error)
}

// Backend is the part of the remote client the syncer needs.
type Backend interface {
	Push(ctx context.Context, b models.Batch) (shared.SyncResponse, error)
	LoggedIn() bool
}

// Report summarizes one run.
type Report struct {
	AttemptID    string
	Pushed       int
	Acknowledged int
	Remaining    int
}

type Syncer struct {
	shell   Shell
	backend Backend
	log     logging.Logger
	now     func() time.Time
	running sync.Mutex
}

func New(shell Shell, backend Backend, log logging.Logger) *Syncer {
	return &Syncer{shell: shell, backend: backend, log: log.With("module", "syncer"), now: time.Now}
}

// Run performs one reconciliation. It fails fast with ErrInProgress when
// another run is active.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	if !s.running.TryLock() {
		return Report{}, ErrInProgress
	}
	defer s.running.Unlock()

	if !s.backend.LoggedIn() {
		return Report{}, ErrNotLoggedIn
	}

	attempt := s.record(ctx, models.SyncAttempt{State: models.StateSyncAttempting, StartedAt: s.now().UTC()})
	rep := Report{AttemptID: attempt.ID}

	fail := func(err error) (Report, error) {
		attempt.State = models.StateFailed
		attempt.Error = err.Error()
		s.record(ctx, attempt)
		s.log.Warn(ctx, "sync failed", "error", err)
		return rep, err
	}

	data, err := s.shell.GetOfflineData(ctx)
	if err != nil {
		return fail(err)
	}
	if !data.Success || data.Data == nil {
		return fail(fmt.Errorf("%w: %s", ErrShellRejected, data.Message))
	}

	batch := data.Data.Pending()
	if batch.IsEmpty() {
		attempt.State = models.StateSynced
		s.record(ctx, attempt)
		s.log.Info(ctx, "nothing to sync")
		return rep, nil
	}

	resp, err := s.backend.Push(ctx, batch)
	if err != nil {
		return fail(err)
	}
	rep.Pushed = batch.Counts().Total()

	ack, err := s.shell.MarkSynced(ctx, resp.Refs)
	if err != nil {
		return fail(err)
	}
	if !ack.Success {
		return fail(fmt.Errorf("%w: %s", ErrShellRejected, ack.Message))
	}
	if ack.Counts != nil {
		rep.Acknowledged = ack.Counts.Removed
		rep.Remaining = ack.Counts.Remaining
	}

	attempt.State = models.StateSynced
	attempt.Pushed = rep.Pushed
	s.record(ctx, attempt)

	s.log.Info(ctx, "sync finished", "pushed", rep.Pushed, "acknowledged", rep.Acknowledged, "remaining", rep.Remaining)
	return rep, nil
}

// OnAutoSync handles one auto-sync notification. It syncs only when the
// settings enable auto-sync, the network is reachable and an operator is
// logged in; otherwise it returns the reason it skipped.
func (s *Syncer) OnAutoSync(ctx context.Context) (Report, error) {
	set, err := s.shell.GetSettings(ctx)
	if err != nil {
		return Report{}, err
	}
	if set.Settings != nil && !set.Settings.AutoSync {
		return Report{}, nil
	}

	conn, err := s.shell.CheckConnection(ctx)
	if err != nil {
		return Report{}, err
	}
	if !conn.Online {
		s.log.Debug(ctx, "auto-sync skipped, offline")
		return Report{}, ErrOffline
	}

	return s.Run(ctx)
}

// record reports a to the journal. Journal failures are logged and do not
// stop the run; the returned attempt keeps its id for later updates.
func (s *Syncer) record(ctx context.Context, a models.SyncAttempt) models.SyncAttempt {
	res, err := s.shell.RecordSyncAttempt(ctx, a)
	switch {
	case err != nil:
		s.log.Warn(ctx, "journal unavailable", "error", err)
	case !res.Success || res.Attempt == nil:
		s.log.Warn(ctx, "journal rejected attempt", "message", res.Message)
	default:
		return *res.Attempt
	}
	return a
}
