package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/client/scheduler"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"google.golang.org/grpc"
)

// DefaultAddr is the loopback address the shell listens on.
const DefaultAddr = "127.0.0.1:50061"

// unixPrefix selects a unix socket listener, e.g. "unix:/run/poskeeper.sock".
const unixPrefix = "unix:"

// EventSource feeds the Events stream.
type EventSource interface {
	Subscribe() (<-chan scheduler.Event, func())
}

type GRPCServer struct {
	address string
	handler *Handler
	events  EventSource
	logger  logging.Logger

	stopOnce sync.Once
	stopping chan struct{}
}

var _ ShellServer = (*GRPCServer)(nil)

func NewGRPCServer(address string, h *Handler, events EventSource, l logging.Logger) *GRPCServer {
	return &GRPCServer{
		address:  address,
		handler:  h,
		events:   events,
		logger:   l.With("module", "ipc_server"),
		stopping: make(chan struct{}),
	}
}

// Listen opens the configured address. A stale unix socket file is removed
// first.
func (s *GRPCServer) Listen() (net.Listener, error) {
	if path, ok := strings.CutPrefix(s.address, unixPrefix); ok {
		path = strings.TrimPrefix(path, "//")
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
		return net.Listen("unix", path)
	}
	return net.Listen("tcp", s.address)
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoveryInterceptor, s.loggingInterceptor))
	srv.RegisterService(&ServiceDesc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping IPC server...")
		s.stopOnce.Do(func() { close(s.stopping) })
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting IPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *GRPCServer) SaveOfflineData(ctx context.Context, in *models.Batch) (*SaveResult, error) {
	r := s.handler.SaveOfflineData(ctx, *in)
	return &r, nil
}

func (s *GRPCServer) GetOfflineData(ctx context.Context, _ *Empty) (*DataResult, error) {
	r := s.handler.GetOfflineData(ctx)
	return &r, nil
}

func (s *GRPCServer) ClearOfflineData(ctx context.Context, _ *Empty) (*StatusResult, error) {
	r := s.handler.ClearOfflineData(ctx)
	return &r, nil
}

func (s *GRPCServer) GetOfflineStats(ctx context.Context, _ *Empty) (*StatsResult, error) {
	r := s.handler.GetOfflineStats(ctx)
	return &r, nil
}

func (s *GRPCServer) GetSettings(ctx context.Context, _ *Empty) (*SettingsResult, error) {
	r := s.handler.GetSettings(ctx)
	return &r, nil
}

func (s *GRPCServer) SaveSettings(ctx context.Context, in *models.Settings) (*SettingsResult, error) {
	r := s.handler.SaveSettings(ctx, *in)
	return &r, nil
}

func (s *GRPCServer) ExportOfflineData(ctx context.Context, in *ExportRequest) (*ExportResult, error) {
	r := s.handler.ExportOfflineData(ctx, *in)
	return &r, nil
}

func (s *GRPCServer) CheckConnection(ctx context.Context, _ *Empty) (*ConnectionResult, error) {
	r := s.handler.CheckConnection(ctx)
	return &r, nil
}

func (s *GRPCServer) MarkSynced(ctx context.Context, in *MarkSyncedRequest) (*MarkSyncedResult, error) {
	r := s.handler.MarkSynced(ctx, *in)
	return &r, nil
}

func (s *GRPCServer) RecordSyncAttempt(ctx context.Context, in *models.SyncAttempt) (*AttemptResult, error) {
	r := s.handler.RecordSyncAttempt(ctx, *in)
	return &r, nil
}

func (s *GRPCServer) ListSyncAttempts(ctx context.Context, in *ListAttemptsRequest) (*JournalResult, error) {
	r := s.handler.ListSyncAttempts(ctx, *in)
	return &r, nil
}

// Events forwards auto-sync ticks until the client goes away or the server
// shuts down.
func (s *GRPCServer) Events(_ *Empty, stream grpc.ServerStream) error {
	ctx := stream.Context()
	if s.events == nil {
		<-ctx.Done()
		return nil
	}

	ch, cancel := s.events.Subscribe()
	defer cancel()
	s.logger.Debug(ctx, "UI subscribed to events")

	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.SendMsg(&Notification{Channel: ChannelAutoSync}); err != nil {
				return err
			}
		case <-s.stopping:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
