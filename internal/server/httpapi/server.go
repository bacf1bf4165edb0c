// Package httpapi serves the backend's JSON API: health, token issue, batch
// push and record listing. Push and listing require a bearer token.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	clientmodels "github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
)

const shutdownTimeout = 5 * time.Second

type UserService interface {
	Login(ctx context.Context, userName, password string) (string, time.Duration, error)
}

type SyncService interface {
	Push(ctx context.Context, userID string, batch clientmodels.Batch) (*shared.SyncResponse, error)
	Records(ctx context.Context, recordType string) ([]shared.StoredRecord, error)
}

type HTTPServer struct {
	address   string
	users     UserService
	batches   SyncService
	logger    logging.Logger
	jwtSecret []byte
}

func NewHTTPServer(address string, l logging.Logger, us UserService, ss SyncService, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		batches:   ss,
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the handler chain.
func (s *HTTPServer) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+shared.PathHealth, s.health)
	mux.HandleFunc("POST "+shared.PathToken, s.token)
	mux.HandleFunc("POST "+shared.PathSync, s.requireAuth(s.pushBatch))
	mux.HandleFunc("GET "+shared.PathRecords, s.requireAuth(s.listRecords))

	return s.recovery(s.logging(mux))
}

// Run listens on the configured address until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is done, then shuts down
// gracefully.
func (s *HTTPServer) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
