package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Client talks to a running shell.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects lazily to target ("127.0.0.1:50061",
// "unix:/path/to.sock", ...). Extra options are appended to the defaults.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return mapError(c.conn.Invoke(ctx, fullMethod(method), in, out))
}

// mapError converts transport failures into common sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, st.Message())
	case codes.Internal:
		return fmt.Errorf("%w: %s", common.ErrInternal, st.Message())
	}
	return err
}

func (c *Client) SaveOfflineData(ctx context.Context, b models.Batch) (SaveResult, error) {
	var out SaveResult
	err := c.invoke(ctx, "SaveOfflineData", &b, &out)
	return out, err
}

func (c *Client) GetOfflineData(ctx context.Context) (DataResult, error) {
	var out DataResult
	err := c.invoke(ctx, "GetOfflineData", &Empty{}, &out)
	return out, err
}

func (c *Client) ClearOfflineData(ctx context.Context) (StatusResult, error) {
	var out StatusResult
	err := c.invoke(ctx, "ClearOfflineData", &Empty{}, &out)
	return out, err
}

func (c *Client) GetOfflineStats(ctx context.Context) (StatsResult, error) {
	var out StatsResult
	err := c.invoke(ctx, "GetOfflineStats", &Empty{}, &out)
	return out, err
}

func (c *Client) GetSettings(ctx context.Context) (SettingsResult, error) {
	var out SettingsResult
	err := c.invoke(ctx, "GetSettings", &Empty{}, &out)
	return out, err
}

func (c *Client) SaveSettings(ctx context.Context, s models.Settings) (SettingsResult, error) {
	var out SettingsResult
	err := c.invoke(ctx, "SaveSettings", &s, &out)
	return out, err
}

func (c *Client) ExportOfflineData(ctx context.Context, destination string) (ExportResult, error) {
	var out ExportResult
	err := c.invoke(ctx, "ExportOfflineData", &ExportRequest{Destination: destination}, &out)
	return out, err
}

func (c *Client) CheckConnection(ctx context.Context) (ConnectionResult, error) {
	var out ConnectionResult
	err := c.invoke(ctx, "CheckConnection", &Empty{}, &out)
	return out, err
}

func (c *Client) MarkSynced(ctx context.Context, refs []models.PendingRef) (MarkSyncedResult, error) {
	var out MarkSyncedResult
	err := c.invoke(ctx, "MarkSynced", &MarkSyncedRequest{Refs: refs}, &out)
	return out, err
}

func (c *Client) RecordSyncAttempt(ctx context.Context, a models.SyncAttempt) (AttemptResult, error) {
	var out AttemptResult
	err := c.invoke(ctx, "RecordSyncAttempt", &a, &out)
	return out, err
}

func (c *Client) ListSyncAttempts(ctx context.Context, limit int) (JournalResult, error) {
	var out JournalResult
	err := c.invoke(ctx, "ListSyncAttempts", &ListAttemptsRequest{Limit: limit}, &out)
	return out, err
}

// Events calls fn for every notification until ctx is done or the shell
// closes the stream. A clean end returns nil.
func (c *Client) Events(ctx context.Context, fn func(Notification)) error {
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], fullMethod(eventsMethod))
	if err != nil {
		return mapError(err)
	}
	if err := stream.SendMsg(&Empty{}); err != nil {
		return mapError(err)
	}
	if err := stream.CloseSend(); err != nil {
		return mapError(err)
	}

	for {
		var n Notification
		if err := stream.RecvMsg(&n); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return mapError(err)
		}
		fn(n)
	}
}
