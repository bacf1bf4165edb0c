package ipc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const ServiceName = "poskeeper.ipc.v1.Shell"

// ShellServer is the gRPC face of Handler.
type ShellServer interface {
	SaveOfflineData(context.Context, *models.Batch) (*SaveResult, error)
	GetOfflineData(context.Context, *Empty) (*DataResult, error)
	ClearOfflineData(context.Context, *Empty) (*StatusResult, error)
	GetOfflineStats(context.Context, *Empty) (*StatsResult, error)
	GetSettings(context.Context, *Empty) (*SettingsResult, error)
	SaveSettings(context.Context, *models.Settings) (*SettingsResult, error)
	ExportOfflineData(context.Context, *ExportRequest) (*ExportResult, error)
	CheckConnection(context.Context, *Empty) (*ConnectionResult, error)
	MarkSynced(context.Context, *MarkSyncedRequest) (*MarkSyncedResult, error)
	RecordSyncAttempt(context.Context, *models.SyncAttempt) (*AttemptResult, error)
	ListSyncAttempts(context.Context, *ListAttemptsRequest) (*JournalResult, error)
	Events(*Empty, grpc.ServerStream) error
}

// channelOf maps full RPC method names to UI channel names.
var channelOf = map[string]string{}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary builds a method descriptor. A request that does not decode is
// answered with fail's result instead of a transport error, the same way the
// handler reports its own failures.
func unary[Req, Resp any](name, channel string, call func(ShellServer, context.Context, *Req) (*Resp, error), fail func(msg string) *Resp) grpc.MethodDesc {
	channelOf[fullMethod(name)] = channel
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return fail(fmt.Sprintf("invalid %s request: %s", channel, status.Convert(err).Message())), nil
			}
			if interceptor == nil {
				return call(srv.(ShellServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ShellServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

const eventsMethod = "Events"

// ServiceDesc describes the Shell service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShellServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SaveOfflineData", ChannelSaveOfflineData, ShellServer.SaveOfflineData,
			func(m string) *SaveResult { return &SaveResult{Message: m} }),
		unary("GetOfflineData", ChannelGetOfflineData, ShellServer.GetOfflineData,
			func(m string) *DataResult { return &DataResult{Message: m} }),
		unary("ClearOfflineData", ChannelClearOfflineData, ShellServer.ClearOfflineData,
			func(m string) *StatusResult { return &StatusResult{Message: m} }),
		unary("GetOfflineStats", ChannelGetOfflineStats, ShellServer.GetOfflineStats,
			func(m string) *StatsResult { return &StatsResult{Message: m} }),
		unary("GetSettings", ChannelGetSettings, ShellServer.GetSettings,
			func(m string) *SettingsResult { return &SettingsResult{Message: m} }),
		unary("SaveSettings", ChannelSaveSettings, ShellServer.SaveSettings,
			func(m string) *SettingsResult { return &SettingsResult{Message: m} }),
		unary("ExportOfflineData", ChannelExportOfflineData, ShellServer.ExportOfflineData,
			func(m string) *ExportResult { return &ExportResult{Message: m} }),
		unary("CheckConnection", ChannelCheckConnection, ShellServer.CheckConnection,
			func(string) *ConnectionResult { return &ConnectionResult{} }),
		unary("MarkSynced", ChannelMarkSynced, ShellServer.MarkSynced,
			func(m string) *MarkSyncedResult { return &MarkSyncedResult{Message: m} }),
		unary("RecordSyncAttempt", ChannelRecordSyncAttempt, ShellServer.RecordSyncAttempt,
			func(m string) *AttemptResult { return &AttemptResult{Message: m} }),
		unary("ListSyncAttempts", ChannelListSyncAttempts, ShellServer.ListSyncAttempts,
			func(m string) *JournalResult { return &JournalResult{Message: m} }),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName: eventsMethod,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(Empty)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(ShellServer).Events(in, stream)
			},
			ServerStreams: true,
		},
	},
	Metadata: "poskeeper/ipc/shell",
}
