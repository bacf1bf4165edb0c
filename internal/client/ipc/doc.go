// Package ipc is the local surface between the shell and its UI.
//
// Every channel is a plain method on Handler returning a result struct with
// an explicit success flag; Handler never returns a Go error. GRPCServer
// exposes Handler over gRPC using a JSON codec (content-subtype "json"), one
// unary RPC per channel plus a server-streaming Events RPC that carries the
// periodic auto-sync notification. Client is the typed counterpart used by
// the terminal UI.
//
// Channel          RPC
//
//	save-offline-data    SaveOfflineData
//	get-offline-data     GetOfflineData
//	clear-offline-data   ClearOfflineData
//	get-offline-stats    GetOfflineStats
//	get-settings         GetSettings
//	save-settings        SaveSettings
//	export-offline-data  ExportOfflineData
//	check-connection     CheckConnection
//	mark-synced          MarkSynced
//	record-sync-attempt  RecordSyncAttempt
//	list-sync-attempts   ListSyncAttempts
//	auto-sync            Events (server stream)
package ipc
