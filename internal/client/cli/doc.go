// Package cli provides the interactive POS terminal.
//
// The terminal is the UI side of the offline loop: it records sales and
// master data through the desktop shell's IPC surface, reacts to the shell's
// auto-sync notifications by pushing pending records to the backend and
// acknowledging them with mark-synced, and reports every attempt to the
// shell's sync journal.
//
// The REPL is started via App.Root(ctx, interval), which blocks until the
// user exits. See App, StartOnlineStatusWatcher, WatchEvents and runREPL.
package cli
