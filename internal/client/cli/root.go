package cli

import (
	"context"
	"fmt"
	"time"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" && a.isLoggedIn() {
		s = a.userName + " "
	}
	s += string(a.Mode())
	return fmt.Sprintf("(%s)", s)
}

// Root greets the operator, starts the connectivity and auto-sync watchers
// and runs the REPL.
func (a *App) Root(ctx context.Context, onlineCheckInterval time.Duration) {
	a.println("Welcome to the POS terminal (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)
	go a.WatchEvents(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}
