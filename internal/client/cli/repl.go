package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	AddSale(ctx context.Context) error
	AddCustomer(ctx context.Context) error
	AddProduct(ctx context.Context) error
	AddWorker(ctx context.Context) error
	Correct(ctx context.Context) error
	List(ctx context.Context) error
	Stats(ctx context.Context) error
	Clear(ctx context.Context) error
	Export(ctx context.Context) error
	Settings(ctx context.Context) error
	ToggleAutoSync(ctx context.Context) error
	Check(ctx context.Context) error
	Sync(ctx context.Context) error
	Journal(ctx context.Context) error
}

const helpText = `Available commands:
  sale       record a sale
  customer   add or update a customer
  product    add or update a product
  worker     add or update a worker
  correct    record a correction of a sale
  list       show cached records
  stats      show cache statistics
  clear      discard the cache
  export     write a snapshot of the cache
  settings   view or change settings
  autosync   toggle auto-sync
  check      check connectivity
  login      log in to the backend
  sync       push pending records now
  journal    show recent sync attempts
  exit       leave the program`

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF or "exit"/"quit". Command errors are reported and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	commands := map[string]func(context.Context) error{
		"login":    a.Login,
		"sale":     a.AddSale,
		"customer": a.AddCustomer,
		"product":  a.AddProduct,
		"worker":   a.AddWorker,
		"correct":  a.Correct,
		"l":        a.List,
		"list":     a.List,
		"stats":    a.Stats,
		"clear":    a.Clear,
		"export":   a.Export,
		"settings": a.Settings,
		"autosync": a.ToggleAutoSync,
		"check":    a.Check,
		"sync":     a.Sync,
		"journal":  a.Journal,
	}

	for {
		printlnFn(fmt.Sprintf("pos %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn(helpText)
			if !a.isLoggedIn() {
				printlnFn("Not logged in: records are cached locally until you login and sync.")
			}
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			fn, ok := commands[cmd]
			if !ok {
				printlnFn("Unknown command:", cmd)
				continue
			}
			if err := fn(ctx); err != nil {
				printlnFn("Error:", err)
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}
