package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/flagx"
)

var knownFlags = []string{"-d", "-a", "-s", "-u", "-p", "-t", "-i", "-e", "-l"}

// parseFlags overlays cfg with command-line flags.
//
//	-d string   data directory
//	-a string   IPC address of the shell
//	-s string   backend base URL
//	-u string   operator username
//	-p string   connectivity check URL
//	-t int      check timeout (seconds)
//	-i int      backend online check interval (seconds)
//	-e string   export directory
//	-l string   log level
//
// Unknown arguments are dropped with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("poskeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.IPCAddr, "a", cfg.IPCAddr, "IPC address of the shell")
	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.Username, "u", cfg.Username, "operator username")
	fs.StringVar(&cfg.CheckURL, "p", cfg.CheckURL, "connectivity check URL")
	checkTimeout := fs.Int("t", int(cfg.CheckTimeout.Seconds()), "check timeout (in seconds)")
	onlineCheck := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "export directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.CheckTimeout = time.Duration(*checkTimeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheck) * time.Second
	return nil
}
