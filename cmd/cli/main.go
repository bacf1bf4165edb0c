package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/poskeeper/internal/buildinfo"
	"github.com/dmitrijs2005/poskeeper/internal/client/cli"
	"github.com/dmitrijs2005/poskeeper/internal/client/config"
	"github.com/dmitrijs2005/poskeeper/internal/client/ipc"
	"github.com/dmitrijs2005/poskeeper/internal/client/remote"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewJSON(os.Stderr, cfg.LogLevel)

	shellClient, err := ipc.NewClient(cfg.IPCAddr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer shellClient.Close()

	backend := remote.New(cfg.ServerURL, nil, logger)

	app := cli.NewApp(shellClient, backend, cfg.Username, logger)
	app.Run(ctx, cfg.OnlineCheckInterval)
}
