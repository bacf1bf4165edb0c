package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/poskeeper/internal/buildinfo"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/server"
	"github.com/dmitrijs2005/poskeeper/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}
}
