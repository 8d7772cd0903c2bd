package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/fragkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/fragkeeper/internal/server"
	"github.com/dmitrijs2005/fragkeeper/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := cfg.ResolvePassphrase(os.Stdin, os.Stderr); err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := server.NewLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped with error", "error", err)
		os.Exit(1)
	}

}
