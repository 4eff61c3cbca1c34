package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/obexhq/obex/internal/buildinfo"
	"github.com/obexhq/obex/internal/client/cli"
	"github.com/obexhq/obex/internal/client/config"
	"github.com/obexhq/obex/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewDefault(slog.LevelInfo)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
