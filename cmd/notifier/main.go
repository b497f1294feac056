package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JiBrAN123456/Company-subscription-service/internal/app"
	"github.com/JiBrAN123456/Company-subscription-service/internal/config"

	log "github.com/sirupsen/logrus"
)

// main runs the expiry notifier entrypoint.
func main() {
	if errRun := run(context.Background(), os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the notifier loop.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notifier", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	runOnce := fs.Bool("run-once", false, "run a single expiry scan and exit")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if strings.TrimSpace(*cfgPath) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(*cfgPath)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.RunNotifier(ctx, appCfg, *runOnce)
}
