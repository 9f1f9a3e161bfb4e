package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/paykit/internal/app"
	"github.com/samvad-hq/paykit/internal/config"
	"github.com/samvad-hq/paykit/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "invoicectl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintf(os.Stderr, "usage: invoicectl <command> [flags]\n\ncommands:\n%s", app.Usage())
		if len(args) == 0 {
			return fmt.Errorf("no command given")
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("invoicectl starting", "config", cfg.Redacted())
	if cfg.APIKey == "" {
		logger.WarnObj("api_key is not set; requests will be rejected", "api_base", cfg.APIBase)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if args[0] == "watch" {
		watcher, err := app.NewWatcher(ctx, cfg, log)
		if err != nil {
			logger.ErrorObj("failed to initialize watcher", "error", err)
			return err
		}
		if err := watcher.Run(ctx); err != nil {
			return fmt.Errorf("watcher run: %w", err)
		}
		return nil
	}

	cmds := app.NewCommands(app.NewInvoiceClient(cfg, log), os.Stdout)
	return cmds.Execute(ctx, args[0], args[1:])
}
