package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tuannm99/csvsql/internal"
	"github.com/tuannm99/csvsql/server/csvsqlwire"
)

func main() {
	flags := pflag.NewFlagSet("csvsql-server", pflag.ExitOnError)
	configPath := flags.String("config", "", "config file (yaml)")
	flags.String("storage.workdir", "test_db", "database directory")
	flags.String("server.addr", "127.0.0.1:8866", "listen address")
	flags.Bool("server.debug", false, "debug logging")
	_ = flags.Parse(os.Args[1:])

	cfg, err := internal.LoadConfigWithFlags(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Server.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := os.MkdirAll(cfg.Storage.Workdir, 0o755); err != nil {
		slog.Error("create data directory", "dir", cfg.Storage.Workdir, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = csvsqlwire.Run(ctx, csvsqlwire.ServerConfig{
		Addr:          cfg.Server.Addr,
		Workdir:       cfg.Storage.Workdir,
		Limits:        cfg.Limits(),
		StmtCacheSize: cfg.Engine.StmtCacheSize,
	})
	if err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}
