// Command csvsql is a local shell on a database directory.
//
//	csvsql [flags] [dir]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tuannm99/csvsql/internal"
	"github.com/tuannm99/csvsql/internal/engine"
	"github.com/tuannm99/csvsql/internal/shell"
)

func main() {
	flags := pflag.NewFlagSet("csvsql", pflag.ExitOnError)
	configPath := flags.String("config", "", "config file (yaml)")
	histPath := flags.String("history", shell.DefaultHistoryPath(), "history file path")
	histMax := flags.Int("history-max", 2000, "max history lines loaded into memory")
	oneShotSQL := flags.StringP("command", "c", "", "execute one SQL and exit")
	debug := flags.Bool("debug", false, "debug logging")
	_ = flags.Parse(os.Args[1:])

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := internal.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	dir := cfg.Storage.Workdir
	if flags.NArg() > 0 {
		dir = flags.Arg(0)
	}

	db, err := engine.Open(dir,
		engine.WithLimits(cfg.Limits()),
		engine.WithStmtCache(cfg.Engine.StmtCacheSize),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", dir, err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	if strings.TrimSpace(*oneShotSQL) != "" {
		sh := shell.New(shell.Local{DB: db}, os.Stdout, nil)
		if err := sh.Exec(ctx, *oneShotSQL); err != nil {
			_ = db.Close()
			os.Exit(1)
		}
		return
	}

	h := shell.NewHistory(*histPath)
	_ = h.Load(*histMax)

	fmt.Printf("csvsql on %s\n", dir)
	sh := shell.New(shell.Local{DB: db}, os.Stdout, h)
	if err := sh.Run(ctx, shell.DefaultPrompt); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
