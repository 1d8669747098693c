package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/tuannm99/csvsql/internal/shell"
	"github.com/tuannm99/csvsql/sqlclient"
)

func main() {
	var (
		addr       = pflag.String("addr", "127.0.0.1:8866", "server address")
		timeout    = pflag.Duration("timeout", 3*time.Second, "dial timeout")
		rwTimeout  = pflag.Duration("rw-timeout", 30*time.Second, "per request timeout")
		histPath   = pflag.String("history", shell.DefaultHistoryPath(), "history file path")
		histMax    = pflag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShotSQL = pflag.StringP("command", "c", "", "execute one SQL and exit")
	)
	pflag.Parse()

	cli, err := sqlclient.Dial(*addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = cli.Close() }()
	cli.SetRWTimeout(*rwTimeout)

	ctx := context.Background()

	if strings.TrimSpace(*oneShotSQL) != "" {
		sh := shell.New(shell.Remote{Client: cli}, os.Stdout, nil)
		if err := sh.Exec(ctx, *oneShotSQL); err != nil {
			os.Exit(1)
		}
		return
	}

	h := shell.NewHistory(*histPath)
	_ = h.Load(*histMax)

	fmt.Printf("connected to %s\n", *addr)
	sh := shell.New(shell.Remote{Client: cli}, os.Stdout, h)
	if err := sh.Run(ctx, shell.DefaultPrompt); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
