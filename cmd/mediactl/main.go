package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/sitedir/internal/mediactl"
)

func main() {
	var cli mediactl.CLI
	parser, err := mediactl.NewParser(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, closeDB, err := mediactl.Open(ctx, &cli.Globals, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	err = mediactl.Run(ctx, kctx, s)
	if cerr := closeDB(); cerr != nil {
		s.Logger.Warn(ctx, "db close error", "error", cerr)
	}
	if err != nil {
		s.Logger.Error(ctx, "command failed", "command", kctx.Command(), "error", err)
		fmt.Fprintf(os.Stderr, "error: %s\n", mediactl.UserMessage(err))
		os.Exit(1)
	}
}
