package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/nfcmusik/internal/shared"
	"github.com/urfave/cli/v3"
)

func init() {
	// -v is taken by --verbose
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotConfirmed) {
			logger.Warn("aborted")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "nfcmusik",
		Usage:    "Manage the music files and NFC tags of a music box",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   r.Before,
		Commands: r.register(),
	}
}
