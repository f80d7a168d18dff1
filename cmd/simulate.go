package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/nfcmusik/internal/server"
	"github.com/desertthunder/nfcmusik/internal/shared"
	"github.com/urfave/cli/v3"
)

// Simulate serves a simulated music box until interrupted.
func (r *Runner) Simulate(ctx context.Context, cmd *cli.Command) error {
	sim, addr, err := r.newSimulator(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("simulated music box ready", "files", len(sim.Files()), "url", "http://"+addr)
	return server.ListenAndServe(ctx, addr, sim.Router(), r.logger)
}

// newSimulator resolves flags against the simulator config, creating the music root if needed.
func (r *Runner) newSimulator(cmd *cli.Command) (*server.Simulator, string, error) {
	cfg := r.config.Simulator

	root := cmd.String("music-root")
	if root == "" {
		root = cfg.MusicRoot
	}
	host := cmd.String("host")
	if host == "" {
		host = cfg.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = cfg.Port
	}
	delay := int(cmd.Int("wlan-off-delay"))
	if delay == 0 {
		delay = cfg.WlanOffDelay
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create music root: %w", err)
	}

	sim, err := server.NewSimulator(server.SimulatorOptions{
		MusicRoot:    root,
		WlanOffDelay: time.Duration(delay) * time.Second,
		NoReader:     cmd.Bool("no-reader"),
		Logger:       shared.WithLogger(r.logger, "component", "simulator"),
	})
	if err != nil {
		return nil, "", err
	}

	return sim, net.JoinHostPort(host, strconv.Itoa(port)), nil
}
