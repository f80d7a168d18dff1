package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/nfcmusik/internal/dashboard"
	"github.com/desertthunder/nfcmusik/internal/shared"
	"github.com/urfave/cli/v3"
)

// watcher prints dashboard regions when they change.
type watcher struct {
	r        *Runner
	ctrl     *dashboard.Controller
	lastNFC  string
	lastWlan string
	polls    int
}

// Watch runs the polling loops headless and prints each change until interrupted or --count NFC polls complete.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	count := cmd.Int("count")
	if count < 0 {
		return fmt.Errorf("%w: count must not be negative", shared.ErrInvalidArgument)
	}

	ctrl, cleanup, err := r.controller()
	if err != nil {
		return err
	}
	defer cleanup()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(runCtx) }()

	r.logger.Info("watching device", "url", r.deviceURL(), "count", count)
	w := &watcher{r: r, ctrl: ctrl}

	for {
		select {
		case <-runCtx.Done():
			return <-done
		case ev := <-ctrl.Events():
			w.handle(ev)
			if count > 0 && w.polls >= int(count) {
				cancel()
			}
		}
	}
}

func (w *watcher) handle(ev dashboard.Event) {
	snap := w.ctrl.Snapshot()
	stamp := time.Now().Format("15:04:05")

	switch ev.Kind {
	case dashboard.EventFilesRefreshed:
		if ev.Err != nil {
			w.r.writePlain("[%s] files: %v\n", stamp, ev.Err)
			return
		}
		w.r.writePlain("[%s] files: %d listed\n", stamp, len(snap.Files))
	case dashboard.EventNFCUpdated:
		w.polls++
		line := "unavailable"
		if ev.Err != nil {
			line = "stale: " + ev.Err.Error()
		} else if snap.NFC != nil {
			line = snap.NFC.String()
		}
		if line != w.lastNFC {
			w.lastNFC = line
			w.r.writePlain("[%s] NFC Tag Status: %s\n", stamp, line)
		}
	case dashboard.EventWlanUpdated:
		line := wlanLine(snap)
		if line != w.lastWlan {
			w.lastWlan = line
			w.r.writePlain("[%s] %s\n", stamp, line)
		}
	case dashboard.EventStatusChanged:
		w.r.logger.Debug("status", "text", snap.Status)
	}
}
