package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// pollLoop is one independently scheduled status poll.
type pollLoop struct {
	name     string
	interval time.Duration
	poll     func(context.Context) error
}

// Run performs the startup sequence and then polls NFC status and the WLAN timeout until ctx is done.
//
// Startup: refresh the file list, set the status line to "Ready!", then start both loops. A failed initial
// refresh is logged and doesn't prevent polling.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.RefreshMusicFiles(ctx); err != nil {
		c.logger.Warn("initial refresh failed", "err", err)
	}
	c.SetStatus(StatusReady)

	loops := []pollLoop{
		{name: "nfc", interval: c.nfcInterval, poll: c.PollNFC},
		{name: "wlan", interval: c.wlanInterval, poll: c.PollWlanTimeout},
	}

	var wg sync.WaitGroup
	for _, l := range loops {
		wg.Add(1)
		go func(l pollLoop) {
			defer wg.Done()
			c.runLoop(ctx, l)
		}(l)
	}
	wg.Wait()

	c.Close()
	return nil
}

// runLoop polls, waits interval, and repeats until ctx is done.
func (c *Controller) runLoop(ctx context.Context, l pollLoop) {
	logger := c.logger.With("loop", l.name)
	logger.Debug("polling started", "interval", l.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("polling stopped")
			return
		case <-timer.C:
		}

		if err := c.cycle(ctx, l); err != nil && ctx.Err() == nil {
			logger.Warn("poll failed", "err", err)
		}
		timer.Reset(l.interval)
	}
}

// cycle runs a single poll inside its own failure boundary.
func (c *Controller) cycle(ctx context.Context, l pollLoop) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s poll: %v", l.name, r)
		}
	}()
	return l.poll(ctx)
}
