package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/nfcmusik/internal/dashboard"
	"github.com/desertthunder/nfcmusik/internal/device"
	"github.com/desertthunder/nfcmusik/internal/formatter"
	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
	"github.com/urfave/cli/v3"
)

// Files prints the music files listed by the device.
func (r *Runner) Files(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	dev, err := r.client()
	if err != nil {
		return err
	}

	files, err := dev.MusicFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list music files: %w", err)
	}
	r.logger.Debug("fetched music files", "count", len(files))

	out, err := formatter.RenderFiles(format, files)
	if err != nil {
		return err
	}
	return r.writePlain("%s", out)
}

// Write writes a file hash to the tag currently on the reader.
func (r *Runner) Write(ctx context.Context, cmd *cli.Command) error {
	hash := strings.TrimSpace(cmd.StringArg("hash"))
	if hash == "" {
		return fmt.Errorf("%w: hash is required", shared.ErrMissingArgument)
	}

	ctrl, cleanup, err := r.controller()
	if err != nil {
		return err
	}
	defer cleanup()

	file := r.lookup(ctx, ctrl, hash)
	if file.Name == "" {
		r.logger.Warn("hash is not listed by the device", "hash", hash)
	}

	result, err := ctrl.WriteNFC(ctx, hash)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s\n", result.Message)
	return nil
}

// Delete removes a file from the device after confirmation.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	hash := strings.TrimSpace(cmd.StringArg("hash"))
	if hash == "" {
		return fmt.Errorf("%w: hash is required", shared.ErrMissingArgument)
	}

	ctrl, cleanup, err := r.controller()
	if err != nil {
		return err
	}
	defer cleanup()

	file := r.lookup(ctx, ctrl, hash)
	if file.Name == "" {
		return fmt.Errorf("%w: %s", shared.ErrUnknownFile, hash)
	}

	var confirm dashboard.Confirmer = promptConfirmer(r.input, r.output)
	if cmd.Bool("yes") {
		confirm = dashboard.ConfirmFunc(func(models.MusicFile) bool { return true })
	}

	result, err := ctrl.DeleteFile(ctx, file.Name, hash, confirm)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s\n", result.Message)
	return nil
}

// lookup refreshes the controller's file list and returns the row for hash. Unlisted hashes come back with an
// empty name.
func (r *Runner) lookup(ctx context.Context, ctrl *dashboard.Controller, hash string) models.MusicFile {
	if err := ctrl.RefreshMusicFiles(ctx); err != nil {
		r.logger.Warn("could not fetch file list", "error", err)
	}
	if row, ok := ctrl.Snapshot().Row(hash); ok {
		return row.File
	}
	return models.MusicFile{Hash: hash}
}

// promptConfirmer asks on out and reads a y/n answer from in.
func promptConfirmer(in io.Reader, out io.Writer) dashboard.Confirmer {
	reader := bufio.NewReader(in)
	return dashboard.ConfirmFunc(func(file models.MusicFile) bool {
		fmt.Fprintf(out, "Delete %q (%s)? [y/N]: ", file.Name, shared.ShortHash(file.Hash))
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}

type statusReport struct {
	NFC         *models.NfcStatus `json:"nfc"`
	NFCError    string            `json:"nfc_error,omitempty"`
	WlanTimeout float64           `json:"wlan_timeout"`
	WlanError   string            `json:"wlan_error,omitempty"`
}

// Status polls the NFC status and WLAN timeout once.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	ctrl, cleanup, err := r.controller()
	if err != nil {
		return err
	}
	defer cleanup()

	nfcErr := ctrl.PollNFC(ctx)
	wlanErr := ctrl.PollWlanTimeout(ctx)
	if nfcErr != nil && wlanErr != nil {
		return fmt.Errorf("%w: %v", shared.ErrDeviceUnavailable, nfcErr)
	}

	snap := ctrl.Snapshot()
	report := statusReport{NFC: snap.NFC, WlanTimeout: snap.WlanTimeout}
	if nfcErr != nil {
		report.NFCError = nfcErr.Error()
	}
	if wlanErr != nil {
		report.WlanError = wlanErr.Error()
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Device: " + r.deviceURL())
	if snap.NFC != nil {
		r.writePlain("NFC Tag Status: %s\n", snap.NFC.String())
	} else {
		r.writePlain("NFC Tag Status: unavailable (%s)\n", report.NFCError)
	}
	r.writePlain("%s\n", wlanLine(snap))
	return nil
}

func wlanLine(snap dashboard.Snapshot) string {
	switch {
	case snap.WlanError != nil:
		return "WLAN fallback: unavailable (" + snap.WlanError.Error() + ")"
	case snap.WlanAlert:
		return "WLAN fallback: shutting down in " + shared.FormatCountdown(snap.WlanTimeout)
	default:
		return "WLAN fallback: inactive"
	}
}

// Open opens the device web page. With --headless it only requests the page, which resets the device's WLAN
// shutdown timer.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("headless") {
		dev, err := r.client()
		if err != nil {
			return err
		}
		c, ok := dev.(*device.Client)
		if !ok {
			return fmt.Errorf("%w: headless open needs an HTTP device", shared.ErrNotImplemented)
		}
		if err := c.Home(ctx); err != nil {
			return err
		}
		r.writePlain("✓ requested %s\n", c.BaseURL())
		return nil
	}

	url := r.deviceURL()
	r.logger.Info("opening device page", "url", url)
	if err := r.openURL(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
