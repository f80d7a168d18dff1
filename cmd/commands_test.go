package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/server"
	"github.com/desertthunder/nfcmusik/internal/shared"
	tu "github.com/desertthunder/nfcmusik/internal/testing"
)

func TestFiles(t *testing.T) {
	t.Run("text by default", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockDevice(fileA, fileB))

		if err := runApp(t, runner, "files"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Files: 2") {
			t.Errorf("expected file count, got %q", result)
		}
		if !strings.Contains(result, "1. a.mp3 ["+fileA.Hash+"]") {
			t.Errorf("expected first file, got %q", result)
		}
	})

	t.Run("csv format", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockDevice(fileA))

		if err := runApp(t, runner, "files", "--format", "csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(output.String(), "Name,Hash\n") {
			t.Errorf("expected csv header, got %q", output.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockDevice(fileA))

		err := runApp(t, runner, "files", "--format", "yaml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("device failure", func(t *testing.T) {
		dev := tu.NewMockDevice()
		dev.FilesErr = shared.ErrDeviceUnavailable
		runner, _ := newTestRunner(t, dev)

		err := runApp(t, runner, "files")
		if !errors.Is(err, shared.ErrDeviceUnavailable) {
			t.Errorf("expected ErrDeviceUnavailable, got %v", err)
		}
	})
}

func TestWrite(t *testing.T) {
	t.Run("success prints the device message and records it", func(t *testing.T) {
		dev := tu.NewMockDevice(fileA, fileB)
		runner, output := newTestRunner(t, dev)

		if err := runApp(t, runner, "write", fileA.Hash); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if dev.CallCount("WriteNFC") != 1 {
			t.Errorf("expected one write request, got %d", dev.CallCount("WriteNFC"))
		}
		if !strings.Contains(output.String(), "✓ ok") {
			t.Errorf("expected success line, got %q", output.String())
		}

		output.Reset()
		if err := runApp(t, runner, "history", "--format", "csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), ",write,a.mp3,"+fileA.Hash+",true,ok") {
			t.Errorf("expected journal row, got %q", output.String())
		}
	})

	t.Run("device failure", func(t *testing.T) {
		dev := tu.NewMockDevice(fileA)
		dev.WriteResult = models.ActionResult{Success: false, Message: "tag error"}
		runner, _ := newTestRunner(t, dev)

		err := runApp(t, runner, "write", fileA.Hash)
		if !errors.Is(err, shared.ErrActionFailed) {
			t.Fatalf("expected ErrActionFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "tag error") {
			t.Errorf("expected device message in error, got %v", err)
		}
	})

	t.Run("unlisted hash is still written", func(t *testing.T) {
		dev := tu.NewMockDevice(fileA)
		runner, _ := newTestRunner(t, dev)

		if err := runApp(t, runner, "write", fileB.Hash); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if dev.Last["WriteNFC"] != fileB.Hash {
			t.Errorf("expected %s to be written, got %s", fileB.Hash, dev.Last["WriteNFC"])
		}
	})

	t.Run("missing hash", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockDevice())

		err := runApp(t, runner, "write")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	t.Run("--yes skips the prompt", func(t *testing.T) {
		dev := tu.NewMockDevice(fileA, fileB)
		runner, output := newTestRunner(t, dev)

		if err := runApp(t, runner, "delete", "--yes", fileA.Hash); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if dev.Last["DeleteFile"] != fileA.Hash {
			t.Errorf("expected %s to be deleted, got %q", fileA.Hash, dev.Last["DeleteFile"])
		}
		if strings.Contains(output.String(), "[y/N]") {
			t.Error("expected no prompt")
		}
	})

	t.Run("prompt accepted", func(t *testing.T) {
		dev := tu.NewMockDevice(fileA)
		runner, output := newTestRunner(t, dev)
		runner.input = strings.NewReader("y\n")

		if err := runApp(t, runner, "delete", fileA.Hash); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `Delete "a.mp3"`) {
			t.Errorf("expected prompt naming the file, got %q", output.String())
		}
		if dev.CallCount("DeleteFile") != 1 {
			t.Errorf("expected one delete request, got %d", dev.CallCount("DeleteFile"))
		}
	})

	t.Run("prompt declined", func(t *testing.T) {
		for _, answer := range []string{"n\n", "\n", "nope\n", ""} {
			dev := tu.NewMockDevice(fileA)
			runner, _ := newTestRunner(t, dev)
			runner.input = strings.NewReader(answer)

			err := runApp(t, runner, "delete", fileA.Hash)
			if !errors.Is(err, shared.ErrNotConfirmed) {
				t.Errorf("answer %q: expected ErrNotConfirmed, got %v", answer, err)
			}
			if dev.CallCount("DeleteFile") != 0 {
				t.Errorf("answer %q: expected no delete request", answer)
			}
		}
	})

	t.Run("unknown hash", func(t *testing.T) {
		dev := tu.NewMockDevice(fileA)
		runner, _ := newTestRunner(t, dev)

		err := runApp(t, runner, "delete", "--yes", fileB.Hash)
		if !errors.Is(err, shared.ErrUnknownFile) {
			t.Errorf("expected ErrUnknownFile, got %v", err)
		}
		if dev.CallCount("DeleteFile") != 0 {
			t.Error("expected no delete request")
		}
	})
}

func TestStatus(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		dev := tu.NewMockDevice()
		dev.Wlan = []float64{125}
		runner, output := newTestRunner(t, dev)

		if err := runApp(t, runner, "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "NFC Tag Status: No tag present (UID: none, data: none)") {
			t.Errorf("expected nfc line, got %q", result)
		}
		if !strings.Contains(result, "WLAN fallback: shutting down in 2:05") {
			t.Errorf("expected wlan countdown, got %q", result)
		}
	})

	t.Run("fractional timeout rounds up", func(t *testing.T) {
		dev := tu.NewMockDevice()
		dev.Wlan = []float64{179.5}
		runner, output := newTestRunner(t, dev)

		if err := runApp(t, runner, "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "WLAN fallback: shutting down in 3:00") {
			t.Errorf("expected rounded countdown, got %q", output.String())
		}
	})

	t.Run("inactive fallback", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockDevice())

		if err := runApp(t, runner, "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "WLAN fallback: inactive") {
			t.Errorf("expected inactive fallback, got %q", output.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		dev := tu.NewMockDevice()
		dev.Wlan = []float64{42}
		dev.NFCErr = shared.ErrAPIRequest
		runner, output := newTestRunner(t, dev)

		if err := runApp(t, runner, "status", "--json", "--pretty=false"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `"wlan_timeout":42`) {
			t.Errorf("expected wlan timeout, got %q", result)
		}
		if !strings.Contains(result, `"nfc":null`) || !strings.Contains(result, `"nfc_error":`) {
			t.Errorf("expected nfc error, got %q", result)
		}
	})

	t.Run("device unreachable", func(t *testing.T) {
		dev := tu.NewMockDevice()
		dev.NFCErr = errors.New("connection refused")
		dev.WlanErr = errors.New("connection refused")
		runner, _ := newTestRunner(t, dev)

		err := runApp(t, runner, "status")
		if !errors.Is(err, shared.ErrDeviceUnavailable) {
			t.Errorf("expected ErrDeviceUnavailable, got %v", err)
		}
	})
}

func TestWatch(t *testing.T) {
	t.Run("prints changes until count polls", func(t *testing.T) {
		dev := tu.NewMockDevice(fileA)
		dev.Wlan = []float64{0, 0, 3}
		runner, output := newTestRunner(t, dev)

		done := make(chan error, 1)
		go func() { done <- runApp(t, runner, "watch", "--count", "5") }()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop after count polls")
		}

		result := output.String()
		if n := strings.Count(result, "NFC Tag Status: No tag present"); n != 1 {
			t.Errorf("expected unchanged nfc status to print once, got %d in %q", n, result)
		}
		if !strings.Contains(result, "files: 1 listed") {
			t.Errorf("expected file count, got %q", result)
		}
		if dev.CallCount("ReadNFC") < 5 {
			t.Errorf("expected at least 5 nfc polls, got %d", dev.CallCount("ReadNFC"))
		}
	})

	t.Run("negative count", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockDevice())

		err := runApp(t, runner, "watch", "--count", "-1")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestOpen(t *testing.T) {
	t.Run("browser", func(t *testing.T) {
		var opened string
		runner, _ := newTestRunner(t, tu.NewMockDevice())
		runner.openURL = func(url string) error { opened = url; return nil }

		if err := runApp(t, runner, "open"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if opened != runner.config.Device.URL {
			t.Errorf("expected %s, got %s", runner.config.Device.URL, opened)
		}
	})

	t.Run("browser failure", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockDevice())
		runner.openURL = func(string) error { return errors.New("no display") }

		err := runApp(t, runner, "open")
		if err == nil || !strings.Contains(err.Error(), "failed to open browser") {
			t.Errorf("expected browser error, got %v", err)
		}
	})

	t.Run("headless requests the home page", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				hits.Add(1)
			}
			w.Write([]byte("<html></html>"))
		}))
		defer srv.Close()

		runner, output := newTestRunner(t, nil)
		runner.config.Device.URL = srv.URL
		runner.openURL = func(string) error {
			t.Error("expected no browser")
			return nil
		}

		if err := runApp(t, runner, "--device", srv.URL, "open", "--headless"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if hits.Load() != 1 {
			t.Errorf("expected one home request, got %d", hits.Load())
		}
		if !strings.Contains(output.String(), "✓ requested "+srv.URL+"/") {
			t.Errorf("expected confirmation, got %q", output.String())
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("disabled journal", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockDevice())
		runner.config.Journal.Enabled = false

		err := runApp(t, runner, "history")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("filters", func(t *testing.T) {
		dev := tu.NewMockDevice(fileA, fileB)
		runner, output := newTestRunner(t, dev)

		if err := runApp(t, runner, "write", fileA.Hash); err != nil {
			t.Fatalf("write: %v", err)
		}
		dev.WriteResult = models.ActionResult{Success: false, Message: "no tag"}
		if err := runApp(t, runner, "write", fileB.Hash); err == nil {
			t.Fatal("expected failed write")
		}
		if err := runApp(t, runner, "delete", "--yes", fileA.Hash); err != nil {
			t.Fatalf("delete: %v", err)
		}

		tests := []struct {
			name  string
			args  []string
			want  []string
			avoid []string
		}{
			{"all", []string{}, []string{"write", "delete", "no tag"}, nil},
			{"failed only", []string{"--failed"}, []string{"no tag"}, []string{"delete"}},
			{"by action", []string{"--action", "delete"}, []string{"delete"}, []string{"no tag"}},
			{"by hash", []string{"--hash", fileB.Hash}, []string{"b.mp3"}, []string{"a.mp3"}},
			{"limit", []string{"--limit", "1"}, []string{"delete"}, []string{"no tag"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				output.Reset()
				args := append([]string{"history"}, tt.args...)
				if err := runApp(t, runner, args...); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				for _, s := range tt.want {
					if !strings.Contains(output.String(), s) {
						t.Errorf("expected %q in %q", s, output.String())
					}
				}
				for _, s := range tt.avoid {
					if strings.Contains(output.String(), s) {
						t.Errorf("expected no %q in %q", s, output.String())
					}
				}
			})
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockDevice())

		err := runApp(t, runner, "history", "--action", "play")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner, output := newTestRunner(t, tu.NewMockDevice())
		args := []string{"nfcmusik", "--config", path, "setup", "config"}

		if err := newApp(runner).Run(context.Background(), args); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), "✓ Created "+path) {
			t.Errorf("expected confirmation, got %q", output.String())
		}

		err := newApp(runner).Run(context.Background(), args)
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected already exists error, got %v", err)
		}
	})

	t.Run("database", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockDevice())
		tu.AssertFileMissing(t, runner.config.Journal.Path)

		if err := runApp(t, runner, "setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, runner.config.Journal.Path)
	})
}

func TestSimulate(t *testing.T) {
	t.Run("serves until cancelled", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "music")
		runner, _ := newTestRunner(t, nil)
		runner.config.Simulator.Host = "127.0.0.1"
		runner.config.Simulator.Port = 0

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		args := []string{"nfcmusik", "--config", filepath.Join(t.TempDir(), "missing.toml"), "simulate", "--music-root", root}
		if err := newApp(runner).Run(ctx, args); err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			t.Errorf("expected music root to be created, got %v", err)
		}
	})

	t.Run("drives the CLI end to end", func(t *testing.T) {
		root := t.TempDir()
		tu.MustWriteFile(t, filepath.Join(root, "song.mp3"), "x")
		tu.MustWriteFile(t, filepath.Join(root, "other.mp3"), "y")

		sim, err := server.NewSimulator(server.SimulatorOptions{MusicRoot: root, Logger: shared.NewLogger(nil)})
		if err != nil {
			t.Fatalf("failed to create simulator: %v", err)
		}
		srv := httptest.NewServer(sim.Router())
		defer srv.Close()

		runner, output := newTestRunner(t, nil)
		hash := server.MusicFileHash("song.mp3")

		if err := runApp(t, runner, "--device", srv.URL, "files"); err != nil {
			t.Fatalf("files: %v", err)
		}
		if !strings.Contains(output.String(), "song.mp3 ["+hash+"]") {
			t.Errorf("expected simulated file, got %q", output.String())
		}

		output.Reset()
		if err := runApp(t, runner, "--device", srv.URL, "write", hash); err != nil {
			t.Fatalf("write: %v", err)
		}
		if !strings.Contains(output.String(), server.MsgWriteSucceeded+"song.mp3") {
			t.Errorf("expected write confirmation, got %q", output.String())
		}

		output.Reset()
		if err := runApp(t, runner, "--device", srv.URL, "status"); err != nil {
			t.Fatalf("status: %v", err)
		}
		if !strings.Contains(output.String(), server.MsgPlayFile+"song.mp3") {
			t.Errorf("expected tag to play the written file, got %q", output.String())
		}

		output.Reset()
		if err := runApp(t, runner, "--device", srv.URL, "delete", "--yes", hash); err != nil {
			t.Fatalf("delete: %v", err)
		}
		tu.AssertFileMissing(t, filepath.Join(root, "song.mp3"))
	})
}
