package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nfcmusik/internal/device"
	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
	tu "github.com/desertthunder/nfcmusik/internal/testing"
)

var (
	fileA = models.MusicFile{Name: "a.mp3", Hash: "11aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	fileB = models.MusicFile{Name: "b.mp3", Hash: "11bbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"}
)

// newTestRunner returns a runner wired to dev with a temp journal and fast polling.
func newTestRunner(t *testing.T, dev device.Device) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Journal.Path = filepath.Join(t.TempDir(), "journal.db")
	config.Polling.NFCInterval = "10ms"
	config.Polling.WlanInterval = "10ms"
	config.Logging.File = filepath.Join(t.TempDir(), "tui.log")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Device: dev,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		Input:  strings.NewReader(""),
	})
	return runner, output
}

// runApp runs the command line args against r with a config path that does not exist.
func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	full := append([]string{"nfcmusik", "--config", filepath.Join(t.TempDir(), "missing.toml")}, args...)
	return newApp(r).Run(context.Background(), full)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			input := strings.NewReader("y\n")
			httpClient := &http.Client{}
			dev := tu.NewMockDevice()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Device:     dev,
				Logger:     logger,
				Output:     output,
				Input:      input,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.input != input {
				t.Error("expected input to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.device != dev {
				t.Error("expected device to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil input uses stdin", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Input: nil})

			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with nil device builds a client lazily", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.device != nil {
				t.Fatal("expected no device before first use")
			}

			dev, err := runner.client()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			c, ok := dev.(*device.Client)
			if !ok {
				t.Fatalf("expected *device.Client, got %T", dev)
			}
			if want := runner.config.Device.URL + "/"; c.BaseURL() != want {
				t.Errorf("expected base URL %s, got %s", want, c.BaseURL())
			}
			if again, _ := runner.client(); again != dev {
				t.Error("expected the client to be reused")
			}
		})
	})

	t.Run("journal", func(t *testing.T) {
		t.Run("disabled returns nil repository", func(t *testing.T) {
			runner, _ := newTestRunner(t, tu.NewMockDevice())
			runner.config.Journal.Enabled = false

			repo, closeJournal, err := runner.journal()
			defer closeJournal()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if repo != nil {
				t.Error("expected nil repository")
			}
		})

		t.Run("enabled migrates the database", func(t *testing.T) {
			runner, _ := newTestRunner(t, tu.NewMockDevice())

			repo, closeJournal, err := runner.journal()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer closeJournal()

			entries, err := repo.List(map[string]any{})
			if err != nil {
				t.Fatalf("expected list to succeed, got %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("expected empty journal, got %d entries", len(entries))
			}
		})

		t.Run("unopenable path", func(t *testing.T) {
			runner, _ := newTestRunner(t, tu.NewMockDevice())
			runner.config.Journal.Path = filepath.Join(t.TempDir(), "missing", "dir", "journal.db")

			_, closeJournal, err := runner.journal()
			defer closeJournal()
			if err == nil {
				t.Fatal("expected error for unopenable path")
			}
		})
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("uses the config file", func(t *testing.T) {
			t.Setenv(shared.EnvDeviceURL, "")
			path := filepath.Join(t.TempDir(), "config.toml")
			tu.MustWriteFile(t, path, "[device]\nurl = \"http://box.test:5000\"\n")

			var opened string
			runner, _ := newTestRunner(t, nil)
			runner.openURL = func(url string) error { opened = url; return nil }

			err := newApp(runner).Run(context.Background(), []string{"nfcmusik", "--config", path, "open"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if opened != "http://box.test:5000" {
				t.Errorf("expected config URL to be opened, got %q", opened)
			}
		})

		t.Run("device flag overrides the config", func(t *testing.T) {
			t.Setenv(shared.EnvDeviceURL, "")
			var opened string
			runner, _ := newTestRunner(t, nil)
			runner.openURL = func(url string) error { opened = url; return nil }

			if err := runApp(t, runner, "--device", "http://flag.test", "open"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if opened != "http://flag.test" {
				t.Errorf("expected flag URL to be opened, got %q", opened)
			}
		})

		t.Run("invalid config file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			tu.MustWriteFile(t, path, "[polling]\nnfc_interval = \"often\"\n")

			runner, _ := newTestRunner(t, tu.NewMockDevice())
			err := newApp(runner).Run(context.Background(), []string{"nfcmusik", "--config", path, "status"})
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("verbose enables debug logging", func(t *testing.T) {
			runner, _ := newTestRunner(t, tu.NewMockDevice())

			if err := runApp(t, runner, "-v", "files"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln pads with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("expected padded text, got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"tui", "files", "write", "delete", "status", "watch", "open", "history", "simulate", "setup"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("expected command %q at index %d, got %q", want[i], i, cmd.Name)
			}
		}
	})
}
