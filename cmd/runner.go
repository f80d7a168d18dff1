package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nfcmusik/internal/dashboard"
	"github.com/desertthunder/nfcmusik/internal/device"
	"github.com/desertthunder/nfcmusik/internal/repositories"
	"github.com/desertthunder/nfcmusik/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	device     device.Device
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	openURL    func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When Device is nil a [device.Client] is built from the config on first use.
type RunnerOpts struct {
	Config     *shared.Config
	Device     device.Device
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	OpenURL    func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		device:     opts.Device,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		openURL:    opts.OpenURL,
	}
}

// SetLogger replaces the runner logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		tuiCommand, filesCommand, writeCommand, deleteCommand, statusCommand, watchCommand,
		openCommand, historyCommand, simulateCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file and applies environment and flag overrides.
//
// A missing config file keeps the current config.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if err := r.config.ApplyEnv(cmd.String("env-file")); err != nil {
		return ctx, err
	}

	if url := cmd.String("device"); url != "" {
		r.config.Device.URL = url
	}

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	} else {
		shared.SetLogLevel(r.logger, r.config.LogLevel())
	}

	return ctx, nil
}

// deviceURL is the base URL shown to users and opened in the browser.
func (r *Runner) deviceURL() string {
	if c, ok := r.device.(*device.Client); ok {
		return c.BaseURL()
	}
	return r.config.Device.URL
}

// client returns the injected device or builds an HTTP client for the configured URL.
func (r *Runner) client() (device.Device, error) {
	if r.device != nil {
		return r.device, nil
	}

	c, err := device.NewClient(r.config.Device.URL, device.Options{
		HTTPClient:        r.httpClient,
		Timeout:           r.config.RequestTimeout(),
		RequestsPerSecond: r.config.Device.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	r.device = c
	return c, nil
}

// journal opens the action journal. It returns a nil repository when the journal is disabled.
func (r *Runner) journal() (*repositories.ActionRepository, func(), error) {
	if !r.config.Journal.Enabled {
		return nil, func() {}, nil
	}

	db, err := shared.OpenJournal(r.config.Journal)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open journal: %w", err)
	}
	return repositories.NewActionRepository(db), func() { closeDB(db, r.logger) }, nil
}

// controller builds a dashboard controller for the configured device. The returned cleanup closes the journal
// and stops row timers.
func (r *Runner) controller() (*dashboard.Controller, func(), error) {
	dev, err := r.client()
	if err != nil {
		return nil, nil, err
	}

	opts := dashboard.Options{
		Logger:       r.logger,
		DeviceName:   r.deviceURL(),
		Feedback:     r.config.FeedbackDuration(),
		NFCInterval:  r.config.NFCInterval(),
		WlanInterval: r.config.WlanInterval(),
	}

	repo, closeJournal, err := r.journal()
	if err != nil {
		r.logger.Warn("journal unavailable, actions will not be recorded", "error", err)
	} else if repo != nil {
		opts.Journal = repo
	}

	ctrl := dashboard.New(dev, opts)
	return ctrl, func() {
		ctrl.Close()
		closeJournal()
	}, nil
}

func closeDB(db *sql.DB, logger *log.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn("failed to close database", "error", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
