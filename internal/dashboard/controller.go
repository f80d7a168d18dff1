package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nfcmusik/internal/device"
	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
)

const (
	DefaultFeedback     = 3 * time.Second
	DefaultNFCInterval  = time.Second
	DefaultWlanInterval = time.Second

	StatusReady = "Ready!"
)

// Journal records completed actions. Implemented by repositories.ActionRepository.
type Journal interface {
	Create(entry *models.JournalEntry) error
}

// Confirmer decides whether a destructive action on file may proceed.
type Confirmer interface {
	Confirm(file models.MusicFile) bool
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(file models.MusicFile) bool

func (f ConfirmFunc) Confirm(file models.MusicFile) bool { return f(file) }

// Options configures a [Controller]. Zero values fall back to the defaults above.
type Options struct {
	Logger       *log.Logger
	Journal      Journal
	DeviceName   string // recorded in journal entries
	Feedback     time.Duration
	NFCInterval  time.Duration
	WlanInterval time.Duration
	Now          func() time.Time
}

// Controller drives one music box and owns the dashboard [State].
//
// It is safe for concurrent use.
type Controller struct {
	device  device.Device
	journal Journal
	logger  *log.Logger
	name    string
	now     func() time.Time

	feedback     time.Duration
	nfcInterval  time.Duration
	wlanInterval time.Duration

	mu     sync.Mutex
	state  State
	gen    uint64
	timers map[string]*time.Timer

	events chan Event
}

// New creates a controller for dev.
func New(dev device.Device, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Feedback <= 0 {
		opts.Feedback = DefaultFeedback
	}
	if opts.NFCInterval <= 0 {
		opts.NFCInterval = DefaultNFCInterval
	}
	if opts.WlanInterval <= 0 {
		opts.WlanInterval = DefaultWlanInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		device:       dev,
		journal:      opts.Journal,
		logger:       opts.Logger,
		name:         opts.DeviceName,
		now:          opts.Now,
		feedback:     opts.Feedback,
		nfcInterval:  opts.NFCInterval,
		wlanInterval: opts.WlanInterval,
		state:        State{Files: NewFileList()},
		timers:       map[string]*time.Timer{},
		events:       make(chan Event, 64),
	}
}

// Events returns the change notification channel. It is never closed.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot(c.now())
}

// Feedback returns how long success/error row states last.
func (c *Controller) Feedback() time.Duration {
	return c.feedback
}

// Close stops pending row expiry timers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for hash, t := range c.timers {
		t.Stop()
		delete(c.timers, hash)
	}
}

// RefreshMusicFiles fetches the file list and replaces the rendered rows.
//
// On failure the previous list is kept and the error is recorded in the state.
func (c *Controller) RefreshMusicFiles(ctx context.Context) error {
	files, err := c.device.MusicFiles(ctx)

	c.mu.Lock()
	if err != nil {
		c.state.FilesError = err
		c.mu.Unlock()
		c.logger.Warn("failed to refresh music files", "err", err)
		c.emit(Event{Kind: EventFilesRefreshed, Err: err})
		return fmt.Errorf("failed to refresh music files: %w", err)
	}

	dropped := c.state.Files.Replace(files)
	c.state.FilesError = nil
	c.state.Refreshed = c.now()
	count := c.state.Files.Len()
	c.mu.Unlock()

	if dropped > 0 {
		c.logger.Warn("device listed duplicate hashes", "dropped", dropped)
	}
	c.logger.Debug("refreshed music files", "count", count)
	c.emit(Event{Kind: EventFilesRefreshed})
	return nil
}

// WriteNFC writes hash to the tag currently on the reader.
//
// The row (if listed) goes Pending, then Success or Error for the feedback duration. Failures also open the
// modal. Device-reported failures return the result together with an error wrapping [shared.ErrActionFailed].
func (c *Controller) WriteNFC(ctx context.Context, hash string) (*models.ActionResult, error) {
	file := c.fileFor(hash, "")
	gen := c.beginAction(hash)

	result, err := c.device.WriteNFC(ctx, hash)
	return c.finishAction(models.ActionWrite, file, gen, result, err)
}

// DeleteFile deletes the file identified by hash once confirm approves it.
//
// Declining is a no-op that returns [shared.ErrNotConfirmed] without contacting the device. On success the
// file list is refreshed.
func (c *Controller) DeleteFile(ctx context.Context, name, hash string, confirm Confirmer) (*models.ActionResult, error) {
	file := c.fileFor(hash, name)
	if confirm == nil || !confirm.Confirm(file) {
		c.logger.Debug("delete not confirmed", "hash", hash)
		return nil, shared.ErrNotConfirmed
	}

	gen := c.beginAction(hash)
	result, err := c.device.DeleteFile(ctx, hash)
	result, err = c.finishAction(models.ActionDelete, file, gen, result, err)
	if err != nil {
		return result, err
	}

	if rerr := c.RefreshMusicFiles(ctx); rerr != nil {
		c.logger.Warn("refresh after delete failed", "err", rerr)
	}
	return result, nil
}

// PollNFC fetches the tag status once and replaces the NFC status region.
func (c *Controller) PollNFC(ctx context.Context) error {
	status, err := c.device.ReadNFC(ctx)

	c.mu.Lock()
	if err != nil {
		c.state.NFCError = err
	} else {
		c.state.NFC = status
		c.state.NFCError = nil
		c.state.NFCUpdated = c.now()
	}
	c.mu.Unlock()

	c.emit(Event{Kind: EventNFCUpdated, Err: err})
	if err != nil {
		return fmt.Errorf("failed to read nfc status: %w", err)
	}
	return nil
}

// PollWlanTimeout fetches the fallback countdown once.
//
// The alert is shown while the timeout is positive and hidden again when it returns to zero.
func (c *Controller) PollWlanTimeout(ctx context.Context) error {
	status, err := c.device.WlanTimeout(ctx)

	c.mu.Lock()
	if err != nil {
		c.state.WlanError = err
	} else {
		c.state.WlanTimeout = status.Timeout
		c.state.WlanAlert = status.InFallback()
		c.state.WlanError = nil
	}
	c.mu.Unlock()

	c.emit(Event{Kind: EventWlanUpdated, Err: err})
	if err != nil {
		return fmt.Errorf("failed to read wlan timeout: %w", err)
	}
	return nil
}

// SetStatus replaces the status line.
func (c *Controller) SetStatus(status string) {
	c.mu.Lock()
	c.state.Status = status
	c.mu.Unlock()
	c.emit(Event{Kind: EventStatusChanged})
}

// DismissModal hides the modal.
func (c *Controller) DismissModal() {
	c.mu.Lock()
	changed := c.state.Modal.Visible
	c.state.Modal = Modal{}
	c.mu.Unlock()
	if changed {
		c.emit(Event{Kind: EventModalChanged})
	}
}

func (c *Controller) showModal(message string) {
	c.mu.Lock()
	c.state.Modal = Modal{Visible: true, Message: message}
	c.mu.Unlock()
	c.emit(Event{Kind: EventModalChanged})
}

// fileFor returns the listed file for hash, or a placeholder using fallbackName.
func (c *Controller) fileFor(hash, fallbackName string) models.MusicFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if row, ok := c.state.Files.Get(hash); ok {
		return row.File
	}
	return models.MusicFile{Name: fallbackName, Hash: hash}
}

// beginAction marks the row Pending and returns the action generation.
func (c *Controller) beginAction(hash string) uint64 {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if t, ok := c.timers[hash]; ok {
		t.Stop()
		delete(c.timers, hash)
	}
	if row := c.state.Files.row(hash); row != nil {
		row.State = RowPending
		row.Until = time.Time{}
		row.gen = gen
	}
	c.mu.Unlock()

	c.emit(Event{Kind: EventRowChanged, Hash: hash})
	return gen
}

// finishAction applies the outcome of an action to the row, status line, modal, and journal.
func (c *Controller) finishAction(action models.Action, file models.MusicFile, gen uint64, result *models.ActionResult, err error) (*models.ActionResult, error) {
	var message string
	success := false
	switch {
	case err != nil:
		message = err.Error()
	case result == nil:
		err = device.ActionError(nil)
		message = err.Error()
	default:
		message = result.Message
		success = result.Success
		err = device.ActionError(result)
	}

	state := RowError
	if success {
		state = RowSuccess
	}
	c.settle(file.Hash, gen, state, message)
	c.SetStatus(message)

	logger := c.logger.With("action", string(action), "hash", file.Hash)
	if success {
		logger.Info("action succeeded", "message", message)
	} else {
		logger.Warn("action failed", "message", message)
		c.showModal(message)
	}

	c.record(action, file, models.ActionResult{Success: success, Message: message})

	if err != nil {
		return result, fmt.Errorf("%s %s: %w", action, file.Hash, err)
	}
	return result, nil
}

// settle moves the row to a transient state and schedules its reversion to Idle.
func (c *Controller) settle(hash string, gen uint64, state RowState, message string) {
	c.mu.Lock()
	row := c.state.Files.row(hash)
	if row == nil || row.gen != gen {
		c.mu.Unlock()
		return
	}
	row.State = state
	row.Message = message
	row.Until = c.now().Add(c.feedback)
	c.timers[hash] = time.AfterFunc(c.feedback, func() { c.expire(hash, gen) })
	c.mu.Unlock()

	c.emit(Event{Kind: EventRowChanged, Hash: hash})
}

func (c *Controller) expire(hash string, gen uint64) {
	c.mu.Lock()
	row := c.state.Files.row(hash)
	if row == nil {
		delete(c.timers, hash)
		c.mu.Unlock()
		return
	}
	if row.gen != gen {
		c.mu.Unlock()
		return
	}
	delete(c.timers, hash)
	row.State = RowIdle
	row.Until = time.Time{}
	c.mu.Unlock()

	c.emit(Event{Kind: EventRowChanged, Hash: hash})
}

func (c *Controller) record(action models.Action, file models.MusicFile, result models.ActionResult) {
	if c.journal == nil {
		return
	}
	entry := models.NewJournalEntry(action, file, c.name, result)
	if err := c.journal.Create(entry); err != nil {
		c.logger.Warn("failed to record action", "action", string(action), "err", err)
	}
}
