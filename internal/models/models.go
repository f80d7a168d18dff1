package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MusicFile is one entry of json/musicfiles.
//
// Hash uniquely identifies the file on the device and is the payload written to tags.
type MusicFile struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// NfcStatus is the response of json/readnfc.
type NfcStatus struct {
	Description string `json:"description"`
	UID         string `json:"uid"`
	Data        string `json:"data"`
}

// String renders the status the way the dashboard status box shows it.
func (s NfcStatus) String() string {
	return fmt.Sprintf("%s (UID: %s, data: %s)", s.Description, s.UID, s.Data)
}

// WlanTimeoutStatus is the response of json/wlantimeout.
type WlanTimeoutStatus struct {
	Timeout float64 `json:"timeout"` // seconds remaining, 0 when not in fallback mode
}

// InFallback reports whether the device is counting down towards WLAN shutdown.
func (w WlanTimeoutStatus) InFallback() bool { return w.Timeout > 0 }

// ActionResult is the response of actions/writenfc and actions/deletefile.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Action names a one-shot operation recorded in the journal.
type Action string

const (
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionWrite || a == ActionDelete
}

// JournalEntry records the outcome of one write or delete.
type JournalEntry struct {
	id        string
	sequence  int
	action    Action
	hash      string
	name      string
	device    string
	success   bool
	message   string
	createdAt time.Time
}

// NewJournalEntry builds an unsaved entry for action on the given file and result.
func NewJournalEntry(action Action, file MusicFile, device string, result ActionResult) *JournalEntry {
	return &JournalEntry{
		action:    action,
		hash:      file.Hash,
		name:      file.Name,
		device:    device,
		success:   result.Success,
		message:   result.Message,
		createdAt: time.Now().UTC(),
	}
}

// RestoreJournalEntry rebuilds an entry from stored columns.
func RestoreJournalEntry(id string, sequence int, action Action, hash, name, device string, success bool, message string, createdAt time.Time) *JournalEntry {
	return &JournalEntry{
		id:        id,
		sequence:  sequence,
		action:    action,
		hash:      hash,
		name:      name,
		device:    device,
		success:   success,
		message:   message,
		createdAt: createdAt,
	}
}

func (e *JournalEntry) ID() string           { return e.id }
func (e *JournalEntry) Sequence() int        { return e.sequence }
func (e *JournalEntry) Action() Action       { return e.action }
func (e *JournalEntry) Hash() string         { return e.hash }
func (e *JournalEntry) Name() string         { return e.name }
func (e *JournalEntry) Device() string       { return e.device }
func (e *JournalEntry) Success() bool        { return e.success }
func (e *JournalEntry) Message() string      { return e.message }
func (e *JournalEntry) CreatedAt() time.Time { return e.createdAt }

func (e *JournalEntry) SetID(id string)     { e.id = id }
func (e *JournalEntry) SetSequence(seq int) { e.sequence = seq }

// Validate checks the fields required for persistence.
func (e *JournalEntry) Validate() error {
	if !e.action.Valid() {
		return fmt.Errorf("invalid action %q", e.action)
	}
	if strings.TrimSpace(e.hash) == "" {
		return errors.New("hash is required")
	}
	if e.createdAt.IsZero() {
		return errors.New("created_at is required")
	}
	return nil
}
