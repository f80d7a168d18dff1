package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nfcmusik/internal/dashboard"
	"github.com/desertthunder/nfcmusik/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgDeviceEvent MsgKind = iota
	MsgActionDone
	MsgRefreshed
	MsgOpened
	MsgTick
	MsgStopped
)

// actionDone names the file a finished write or delete acted on. The outcome itself is already in the
// controller state.
type actionDone struct {
	action models.Action
	file   models.MusicFile
}

// deviceEventMsg is the constructor for [MsgDeviceEvent]
func deviceEventMsg(ev dashboard.Event) Msg {
	return Msg{kind: MsgDeviceEvent, data: ev}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(action models.Action, file models.MusicFile) Msg {
	return Msg{kind: MsgActionDone, data: actionDone{action, file}}
}

// refreshedMsg is the constructor for [MsgRefreshed]
func refreshedMsg(err error) Msg {
	return Msg{kind: MsgRefreshed, data: err}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(err error) Msg {
	return Msg{kind: MsgOpened, data: err}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}

// stoppedMsg is the constructor for [MsgStopped], sent when the polling loops exit.
func stoppedMsg(err error) Msg {
	return Msg{kind: MsgStopped, data: err}
}

// errData extracts an error payload.
func (m Msg) errData() error {
	err, _ := m.data.(error)
	return err
}
