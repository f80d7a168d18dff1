package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/nfcmusik/internal/dashboard"
	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DashboardView ViewState = iota
	ConfirmView
)

// tickInterval drives repaints of expiring row states and countdowns between device events.
const tickInterval = time.Second

// confirmed approves a delete the user already agreed to in [ConfirmView].
var confirmed = dashboard.ConfirmFunc(func(models.MusicFile) bool { return true })

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	ctrl      *dashboard.Controller
	deviceURL string
	openURL   func(string) error

	view     ViewState
	width    int
	height   int
	fileList list.Model
	snap     dashboard.Snapshot
	pending  *models.MusicFile // file awaiting delete confirmation
	err      error             // fatal: polling stopped unexpectedly
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model over ctrl. deviceURL is opened by the "o" key.
func NewModel(ctx context.Context, ctrl *dashboard.Controller, deviceURL string) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Music Files"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("file", "files")
	l.KeyMap.Quit.SetEnabled(false)

	m := &Model{
		ctx:       ctx,
		ctrl:      ctrl,
		deviceURL: deviceURL,
		openURL:   shared.OpenBrowser,
		view:      DashboardView,
		fileList:  l,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.sync()
	return m
}

// Init starts the controller loops and subscribes to its change events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.run(), m.waitForEvent(), tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fileList.SetSize(msg.Width-4, m.listHeight())
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.snap.Modal.Visible {
			return m.handleModalKeys(msg)
		}
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		default:
			return m.handleDashboardKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgDeviceEvent:
		m.sync()
		return m, m.waitForEvent()

	case MsgTick:
		m.sync()
		return m, tick()

	case MsgActionDone:
		m.sync()
		if done, ok := msg.data.(actionDone); ok {
			m.selectHash(done.file.Hash)
		}
		return m, nil

	case MsgRefreshed, MsgOpened:
		if err := msg.errData(); err != nil {
			m.ctrl.SetStatus(err.Error())
		}
		m.sync()
		return m, nil

	case MsgStopped:
		if err := msg.errData(); err != nil && !errors.Is(err, context.Canceled) {
			m.err = err
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.dismiss):
		m.ctrl.DismissModal()
		m.sync()
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		m.fileList.SetSize(m.width-4, m.listHeight())
		return m, nil
	case key.Matches(msg, m.keys.write):
		if file, ok := m.selected(); ok {
			return m, m.writeNFC(file)
		}
		return m, nil
	case key.Matches(msg, m.keys.delete):
		if file, ok := m.selected(); ok {
			m.pending = &file
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.ctrl.SetStatus("Refreshing…")
		return m, m.refresh()
	case key.Matches(msg, m.keys.open):
		return m, m.openDevice()
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		file := *m.pending
		m.pending = nil
		m.view = DashboardView
		return m, m.deleteFile(file)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.pending = nil
		m.view = DashboardView
		return m, nil
	}
	return m, nil
}

// sync re-reads the controller state and rebuilds the list items, keeping the cursor.
func (m *Model) sync() {
	m.snap = m.ctrl.Snapshot()
	index := m.fileList.Index()
	m.fileList.SetItems(fileItems(m.snap.Files))
	if n := len(m.snap.Files); n > 0 {
		m.fileList.Select(min(index, n-1))
	}
}

// selectHash moves the cursor to the row for hash, if it is still listed.
func (m *Model) selectHash(hash string) {
	for i, it := range m.fileList.Items() {
		if item, ok := it.(fileItem); ok && item.row.File.Hash == hash {
			m.fileList.Select(i)
			return
		}
	}
}

func (m *Model) selected() (models.MusicFile, bool) {
	item, ok := m.fileList.SelectedItem().(fileItem)
	if !ok {
		return models.MusicFile{}, false
	}
	return item.row.File, true
}

func (m *Model) run() tea.Cmd {
	return func() tea.Msg {
		return stoppedMsg(m.ctrl.Run(m.ctx))
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.ctrl.Events():
			return deviceEventMsg(ev)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) writeNFC(file models.MusicFile) tea.Cmd {
	return func() tea.Msg {
		m.ctrl.WriteNFC(m.ctx, file.Hash)
		return actionDoneMsg(models.ActionWrite, file)
	}
}

func (m *Model) deleteFile(file models.MusicFile) tea.Cmd {
	return func() tea.Msg {
		m.ctrl.DeleteFile(m.ctx, file.Name, file.Hash, confirmed)
		return actionDoneMsg(models.ActionDelete, file)
	}
}

func (m *Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg(m.ctrl.RefreshMusicFiles(m.ctx))
	}
}

func (m *Model) openDevice() tea.Cmd {
	return func() tea.Msg {
		return openedMsg(m.openURL(m.deviceURL))
	}
}

// listHeight leaves room for the header regions and help footer.
func (m *Model) listHeight() int {
	reserved := 12
	if m.help.ShowAll {
		reserved += 3
	}
	return max(m.height-reserved, 3)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	var body string
	switch m.view {
	case ConfirmView:
		body = m.renderConfirm()
	default:
		body = m.renderDashboard()
	}

	if m.snap.Modal.Visible {
		modal := m.renderModal()
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
		}
		return body + "\n\n" + modal
	}
	return body
}

func (m *Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("NFC Music Box"))
	b.WriteString(styles.help.Render("  " + m.deviceURL))
	b.WriteString("\n")

	if alert := m.renderWlanAlert(); alert != "" {
		b.WriteString(alert)
		b.WriteString("\n")
	}

	b.WriteString(m.renderNFC())
	b.WriteString("\n")

	if m.snap.FilesError != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Could not load music files: %v", m.snap.FilesError)))
		b.WriteString("\n")
	}

	if len(m.snap.Files) == 0 {
		b.WriteString(styles.help.Render("No music files on the device."))
	} else {
		b.WriteString(m.fileList.View())
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m *Model) renderWlanAlert() string {
	if !m.snap.WlanAlert {
		return ""
	}
	text := fmt.Sprintf("⚠ WLAN fallback mode: access point shuts down in %s", shared.FormatCountdown(m.snap.WlanTimeout))
	if m.snap.WlanError != nil {
		text += " (stale)"
	}
	return styles.alert.Render(text)
}

func (m *Model) renderNFC() string {
	text := "NFC Tag Status: waiting for device…"
	if m.snap.NFC != nil {
		text = "NFC Tag Status: " + m.snap.NFC.String()
	}
	if m.snap.NFCError != nil {
		text += "\n" + styles.warn.Render(fmt.Sprintf("stale: %v", m.snap.NFCError))
	}
	return styles.box.Render(text)
}

func (m *Model) renderStatus() string {
	if m.snap.Status == "" {
		return ""
	}
	return styles.help.Render(m.snap.Status)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Delete '%s' from the device?", m.pending.Name))
	info := fmt.Sprintf("\nHash: %s\nThis cannot be undone.\n", m.pending.Hash)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderModal() string {
	title := styles.err.Render("Action failed")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.dismiss})
	return styles.modal.Render(fmt.Sprintf("%s\n\n%s\n\n%s", title, m.snap.Modal.Message, helpView))
}
