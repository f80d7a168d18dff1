package dashboard

import (
	"time"

	"github.com/desertthunder/nfcmusik/internal/models"
)

// RowState is the visual state of one file row's action controls.
type RowState int

const (
	RowIdle RowState = iota
	RowPending
	RowSuccess
	RowError
)

func (s RowState) String() string {
	switch s {
	case RowIdle:
		return "idle"
	case RowPending:
		return "pending"
	case RowSuccess:
		return "success"
	case RowError:
		return "error"
	default:
		return ""
	}
}

// Row is one rendered music file and its transient action state.
type Row struct {
	File    models.MusicFile
	State   RowState
	Message string    // message of the last completed action
	Until   time.Time // expiry of Success/Error

	gen uint64
}

// StateAt returns the row state as seen at now, reverting expired Success/Error to Idle.
func (r Row) StateAt(now time.Time) RowState {
	if (r.State == RowSuccess || r.State == RowError) && !now.Before(r.Until) {
		return RowIdle
	}
	return r.State
}

// FileList is an ordered list of rows keyed by file hash.
//
// Hashes are unique: when a response lists the same hash twice, the first entry wins.
type FileList struct {
	order []string
	rows  map[string]*Row
}

// NewFileList returns an empty list.
func NewFileList() *FileList {
	return &FileList{rows: map[string]*Row{}}
}

// Replace swaps the list contents for files, in order.
//
// Rows whose hash survives keep their transient state; the file name is updated. It returns the number of
// duplicate hashes that were dropped.
func (l *FileList) Replace(files []models.MusicFile) int {
	order := make([]string, 0, len(files))
	rows := make(map[string]*Row, len(files))
	dropped := 0

	for _, f := range files {
		if _, dup := rows[f.Hash]; dup {
			dropped++
			continue
		}

		row, ok := l.rows[f.Hash]
		if !ok {
			row = &Row{}
		}
		row.File = f

		rows[f.Hash] = row
		order = append(order, f.Hash)
	}

	l.order = order
	l.rows = rows
	return dropped
}

// Len returns the number of rows.
func (l *FileList) Len() int { return len(l.order) }

// Hashes returns the row keys in display order.
func (l *FileList) Hashes() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Get returns a copy of the row for hash.
func (l *FileList) Get(hash string) (Row, bool) {
	row, ok := l.rows[hash]
	if !ok {
		return Row{}, false
	}
	return *row, true
}

// Rows returns copies of all rows in order, with expired states resolved at now.
func (l *FileList) Rows(now time.Time) []Row {
	out := make([]Row, 0, len(l.order))
	for _, hash := range l.order {
		row := *l.rows[hash]
		row.State = row.StateAt(now)
		out = append(out, row)
	}
	return out
}

// row returns the live row pointer for mutation.
func (l *FileList) row(hash string) *Row {
	return l.rows[hash]
}

// Modal is the dialog used to surface action failures.
type Modal struct {
	Visible bool
	Message string
}

// State is the whole dashboard state. It is owned by a [Controller] and only read through [Snapshot].
type State struct {
	Files      *FileList
	FilesError error
	Refreshed  time.Time

	NFC        *models.NfcStatus
	NFCError   error
	NFCUpdated time.Time

	WlanTimeout float64
	WlanAlert   bool
	WlanError   error

	Status string
	Modal  Modal
}

// Snapshot is an immutable copy of [State] for rendering.
type Snapshot struct {
	Files      []Row
	FilesError error
	Refreshed  time.Time

	NFC        *models.NfcStatus
	NFCError   error
	NFCUpdated time.Time

	WlanTimeout float64
	WlanAlert   bool
	WlanError   error

	Status string
	Modal  Modal
	Taken  time.Time
}

// Row looks up a row in the snapshot by hash.
func (s Snapshot) Row(hash string) (Row, bool) {
	for _, r := range s.Files {
		if r.File.Hash == hash {
			return r, true
		}
	}
	return Row{}, false
}

func (s *State) snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Files:       s.Files.Rows(now),
		FilesError:  s.FilesError,
		Refreshed:   s.Refreshed,
		NFCError:    s.NFCError,
		NFCUpdated:  s.NFCUpdated,
		WlanTimeout: s.WlanTimeout,
		WlanAlert:   s.WlanAlert,
		WlanError:   s.WlanError,
		Status:      s.Status,
		Modal:       s.Modal,
		Taken:       now,
	}
	if s.NFC != nil {
		nfc := *s.NFC
		snap.NFC = &nfc
	}
	return snap
}
