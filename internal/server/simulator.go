package server

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nfcmusik/internal/device"
	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
	"github.com/desertthunder/nfcmusik/internal/web"
	"github.com/google/uuid"
)

const (
	// ControlByteMusicFile prefixes payloads that identify a music file.
	ControlByteMusicFile byte = 0x11
	// PayloadSize is the number of data bytes stored on a tag.
	PayloadSize = 16
	// UIDSize is the length of a tag UID.
	UIDSize = 5

	DefaultWlanOffDelay = 180 * time.Second
)

// Device messages.
const (
	MsgNoReader        = "No RFID handler"
	MsgNoTag           = "No tag present"
	MsgPlayFile        = "Play music file "
	MsgFileNotPresent  = "Play a music file not currently present on the device"
	MsgUnknownTag      = "Unknown control byte or tag empty"
	MsgUnknownHash     = "Unknown hash value!"
	MsgUnknownControl  = "Unknown control byte: "
	MsgWriteFailed     = "Error writing NFC tag data "
	MsgWriteSucceeded  = "Successfully wrote NFC tag for file: "
	MsgDeleteSucceeded = "Deleted file: "
	MsgInvalidHex      = "Invalid hex data: "
)

// MusicFilePayload returns the tag payload identifying the music file name: the music control byte followed by
// bytes 1 to 15 of the md5 digest of name.
func MusicFilePayload(name string) []byte {
	sum := md5.Sum([]byte(name))
	payload := make([]byte, PayloadSize)
	payload[0] = ControlByteMusicFile
	copy(payload[1:], sum[1:])
	return payload
}

// MusicFileHash returns [MusicFilePayload] hex encoded, as listed by the device.
func MusicFileHash(name string) string {
	return hex.EncodeToString(MusicFilePayload(name))
}

// SimulatorOptions configures a [Simulator].
type SimulatorOptions struct {
	MusicRoot    string
	WlanOffDelay time.Duration
	NoReader     bool // behave like a device without a working tag reader
	Logger       *log.Logger
	Now          func() time.Time
}

// virtualTag is the tag lying on the simulated reader.
type virtualTag struct {
	uid  []byte
	data []byte
}

// Simulator is an in-process music box serving the device JSON API.
//
// It is safe for concurrent use.
type Simulator struct {
	root   string
	delay  time.Duration
	reader bool
	logger *log.Logger
	now    func() time.Time

	mu      sync.Mutex
	files   []models.MusicFile
	index   map[string]string // hex payload -> file name
	tag     *virtualTag
	startup time.Time
}

// NewSimulator scans opts.MusicRoot and returns a simulator with a blank tag on the reader.
func NewSimulator(opts SimulatorOptions) (*Simulator, error) {
	if opts.MusicRoot == "" {
		return nil, fmt.Errorf("%w: music root is required", shared.ErrInvalidConfig)
	}
	info, err := os.Stat(opts.MusicRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: music root: %v", shared.ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: music root %s is not a directory", shared.ErrInvalidConfig, opts.MusicRoot)
	}

	if opts.WlanOffDelay <= 0 {
		opts.WlanOffDelay = DefaultWlanOffDelay
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Simulator{
		root:    opts.MusicRoot,
		delay:   opts.WlanOffDelay,
		reader:  !opts.NoReader,
		logger:  opts.Logger,
		now:     opts.Now,
		tag:     newTag(make([]byte, PayloadSize)),
		startup: opts.Now(),
	}

	if _, err := s.Scan(); err != nil {
		return nil, err
	}
	return s, nil
}

func newTag(data []byte) *virtualTag {
	id := uuid.New()
	uid := make([]byte, UIDSize)
	copy(uid, id[:UIDSize])

	payload := make([]byte, PayloadSize)
	copy(payload, data)
	return &virtualTag{uid: uid, data: payload}
}

// Scan re-reads the music root and rebuilds the payload index.
//
// Hidden files and directories are skipped. Entries are sorted by name.
func (s *Simulator) Scan() ([]models.MusicFile, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read music root: %w", err)
	}

	files := make([]models.MusicFile, 0, len(entries))
	index := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		hash := MusicFileHash(e.Name())
		files = append(files, models.MusicFile{Name: e.Name(), Hash: hash})
		index[hash] = e.Name()
	}

	s.mu.Lock()
	s.files = files
	s.index = index
	s.mu.Unlock()

	s.logger.Debug("scanned music root", "root", s.root, "files", len(files))

	out := make([]models.MusicFile, len(files))
	copy(out, files)
	return out, nil
}

// Files returns the listing from the last scan.
func (s *Simulator) Files() []models.MusicFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MusicFile, len(s.files))
	copy(out, s.files)
	return out
}

// RemoveTag takes the tag off the reader.
func (s *Simulator) RemoveTag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = nil
}

// PlaceTag puts a new tag holding data on the reader. Data is truncated or zero padded to [PayloadSize].
func (s *Simulator) PlaceTag(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = newTag(data)
}

// TagData returns the payload of the tag on the reader, or nil when there is none.
func (s *Simulator) TagData() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tag == nil {
		return nil
	}
	return bytes.Clone(s.tag.data)
}

// ResetWlanTimer restarts the WLAN shutdown countdown.
func (s *Simulator) ResetWlanTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startup = s.now()
}

// WlanTimeout returns the whole seconds left before the WLAN interface would be shut down.
func (s *Simulator) WlanTimeout() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.delay - s.now().Sub(s.startup)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds()))
}

// NFCStatus describes the reader the way json/readnfc does.
func (s *Simulator) NFCStatus() models.NfcStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.reader {
		return models.NfcStatus{Description: MsgNoReader, UID: "none", Data: "none"}
	}
	if s.tag == nil {
		return models.NfcStatus{Description: MsgNoTag, UID: "none", Data: "none"}
	}

	hash := hex.EncodeToString(s.tag.data)
	status := models.NfcStatus{
		UID:         hex.EncodeToString(s.tag.uid),
		Data:        hash,
		Description: MsgUnknownTag,
	}
	if s.tag.data[0] == ControlByteMusicFile {
		if name, ok := s.index[hash]; ok {
			status.Description = MsgPlayFile + name
		} else {
			status.Description = MsgFileNotPresent
		}
	}
	return status
}

// WriteTag validates hexData and writes it to the tag on the reader.
func (s *Simulator) WriteTag(hexData string) models.ActionResult {
	if !s.reader {
		return failure(MsgNoReader)
	}
	if hexData == "" {
		return failure("No data argument given for writenfc endpoint")
	}

	data, err := hex.DecodeString(hexData)
	if err != nil || len(data) == 0 {
		return failure(MsgInvalidHex + hexData)
	}
	if data[0] != ControlByteMusicFile {
		return failure(MsgUnknownControl + hex.EncodeToString(data[:1]))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.index[hex.EncodeToString(data)]
	if !ok {
		return failure(MsgUnknownHash)
	}
	if s.tag == nil {
		return failure(MsgWriteFailed + hexData)
	}

	copy(s.tag.data, data)
	s.logger.Info("wrote tag", "file", name, "uid", hex.EncodeToString(s.tag.uid))
	return models.ActionResult{Success: true, Message: MsgWriteSucceeded + name}
}

// DeleteFile removes the file identified by hexData from the music root and rescans it.
func (s *Simulator) DeleteFile(hexData string) models.ActionResult {
	if hexData == "" {
		return failure("No data argument given for deletefile endpoint")
	}

	data, err := hex.DecodeString(hexData)
	if err != nil || len(data) == 0 {
		return failure(MsgInvalidHex + hexData)
	}

	s.mu.Lock()
	name, ok := s.index[hex.EncodeToString(data)]
	s.mu.Unlock()
	if !ok {
		return failure(MsgUnknownHash)
	}

	if err := os.Remove(filepath.Join(s.root, name)); err != nil {
		s.logger.Warn("failed to delete music file", "file", name, "err", err)
		return failure(fmt.Sprintf("Error deleting file %s: %v", name, err))
	}

	if _, err := s.Scan(); err != nil {
		s.logger.Warn("rescan after delete failed", "err", err)
	}

	s.logger.Info("deleted music file", "file", name)
	return models.ActionResult{Success: true, Message: MsgDeleteSucceeded + name}
}

func failure(message string) models.ActionResult {
	return models.ActionResult{Success: false, Message: message}
}

// Router returns a [BasicRouter] serving the device API and home page.
func (s *Simulator) Router() *BasicRouter {
	r := NewBasicRouter()
	r.Use(RecoverMiddleware(s.logger), LoggingMiddleware(s.logger))

	r.Handler(web.NewHome(s, s.ResetWlanTimer))
	r.HandleFunc("/"+device.PathMusicFiles, s.handleMusicFiles)
	r.HandleFunc("/"+device.PathReadNFC, s.handleReadNFC)
	r.HandleFunc("/"+device.PathWlanTimeout, s.handleWlanTimeout)
	r.HandleFunc("/"+device.PathWriteNFC, s.handleWriteNFC)
	r.HandleFunc("/"+device.PathDeleteFile, s.handleDeleteFile)
	return r
}

func (s *Simulator) handleMusicFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.Scan()
	if err != nil {
		s.logger.Error("failed to list music files", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, files)
}

func (s *Simulator) handleReadNFC(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.NFCStatus())
}

func (s *Simulator) handleWlanTimeout(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, models.WlanTimeoutStatus{Timeout: float64(s.WlanTimeout())})
}

func (s *Simulator) handleWriteNFC(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.WriteTag(r.URL.Query().Get("data")))
}

func (s *Simulator) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.DeleteFile(r.URL.Query().Get("data")))
}

func (s *Simulator) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "err", err)
	}
}
