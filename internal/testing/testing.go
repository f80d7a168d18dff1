// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/nfcmusik/internal/models"
)

// MockDevice is a test double for [device.Device] backed by an in-memory file list.
//
// Write and delete responses come from WriteResult/DeleteResult; a non-nil *Err field makes the
// corresponding call fail at the transport level.
type MockDevice struct {
	mu sync.Mutex

	Files        []models.MusicFile
	NFC          models.NfcStatus
	Wlan         []float64 // successive timeouts returned by WlanTimeout; the last one repeats
	WriteResult  models.ActionResult
	DeleteResult models.ActionResult

	FilesErr  error
	NFCErr    error
	WlanErr   error
	WriteErr  error
	DeleteErr error

	// Block, when set, is waited on by action calls so tests can observe the pending state.
	Block chan struct{}

	Calls map[string]int
	Last  map[string]string
}

// NewMockDevice returns a device with the given files and successful actions.
func NewMockDevice(files ...models.MusicFile) *MockDevice {
	return &MockDevice{
		Files:        files,
		NFC:          models.NfcStatus{Description: "No tag present", UID: "none", Data: "none"},
		WriteResult:  models.ActionResult{Success: true, Message: "ok"},
		DeleteResult: models.ActionResult{Success: true, Message: "deleted"},
		Calls:        map[string]int{},
		Last:         map[string]string{},
	}
}

func (m *MockDevice) record(name, arg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
		m.Last = map[string]string{}
	}
	m.Calls[name]++
	m.Last[name] = arg
}

// CallCount returns how many times the named method was called.
func (m *MockDevice) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

// SetFiles replaces the backing file list.
func (m *MockDevice) SetFiles(files ...models.MusicFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files = files
}

func (m *MockDevice) MusicFiles(ctx context.Context) ([]models.MusicFile, error) {
	m.record("MusicFiles", "")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FilesErr != nil {
		return nil, m.FilesErr
	}
	out := make([]models.MusicFile, len(m.Files))
	copy(out, m.Files)
	return out, nil
}

func (m *MockDevice) ReadNFC(ctx context.Context) (*models.NfcStatus, error) {
	m.record("ReadNFC", "")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NFCErr != nil {
		return nil, m.NFCErr
	}
	s := m.NFC
	return &s, nil
}

func (m *MockDevice) WlanTimeout(ctx context.Context) (*models.WlanTimeoutStatus, error) {
	m.record("WlanTimeout", "")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WlanErr != nil {
		return nil, m.WlanErr
	}
	timeout := 0.0
	if len(m.Wlan) > 0 {
		timeout = m.Wlan[0]
		if len(m.Wlan) > 1 {
			m.Wlan = m.Wlan[1:]
		}
	}
	return &models.WlanTimeoutStatus{Timeout: timeout}, nil
}

func (m *MockDevice) WriteNFC(ctx context.Context, hash string) (*models.ActionResult, error) {
	m.record("WriteNFC", hash)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return nil, m.WriteErr
	}
	r := m.WriteResult
	return &r, nil
}

func (m *MockDevice) DeleteFile(ctx context.Context, hash string) (*models.ActionResult, error) {
	m.record("DeleteFile", hash)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return nil, m.DeleteErr
	}
	r := m.DeleteResult
	if r.Success {
		kept := m.Files[:0:0]
		for _, f := range m.Files {
			if f.Hash != hash {
				kept = append(kept, f)
			}
		}
		m.Files = kept
	}
	return &r, nil
}

func (m *MockDevice) wait(ctx context.Context) error {
	if m.Block == nil {
		return nil
	}
	select {
	case <-m.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// MustWriteFile creates a file with the given content, failing the test on error.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}
