package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/nfcmusik/internal/models"
)

type fakeSource struct {
	files []models.MusicFile
	nfc   models.NfcStatus
	wlan  int
}

func (f fakeSource) Files() []models.MusicFile   { return f.files }
func (f fakeSource) NFCStatus() models.NfcStatus { return f.nfc }
func (f fakeSource) WlanTimeout() int            { return f.wlan }

func TestHome(t *testing.T) {
	src := fakeSource{
		files: []models.MusicFile{{Name: "<b>song</b>.mp3", Hash: "11223344556677889900aabbccddeeff"}},
		nfc:   models.NfcStatus{Description: "No tag present", UID: "none", Data: "none"},
		wlan:  95,
	}

	t.Run("renders files, status, and countdown", func(t *testing.T) {
		visits := 0
		h := NewHome(src, func() { visits++ })

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()

		if !strings.Contains(body, "NFC Tag Status: No tag present (UID: none, data: none)") {
			t.Errorf("missing nfc status, got: %s", body)
		}
		if !strings.Contains(body, "WLAN shuts down in 1:35") {
			t.Errorf("missing countdown, got: %s", body)
		}
		if !strings.Contains(body, "&lt;b&gt;song&lt;/b&gt;.mp3") {
			t.Error("file names should be escaped")
		}
		if !strings.Contains(body, "11223344…eeff") {
			t.Error("expected short hash")
		}
		if visits != 1 {
			t.Errorf("expected one visit, got %d", visits)
		}
	})

	t.Run("hides countdown at zero", func(t *testing.T) {
		empty := fakeSource{nfc: src.nfc}
		rec := httptest.NewRecorder()
		NewHome(empty, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		body := rec.Body.String()
		if strings.Contains(body, "WLAN shuts down") {
			t.Error("countdown should be hidden")
		}
		if !strings.Contains(body, "No music files") {
			t.Error("expected empty listing message")
		}
	})

	t.Run("rejects other methods", func(t *testing.T) {
		visits := 0
		rec := httptest.NewRecorder()
		NewHome(src, func() { visits++ }).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if visits != 0 {
			t.Error("rejected request should not count as a visit")
		}
	})

	t.Run("routes", func(t *testing.T) {
		routes := NewHome(src, nil).Routes()
		if len(routes) != 1 || routes[0] != "/{$}" {
			t.Errorf("unexpected routes: %v", routes)
		}
	})
}
