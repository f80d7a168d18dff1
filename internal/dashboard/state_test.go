package dashboard

import (
	"testing"
	"time"

	"github.com/desertthunder/nfcmusik/internal/models"
)

func TestFileList(t *testing.T) {
	t.Run("Replace keeps order", func(t *testing.T) {
		l := NewFileList()
		l.Replace([]models.MusicFile{songB, songA})

		hashes := l.Hashes()
		if len(hashes) != 2 || hashes[0] != "h2" || hashes[1] != "h1" {
			t.Errorf("unexpected order: %v", hashes)
		}
	})

	t.Run("Replace preserves state of surviving rows", func(t *testing.T) {
		now := time.Now()
		l := NewFileList()
		l.Replace([]models.MusicFile{songA, songB})
		l.row("h1").State = RowSuccess
		l.row("h1").Until = now.Add(time.Second)

		renamed := models.MusicFile{Name: "Song A (remaster)", Hash: "h1"}
		l.Replace([]models.MusicFile{renamed})

		row, ok := l.Get("h1")
		if !ok {
			t.Fatal("expected h1 to survive")
		}
		if row.StateAt(now) != RowSuccess {
			t.Errorf("expected success to survive refresh, got %v", row.StateAt(now))
		}
		if row.File.Name != "Song A (remaster)" {
			t.Errorf("expected name update, got %s", row.File.Name)
		}
		if _, ok := l.Get("h2"); ok {
			t.Error("expected h2 to be dropped")
		}
	})

	t.Run("Replace reports duplicates", func(t *testing.T) {
		l := NewFileList()
		if dropped := l.Replace([]models.MusicFile{songA, songA, songA}); dropped != 2 {
			t.Errorf("expected 2 dropped, got %d", dropped)
		}
		if l.Len() != 1 {
			t.Errorf("expected one row, got %d", l.Len())
		}
	})

	t.Run("Rows resolves expiry", func(t *testing.T) {
		now := time.Now()
		l := NewFileList()
		l.Replace([]models.MusicFile{songA})
		l.row("h1").State = RowError
		l.row("h1").Until = now

		if rows := l.Rows(now); rows[0].State != RowIdle {
			t.Errorf("expected idle at expiry, got %v", rows[0].State)
		}
		if rows := l.Rows(now.Add(-time.Millisecond)); rows[0].State != RowError {
			t.Errorf("expected error before expiry, got %v", rows[0].State)
		}
	})
}

func TestRowStateAt(t *testing.T) {
	now := time.Now()
	tc := []struct {
		name string
		row  Row
		want RowState
	}{
		{"idle stays idle", Row{State: RowIdle}, RowIdle},
		{"pending never expires", Row{State: RowPending}, RowPending},
		{"success before expiry", Row{State: RowSuccess, Until: now.Add(time.Second)}, RowSuccess},
		{"success after expiry", Row{State: RowSuccess, Until: now.Add(-time.Second)}, RowIdle},
		{"error at expiry", Row{State: RowError, Until: now}, RowIdle},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.StateAt(now); got != tt.want {
				t.Errorf("StateAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRowStateString(t *testing.T) {
	for state, want := range map[RowState]string{RowIdle: "idle", RowPending: "pending", RowSuccess: "success", RowError: "error"} {
		if state.String() != want {
			t.Errorf("expected %s, got %s", want, state.String())
		}
	}
}
