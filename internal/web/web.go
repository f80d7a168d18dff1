// Package web renders the music box home page.
//
// The page lists the music files with their hashes, shows the reader status, and the WLAN countdown. Loading it
// counts as user activity: the configured visit hook runs before rendering, which the simulator uses to restart
// its WLAN shutdown timer.
//
// Routes
//
//	GET / → home page
package web

import (
	"html/template"
	"net/http"

	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
)

// Source provides the data shown on the home page.
type Source interface {
	Files() []models.MusicFile
	NFCStatus() models.NfcStatus
	WlanTimeout() int
}

var homeTemplate = template.Must(template.New("home").Funcs(template.FuncMap{
	"short":     shared.ShortHash,
	"countdown": func(s int) string { return shared.FormatCountdown(float64(s)) },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>NFC Music Box</title></head>
<body>
<h1>NFC Music Box</h1>
<p id="nfc">NFC Tag Status: {{.NFC}}</p>
{{if gt .Wlan 0}}<p id="wlan">WLAN shuts down in {{countdown .Wlan}}</p>{{end}}
<table id="files">
<tr><th>Name</th><th>Hash</th></tr>
{{range .Files}}<tr><td>{{.Name}}</td><td title="{{.Hash}}">{{short .Hash}}</td></tr>
{{else}}<tr><td colspan="2">No music files</td></tr>
{{end}}</table>
</body>
</html>
`))

type homeData struct {
	Files []models.MusicFile
	NFC   models.NfcStatus
	Wlan  int
}

// Home serves the home page. It satisfies the server Handler interface.
type Home struct {
	src     Source
	onVisit func()
}

// NewHome creates a home page over src. onVisit may be nil.
func NewHome(src Source, onVisit func()) *Home {
	return &Home{src: src, onVisit: onVisit}
}

// Routes returns the HTTP routes this handler serves.
func (h *Home) Routes() []string {
	return []string{"/{$}"}
}

func (h *Home) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.onVisit != nil {
		h.onVisit()
	}

	data := homeData{
		Files: h.src.Files(),
		NFC:   h.src.NFCStatus(),
		Wlan:  h.src.WlanTimeout(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTemplate.Execute(w, data); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
