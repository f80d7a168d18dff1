// package formatter renders music file listings and journal entries as plain text, CSV, Markdown, or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
)

// Format names an output format accepted by the CLI.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatText, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat resolves a user supplied format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// RenderFiles renders a music file listing in format f.
func RenderFiles(f Format, files []models.MusicFile) ([]byte, error) {
	switch f {
	case FormatText:
		return FilesToText(files)
	case FormatCSV:
		return FilesToCSV(files)
	case FormatMarkdown:
		return FilesToMarkdown(files)
	case FormatJSON:
		return toJSON(files)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// RenderJournal renders journal entries in format f.
func RenderJournal(f Format, entries []*models.JournalEntry) ([]byte, error) {
	switch f {
	case FormatText:
		return JournalToText(entries)
	case FormatCSV:
		return JournalToCSV(entries)
	case FormatMarkdown:
		return JournalToMarkdown(entries)
	case FormatJSON:
		return toJSON(journalRecords(entries))
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// FilesToCSV converts a file listing to CSV with columns: Name, Hash
func FilesToCSV(files []models.MusicFile) ([]byte, error) {
	records := make([][]string, 0, len(files))
	for _, f := range files {
		records = append(records, []string{f.Name, f.Hash})
	}
	return writeCSV([]string{"Name", "Hash"}, records)
}

// FilesToMarkdown converts a file listing to a Markdown table
func FilesToMarkdown(files []models.MusicFile) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Music Files\n\n")
	buf.WriteString(fmt.Sprintf("**Files**: %d\n\n", len(files)))

	if len(files) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Name | Hash |\n")
	buf.WriteString("|---|------|------|\n")
	for i, f := range files {
		buf.WriteString(fmt.Sprintf("| %d | %s | `%s` |\n", i+1, escapeCell(f.Name), f.Hash))
	}

	return buf.Bytes(), nil
}

// FilesToText converts a file listing to plain text, one numbered file per line
func FilesToText(files []models.MusicFile) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Files: %d\n\n", len(files)))
	for i, f := range files {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, f.Name, f.Hash))
	}

	return buf.Bytes(), nil
}

// JournalToCSV converts journal entries to CSV with columns: Sequence, Time, Action, Name, Hash, Success, Message
func JournalToCSV(entries []*models.JournalEntry) ([]byte, error) {
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{
			strconv.Itoa(e.Sequence()),
			e.CreatedAt().Format(time.RFC3339),
			string(e.Action()),
			e.Name(),
			e.Hash(),
			strconv.FormatBool(e.Success()),
			e.Message(),
		})
	}
	return writeCSV([]string{"Sequence", "Time", "Action", "Name", "Hash", "Success", "Message"}, records)
}

// JournalToMarkdown converts journal entries to a Markdown table
func JournalToMarkdown(entries []*models.JournalEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Action History\n\n")
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(entries)))

	if len(entries) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Time | Action | Name | Result | Message |\n")
	buf.WriteString("|---|------|--------|------|--------|---------|\n")
	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			e.Sequence(),
			e.CreatedAt().Format(time.DateTime),
			e.Action(),
			escapeCell(displayName(e)),
			resultWord(e.Success()),
			escapeCell(e.Message()),
		))
	}

	return buf.Bytes(), nil
}

// JournalToText converts journal entries to plain text
func JournalToText(entries []*models.JournalEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(entries)))
	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("#%d %s %-6s %-4s %s: %s\n",
			e.Sequence(),
			e.CreatedAt().Format(time.DateTime),
			e.Action(),
			resultWord(e.Success()),
			displayName(e),
			e.Message(),
		))
	}

	return buf.Bytes(), nil
}

// journalRecord is the JSON shape of a journal entry.
type journalRecord struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	Action    string    `json:"action"`
	Hash      string    `json:"hash"`
	Name      string    `json:"name"`
	Device    string    `json:"device,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func journalRecords(entries []*models.JournalEntry) []journalRecord {
	out := make([]journalRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, journalRecord{
			ID:        e.ID(),
			Sequence:  e.Sequence(),
			Action:    string(e.Action()),
			Hash:      e.Hash(),
			Name:      e.Name(),
			Device:    e.Device(),
			Success:   e.Success(),
			Message:   e.Message(),
			CreatedAt: e.CreatedAt(),
		})
	}
	return out
}

func toJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// displayName falls back to the short hash when the file name wasn't known.
func displayName(e *models.JournalEntry) string {
	if e.Name() != "" {
		return e.Name()
	}
	return shared.ShortHash(e.Hash())
}

func resultWord(success bool) string {
	if success {
		return "ok"
	}
	return "fail"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
