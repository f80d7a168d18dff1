package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/nfcmusik/internal/dashboard"
	"github.com/desertthunder/nfcmusik/internal/shared"
)

var _ list.Item = fileItem{}

// fileItem wraps a [dashboard.Row] to implement [list.Item].
type fileItem struct {
	row dashboard.Row
}

func (i fileItem) FilterValue() string { return i.row.File.Name }

func (i fileItem) Title() string {
	if badge := stateBadge(i.row.State); badge != "" {
		return fmt.Sprintf("%s %s", i.row.File.Name, badge)
	}
	return i.row.File.Name
}

func (i fileItem) Description() string {
	desc := shared.ShortHash(i.row.File.Hash)
	switch i.row.State {
	case dashboard.RowPending:
		desc = fmt.Sprintf("%s • working…", desc)
	case dashboard.RowSuccess, dashboard.RowError:
		if i.row.Message != "" {
			desc = fmt.Sprintf("%s • %s", desc, i.row.Message)
		}
	}
	return desc
}

// stateBadge renders the per-row control state. Idle rows have no badge.
func stateBadge(s dashboard.RowState) string {
	switch s {
	case dashboard.RowPending:
		return styles.warn.Render("…")
	case dashboard.RowSuccess:
		return styles.ok.Render("✓")
	case dashboard.RowError:
		return styles.err.Render("✗")
	default:
		return ""
	}
}

func fileItems(rows []dashboard.Row) []list.Item {
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = fileItem{row: row}
	}
	return items
}
