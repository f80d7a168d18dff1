// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The dashboard has two views:
//  1. [DashboardView] : the music file list with per-row write/delete state, the NFC tag status box, the WLAN
//     fallback banner, and the status line
//  2. [ConfirmView] : the yes/no prompt shown before a file is deleted
//
// Action failures open a modal over either view; esc or enter dismisses it.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg
// union type. All state lives in a [dashboard.Controller]: the model starts its polling loops, re-renders from
// [dashboard.Controller.Snapshot] whenever the controller announces a change, and runs writes, deletes, and
// refreshes as commands so the event loop never blocks on the device.
//
// Keyboard navigation uses vim-style bindings (j/k, w, d, r, o, y/n, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
