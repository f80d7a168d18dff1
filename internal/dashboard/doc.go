// Package dashboard holds the music box controller: application state plus the operations that change it.
//
// A single [Controller] owns a [State]: the keyed file list, the latest NFC status, the WLAN fallback
// countdown, the status line, and the modal. Frontends (the TUI, the CLI) never touch device responses
// directly; they call controller operations and render [Controller.Snapshot].
//
// # Operations
//
//   - [Controller.RefreshMusicFiles] : replace the file list from json/musicfiles
//   - [Controller.WriteNFC] : write a file hash to the tag on the reader
//   - [Controller.DeleteFile] : delete a file after confirmation, then refresh
//   - [Controller.PollNFC] / [Controller.PollWlanTimeout] : one poll of each status region
//   - [Controller.Run] : startup sequence, then both polling loops until the context ends
//
// # Row State
//
// Each row moves Idle → Pending → Success|Error → Idle. Success and Error carry an expiry; once the feedback
// duration passes they read back as Idle. A timer also emits an [EventRowChanged] at expiry so frontends
// repaint without polling.
//
// # Polling
//
// Each polling loop is fixed-delay: the next request starts one interval after the previous response, so a
// slow device never sees overlapping requests from the same loop. A failing cycle (error or panic) is logged
// and recorded as the region's last error; the loop keeps going.
//
// # Events
//
// State changes are announced on [Controller.Events] with non-blocking sends. An event only says that
// something changed; the snapshot is the source of truth.
package dashboard
