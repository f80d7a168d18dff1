// Package models defines the data exchanged with the music box and the records kept about it.
//
// The wire types ([MusicFile], [NfcStatus], [WlanTimeoutStatus], [ActionResult]) mirror the device's JSON
// endpoints one to one. [JournalEntry] is local only: it records the outcome of tag writes and file deletes
// issued from the dashboard.
package models
