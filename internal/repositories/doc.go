// Package repositories implements SQLite persistence for the action journal.
//
// The journal records every write and delete issued from the dashboard so the outcome of past tag writes
// can be reviewed with the history command.
//
// Key Implementations:
//   - [ActionRepository] : journal entries with filtering by action, hash, and outcome
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
