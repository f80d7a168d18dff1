package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
)

const actionColumns = "id, sequence, action, hash, name, device, success, message, created_at"

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// ActionRepository persists [models.JournalEntry] values in the actions table.
type ActionRepository struct {
	db *sql.DB
}

// NewActionRepository creates a new ActionRepository with the given database connection
func NewActionRepository(db *sql.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// Create inserts entry with a generated ID and sequence
func (r *ActionRepository) Create(entry *models.JournalEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "actions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO actions (id, sequence, action, hash, name, device, success, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		string(entry.Action()),
		entry.Hash(),
		entry.Name(),
		entry.Device(),
		entry.Success(),
		entry.Message(),
		entry.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}

	entry.SetID(id)
	entry.SetSequence(sequence)
	return nil
}

// Get retrieves an entry by ID
func (r *ActionRepository) Get(id string) (*models.JournalEntry, error) {
	query := "SELECT " + actionColumns + " FROM actions WHERE id = ?"

	entry, err := scanEntry(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrEntryNotFound, id)
	}
	return entry, err
}

// List retrieves entries matching criteria, most recent first.
//
// Supported criteria: "action" (string), "hash" (string), "success" (bool), and "limit" (int, 0 for all).
func (r *ActionRepository) List(criteria map[string]any) ([]*models.JournalEntry, error) {
	query := "SELECT " + actionColumns + " FROM actions WHERE 1 = 1"
	args := []any{}

	if action, ok := criteria["action"].(string); ok && action != "" {
		query += " AND action = ?"
		args = append(args, action)
	}

	if hash, ok := criteria["hash"].(string); ok && hash != "" {
		query += " AND hash = ?"
		args = append(args, hash)
	}

	if success, ok := criteria["success"].(bool); ok {
		query += " AND success = ?"
		args = append(args, success)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var entries []*models.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Delete removes an entry by ID
func (r *ActionRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM actions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEntryNotFound, id)
	}

	return nil
}

func scanEntry(s scanner) (*models.JournalEntry, error) {
	var (
		id        string
		sequence  int
		action    string
		hash      string
		name      string
		device    string
		success   bool
		message   string
		createdAt time.Time
	)

	err := s.Scan(&id, &sequence, &action, &hash, &name, &device, &success, &message, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan action: %w", err)
	}

	return models.RestoreJournalEntry(id, sequence, models.Action(action), hash, name, device, success, message, createdAt), nil
}
