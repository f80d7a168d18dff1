package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/nfcmusik/internal/formatter"
	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints journal entries, most recent first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if action := strings.ToLower(cmd.String("action")); action != "" {
		if !models.Action(action).Valid() {
			return fmt.Errorf("%w: unknown action %q", shared.ErrInvalidArgument, action)
		}
		criteria["action"] = action
	}
	if hash := cmd.String("hash"); hash != "" {
		criteria["hash"] = hash
	}
	if cmd.Bool("failed") {
		criteria["success"] = false
	}

	repo, closeJournal, err := r.journal()
	if err != nil {
		return err
	}
	defer closeJournal()
	if repo == nil {
		return fmt.Errorf("%w: journal is disabled (journal.enabled = false)", shared.ErrInvalidConfig)
	}

	entries, err := repo.List(criteria)
	if err != nil {
		return err
	}
	r.logger.Debug("loaded journal entries", "count", len(entries))

	out, err := formatter.RenderJournal(format, entries)
	if err != nil {
		return err
	}
	return r.writePlain("%s", out)
}
