package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/nfcmusik/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the built-in config template to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Created %s\n", path)
	r.writePlain("Set device.url to the address of your music box, then run 'nfcmusik status'\n")
	return nil
}

// SetupDatabase initializes the journal database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Journal
	if !cfg.Enabled {
		r.logger.Warn("journal is disabled; the database will not be used until journal.enabled = true")
	}

	if _, err := os.Stat(cfg.Path); os.IsNotExist(err) {
		r.logger.Info("creating journal database", "path", cfg.Path)
	}

	r.logger.Info("running database migrations", "path", cfg.Path)
	db, err := shared.OpenJournal(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer closeDB(db, r.logger)

	r.logger.Infof("setup complete for database: %v", cfg.Path)
	return nil
}
