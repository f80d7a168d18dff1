// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/nfcmusik/internal/shared"
	"github.com/urfave/cli/v3"
)

// globalFlags are accepted before or after any subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Usage:   "Base URL of the music box (overrides device.url)",
			Sources: cli.EnvVars(shared.EnvDeviceURL),
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Path to a .env file with NFCMUSIK_* overrides",
			Value: ".env",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// tuiCommand launches the interactive dashboard
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"ui", "dashboard"},
		Usage:   "Interactive dashboard for the music box",
		Action:  r.TUI,
	}
}

func filesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "files",
		Aliases: []string{"ls"},
		Usage:   "List the music files on the device",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, csv, markdown, json)",
				Value:   "text",
			},
		},
		Action: r.Files,
	}
}

func writeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "write",
		Usage: "Write a music file hash to the tag on the reader",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "hash"},
		},
		Action: r.Write,
	}
}

func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"rm"},
		Usage:   "Delete a music file from the device",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "hash"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: r.Delete,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the NFC tag status and WLAN fallback timeout",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Status,
	}
}

func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll the device and print each status change",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Stop after this many NFC polls (0 runs until interrupted)",
			},
		},
		Action: r.Watch,
	}
}

func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "open",
		Usage: "Open the device web page in the system browser",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "Request the page without a browser (resets the WLAN shutdown timer)",
			},
		},
		Action: r.Open,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"log"},
		Usage:   "List recorded write and delete actions",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of entries (0 for all)",
				Value:   20,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, csv, markdown, json)",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:  "action",
				Usage: "Only show entries for this action (write, delete)",
			},
			&cli.StringFlag{
				Name:  "hash",
				Usage: "Only show entries for this file hash",
			},
			&cli.BoolFlag{
				Name:  "failed",
				Usage: "Only show failed actions",
			},
		},
		Action: r.History,
	}
}

func simulateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "simulate",
		Aliases: []string{"sim"},
		Usage:   "Run a simulated music box serving the device API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "music-root",
				Usage: "Directory holding the simulated music files (default: simulator.music_root)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: simulator.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: simulator.port)",
			},
			&cli.IntFlag{
				Name:  "wlan-off-delay",
				Usage: "Seconds until WLAN fallback (default: simulator.wlan_off_delay)",
			},
			&cli.BoolFlag{
				Name:  "no-reader",
				Usage: "Simulate a device without a working tag reader",
			},
		},
		Action: r.Simulate,
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Create a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the journal database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
