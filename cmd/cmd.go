// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the database and optionally provisions the admin.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the database and provision the admin identity",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "consent",
				Usage: "Run the Google consent flow and store the admin refresh token",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Local port for the consent callback",
				Value: 3000,
			},
		},
		Action: r.Setup,
	}
}

// serveCommand runs the playlist mirror web service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the playlist mirror web service",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}

// mirrorCommand runs a single mirror pass from the terminal.
func mirrorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "mirror",
		Usage: "Mirror the configured Spotify playlist onto YouTube once",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Source playlist ID (defaults to the configured one)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Also write the source track list (csv, md, or text)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path for --export",
			},
		},
		Action: r.Mirror,
	}
}

// tuiCommand returns the top-level TUI command for the interactive mirror flow.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive mirror TUI",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Source playlist ID (defaults to the configured one)",
			},
		},
		Action: r.TUI,
	}
}

// migrateCommand manages database migrations.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database migrations",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply pending migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.MigrateUp,
			},
			{
				Name:    "rollback",
				Aliases: []string{"down"},
				Usage:   "Roll back the most recent migration",
				Flags:   []cli.Flag{configFlag()},
				Action:  r.MigrateRollback,
			},
		},
	}
}
