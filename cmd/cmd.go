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

func relayFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "relay",
		Usage: "Fetch converted audio through a running service at this base URL",
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// serveCommand starts the HTTP service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the music player HTTP service",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the service URL in the default browser",
			},
		},
		Action: r.Serve,
	}
}

// songsCommand handles catalog operations.
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List songs in the catalog",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Prefix filter on title or artist",
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
				},
				Action: r.SongsList,
			},
			{
				Name:  "export",
				Usage: "Export the catalog grouped by artist",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Cover downloads per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download cover art for markdown exports",
					},
				},
				Action: r.SongsExport,
			},
		},
	}
}

// uploadCommand submits a new song through the upload pipeline.
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload a song (file or video link)",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "title",
				Usage: "Song title",
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Artist name",
			},
			&cli.StringFlag{
				Name:  "method",
				Usage: "Upload method: file or link",
			},
			&cli.StringFlag{
				Name:  "cover",
				Usage: "Path to cover image",
			},
			&cli.StringFlag{
				Name:  "audio",
				Usage: "Path to MP3 file (file method)",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Video URL to convert (link method)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the created song as JSON",
			},
			relayFlag(),
		},
		Action: r.Upload,
	}
}

// convertCommand drives the conversion API directly.
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert a video URL to MP3 and print the download link",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Download the MP3 to this path",
			},
			relayFlag(),
		},
		Action: r.Convert,
	}
}

// tuiCommand returns the top-level TUI command for interactive playback.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive player",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
