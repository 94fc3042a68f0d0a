// Package main provides the sentinel entry point.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/layer-3/sentinel/cmd/sentinel/commands"
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "sentinel",
		Usage:   "Session and credential service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations for the postgres user directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Value:   commands.DefaultMigrationsPath,
						Usage:   "Migration source URL",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations(cmd.String("path"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
