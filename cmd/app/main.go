// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gnos-os/gnos/cmd/app/commands"
)

var version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "gnos",
		Usage:   "Capability-secured virtual filesystem with pluggable backend drivers",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the admin API and metrics servers",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations for the SQL audit backends",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "issue-token",
				Usage: "Issue a capability token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "path-scope",
						Aliases:  []string{"s"},
						Required: true,
						Usage:    "Path prefix the token covers (e.g., /proc/assistant-small)",
					},
					&cli.StringFlag{
						Name:    "permissions",
						Aliases: []string{"p"},
						Usage:   "Comma-separated permissions (read, write, list); defaults from config",
					},
					&cli.IntFlag{
						Name:    "ttl-seconds",
						Aliases: []string{"t"},
						Value:   3600,
						Usage:   "Token lifetime in seconds (clamped to the configured maximum)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunIssueToken(
						ctx,
						commands.DefaultIO(),
						cmd.String("path-scope"),
						cmd.String("permissions"),
						int64(cmd.Int("ttl-seconds")),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "revoke-token",
				Usage: "Revoke a capability token on a running server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Token ID (UUID)",
					},
					&cli.StringFlag{
						Name:    "server-url",
						Aliases: []string{"u"},
						Value:   "http://localhost:8080",
						Usage:   "Base URL of the running server",
					},
					&cli.StringFlag{
						Name:     "admin-key",
						Aliases:  []string{"k"},
						Required: true,
						Usage:    "Admin API key",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRevokeToken(
						ctx,
						os.Stdout,
						cmd.String("server-url"),
						cmd.String("admin-key"),
						cmd.String("id"),
					)
				},
			},
			{
				Name:  "list-mounts",
				Usage: "Show which driver serves each mount prefix",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunListMounts(commands.DefaultIO(), cmd.String("format"))
				},
			},
			{
				Name:  "list-audit-logs",
				Usage: "List audit records from the configured store",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "offset",
						Aliases: []string{"o"},
						Value:   0,
						Usage:   "Number of records to skip",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   50,
						Usage:   "Maximum number of records to return",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunListAuditLogs(
						ctx,
						commands.DefaultIO(),
						int(cmd.Int("offset")),
						int(cmd.Int("limit")),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "verify-audit-logs",
				Usage: "Verify the signature of every stored audit record",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunVerifyAuditLogs(ctx, commands.DefaultIO(), cmd.String("format"))
				},
			},
			{
				Name:  "hash-admin-key",
				Usage: "Generate an admin API key hash for configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "key",
						Aliases: []string{"k"},
						Usage:   "Key to hash (omit to generate a random key)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunHashAdminKey(os.Stdout, cmd.String("key"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
