package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/ForestKatsch/apogee-ssg/internal"
	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
)

var version = "dev"

func options(cmd *cli.Command) []internal.Option {
	return []internal.Option{
		internal.WithConfigFile(cmd.String("config")),
		internal.WithVersion(version),
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to the site configuration file (.toml or .yaml)",
		DefaultText: "config.toml",
		Value:       "config.toml",
		Sources:     cli.EnvVars("APOGEE_CONFIG"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "apogee",
		Usage:   "Static site generator with a staged transform pipeline",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Build the site into the output directory",
				Flags: []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return internal.Build(ctx, options(cmd)...)
				},
			},
			{
				Name:  "serve",
				Usage: "Build the site and serve it with the preview API",
				Flags: []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return internal.Serve(ctx, options(cmd)...)
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve build tools over MCP on stdin/stdout",
				Flags: []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return internal.ServeMCP(ctx, options(cmd)...)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		attrs := []any{slog.String("kind", string(apperr.KindOf(err)))}
		for k, v := range apperr.DataOf(err) {
			attrs = append(attrs, slog.Any(k, v))
		}
		slog.Error(err.Error(), attrs...)
		os.Exit(1)
	}
}
