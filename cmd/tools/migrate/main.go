// Command migrate applies the SQL migrations in ./migrations to the database
// configured by the environment, using Atlas for versioned execution.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"mathsandmelody-api/internal/pkg/config"

	"ariga.io/atlas-go-sdk/atlasexec"
)

func main() {
	var (
		dirFlag = flag.String("dir", "migrations", "directory containing migration files")
		dryRun  = flag.Bool("dry-run", false, "print pending migrations without applying")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	workdir, err := atlasexec.NewWorkingDir(
		atlasexec.WithMigrations(os.DirFS(*dirFlag)),
	)
	if err != nil {
		slog.Error("failed to prepare atlas working directory", "error", err)
		os.Exit(1)
	}
	defer func() { _ = workdir.Close() }()

	client, err := atlasexec.NewClient(workdir.Path(), "atlas")
	if err != nil {
		slog.Error("failed to create atlas client", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		status, err := client.MigrateStatus(ctx, &atlasexec.MigrateStatusParams{
			URL: cfg.DB.BuildDSN(),
		})
		if err != nil {
			slog.Error("failed to read migration status", "error", err)
			os.Exit(1)
		}
		slog.Info("migration status", "current", status.Current, "next", status.Next, "pending", len(status.Pending))
		return
	}

	res, err := client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{
		URL: cfg.DB.BuildDSN(),
	})
	if err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("migrations applied", "target", res.Target, "applied", len(res.Applied))
}
