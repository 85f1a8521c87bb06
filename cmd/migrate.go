package cmd

import (
	"context"
	"fmt"

	"travel-ops/core/metrics"
	"travel-ops/core/migrate"
	"travel-ops/feature/departures"
	"travel-ops/feature/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dryRunMigrate bool

// migrateCmd is the parent command for schema upgrades.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade stored state to the current schema",
}

// snapshotMigrateCmd upgrades the state snapshot in place.
var snapshotMigrateCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Migrate the state snapshot to the current schema version",
	Long: `Reads the state snapshot, applies every pending migration in order and
writes it back. With --dry-run the migrated snapshot is reported but not saved.`,
	RunE: runSnapshotMigrate,
}

// databaseMigrateCmd creates or updates the departure tables.
var databaseMigrateCmd = &cobra.Command{
	Use:   "database",
	Short: "Create or update the departure tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, err := loadDeps(ctx, true)
		if err != nil {
			return err
		}
		defer d.Close(ctx)

		svc := departures.NewService(d.db, d.logger, metrics.NewNop())
		if err := svc.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate departure tables: %w", err)
		}
		d.logger.Info("Departure tables are up to date")
		return nil
	},
}

func init() {
	snapshotMigrateCmd.Flags().BoolVar(&dryRunMigrate, "dry-run", false, "Report pending migrations without saving")

	migrateCmd.AddCommand(snapshotMigrateCmd)
	migrateCmd.AddCommand(databaseMigrateCmd)
	RootCmd.AddCommand(migrateCmd)
}

func runSnapshotMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := loadDeps(ctx, false)
	if err != nil {
		return err
	}
	defer d.Close(ctx)
	l := d.logger

	if dryRunMigrate {
		data, found, err := d.backend.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		if !found {
			l.Info("No snapshot stored yet")
			return nil
		}
		state, err := migrate.Decode(data)
		if err != nil {
			return err
		}
		_, report := migrate.Default().MigrateWithReport(state)
		printMigrationReport(l, report)
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	mgr := snapshot.NewManager(d.backend, l, metrics.NewNop())
	if _, err := mgr.Load(ctx); err != nil {
		return fmt.Errorf("failed to migrate snapshot: %w", err)
	}
	status := mgr.Status()
	printMigrationReport(l, status.LastMigration)
	l.Info("Snapshot ready",
		zap.Int("schema_version", status.SchemaVersion),
		zap.Int("packages", status.Packages),
		zap.Int("bookings", status.Bookings))
	return nil
}

func printMigrationReport(l *zap.Logger, report migrate.Report) {
	if len(report.Applied) == 0 {
		l.Info("Snapshot already at current schema version", zap.Int("version", report.To))
		return
	}
	l.Info("Migrations",
		zap.Int("from", report.From),
		zap.Int("to", report.To),
		zap.Strings("applied", report.Applied))
}
