package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"travel-ops/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag    bool
	jsonOutput bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the backing stores",
	Long:  `Checks the departure tables, the snapshot bucket and the stored snapshot's schema version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(true, true, true)
	},
}

var serverIntegrityCmd = &cobra.Command{
	Use:   "server",
	Short: "Check the departure tables against the models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(true, false, false)
	},
}

var storageIntegrityCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the snapshot bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(false, true, false)
	},
}

var snapshotIntegrityCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Check the stored snapshot's schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(false, false, true)
	},
}

func init() {
	storageIntegrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket when it is missing")
	integrityCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print reports as JSON")

	integrityCmd.AddCommand(serverIntegrityCmd, storageIntegrityCmd, snapshotIntegrityCmd)
	RootCmd.AddCommand(integrityCmd)
}

func runIntegrityChecks(runServer, runStorage, runSnapshot bool) error {
	ctx := context.Background()
	d, err := loadDeps(ctx, false)
	if err != nil {
		return err
	}
	defer d.Close(ctx)
	logg := d.logger

	svc := integrity.NewService(integrity.Options{
		DB:             d.db,
		Client:         d.store,
		Bucket:         d.cfg.Storage.Bucket,
		Region:         d.cfg.Storage.Region,
		SnapshotObject: d.cfg.Snapshot.ObjectName,
		Backend:        d.backend,
	}, logg)

	if runServer {
		logg.Info("Checking server schema integrity...", zap.String("driver", d.cfg.Database.Driver))
		report, err := svc.CheckServer()
		switch {
		case err != nil:
			logg.Error("Server schema check failed", zap.Error(err))
		case jsonOutput:
			printJSON(report)
		case report.Matched:
			logg.Info("Server schema matches expected definition.", zap.String("driver", report.Driver))
		default:
			logg.Warn("Server schema mismatches found", zap.String("driver", report.Driver))
			for table, tblReport := range report.Tables {
				if tblReport.Status == "ok" {
					continue
				}
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if runStorage {
		logg.Info("Checking storage...", zap.String("bucket", d.cfg.Storage.Bucket))
		report, err := svc.CheckStorage(ctx)
		switch {
		case err != nil:
			logg.Error("Storage check failed", zap.Error(err))
		case jsonOutput:
			printJSON(report)
		default:
			logg.Info("Storage report",
				zap.Bool("bucket_exists", report.BucketExists),
				zap.Bool("snapshot_present", report.SnapshotPresent),
				zap.Int64("snapshot_size", report.SnapshotSize))
		}
		if err == nil && !report.BucketExists && fixFlag {
			if err := svc.FixStorage(ctx); err != nil {
				return fmt.Errorf("failed to fix storage: %w", err)
			}
		}
	}

	if runSnapshot {
		report, err := svc.CheckSnapshot(ctx)
		switch {
		case err != nil:
			logg.Error("Snapshot check failed", zap.Error(err))
		case jsonOutput:
			printJSON(report)
		case !report.Present:
			logg.Info("No snapshot stored yet")
		case report.UpToDate:
			logg.Info("Snapshot is at the current schema version", zap.Int("version", report.SchemaVersion))
		default:
			logg.Warn("Snapshot needs migrating; run 'migrate snapshot'",
				zap.Int("version", report.SchemaVersion),
				zap.Int("current", report.CurrentVersion))
		}
	}
	return nil
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
