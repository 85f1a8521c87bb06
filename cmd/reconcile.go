package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"travel-ops/core/metrics"
	"travel-ops/core/reconcile"
	"travel-ops/feature/departures"
	"travel-ops/feature/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile package command
	flightsFile    string
	dryRunPackage  bool
	snapshotTarget bool
	yesConfirm     bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile departures with a new flight list",
	Long: `Reconcile a package's departures (ops groups) after its flights changed.
Matched departures keep their id, status and children; unmatched flights get a
new departure; departures no flight claims are deleted with their children.`,
}

// packageReconcileCmd plans and optionally applies a flight list change.
var packageReconcileCmd = &cobra.Command{
	Use:   "package <id>",
	Short: "Reconcile one package (report + optionally apply)",
	Long: `Reconcile one package's departures against a flight list read from a JSON file.
The file holds either an array of flight segments or {"flights": [...]}.

Examples:
  # Report only
  reconcile package pkg-1 --flights flights.json --dry-run

  # Apply with interactive confirmation
  reconcile package pkg-1 --flights flights.json

  # Apply to the state snapshot instead of the database, non-interactive
  reconcile package pkg-1 --flights flights.json --snapshot --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runPackageReconcile,
}

func init() {
	reconcileCmd.AddCommand(packageReconcileCmd)

	packageReconcileCmd.Flags().StringVar(&flightsFile, "flights", "", "JSON file with the new flight list")
	packageReconcileCmd.Flags().BoolVar(&dryRunPackage, "dry-run", false, "Print the plan without applying it")
	packageReconcileCmd.Flags().BoolVar(&snapshotTarget, "snapshot", false, "Reconcile the state snapshot's ops groups instead of the database")
	packageReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	_ = packageReconcileCmd.MarkFlagRequired("flights")

	RootCmd.AddCommand(reconcileCmd)
}

func runPackageReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	packageID := args[0]

	flights, err := readFlights(flightsFile)
	if err != nil {
		return err
	}

	d, err := loadDeps(ctx, !snapshotTarget)
	if err != nil {
		return err
	}
	defer d.Close(ctx)
	l := d.logger.With(zap.String("package_id", packageID))

	var target planner
	if snapshotTarget {
		target = snapshotPlanner{snapshot.NewManager(d.backend, l, metrics.NewNop())}
	} else {
		svc := departures.NewService(d.db, l, metrics.NewNop())
		if err := svc.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate departure tables: %w", err)
		}
		target = servicePlanner{svc}
	}

	// Step 1: Plan (always runs)
	l.Info("Planning reconciliation...", zap.Int("flights", len(flights)))
	plan, err := target.Plan(ctx, packageID, flights)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}

	// Step 2: Print report
	printReconcileReport(l, plan)

	if !plan.Changed || len(plan.Actions) == 0 {
		l.Info("Flight structure unchanged. Nothing to apply.")
		return nil
	}
	if dryRunPackage {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	// Step 3: Apply (if confirmed)
	if plan.Summary.Deleted > 0 && !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	l.Info("Applying actions...")
	applied, err := target.Apply(ctx, packageID, flights)
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}
	l.Info("Successfully executed actions", zap.Int("count", len(applied.Actions)))
	return nil
}

// planner abstracts over the relational store and the state snapshot.
type planner interface {
	Plan(ctx context.Context, packageID string, flights []reconcile.FlightSegment) (*reconcile.Plan, error)
	Apply(ctx context.Context, packageID string, flights []reconcile.FlightSegment) (*reconcile.Plan, error)
}

type servicePlanner struct{ svc *departures.Service }

func (p servicePlanner) Plan(ctx context.Context, id string, flights []reconcile.FlightSegment) (*reconcile.Plan, error) {
	return p.svc.UpdateFlights(ctx, id, flights, reconcile.Options{DryRun: true})
}

func (p servicePlanner) Apply(ctx context.Context, id string, flights []reconcile.FlightSegment) (*reconcile.Plan, error) {
	return p.svc.UpdateFlights(ctx, id, flights, reconcile.Options{Confirmed: true})
}

type snapshotPlanner struct{ mgr *snapshot.Manager }

func (p snapshotPlanner) Plan(ctx context.Context, id string, flights []reconcile.FlightSegment) (*reconcile.Plan, error) {
	return p.mgr.PlanFlights(ctx, id, flights)
}

func (p snapshotPlanner) Apply(ctx context.Context, id string, flights []reconcile.FlightSegment) (*reconcile.Plan, error) {
	return p.mgr.UpdateFlights(ctx, id, flights)
}

// readFlights accepts a bare array or an object with a flights field.
func readFlights(path string) ([]reconcile.FlightSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flights file: %w", err)
	}

	var flights []reconcile.FlightSegment
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &flights)
	} else {
		var wrapped struct {
			Flights *[]reconcile.FlightSegment `json:"flights"`
		}
		if err = json.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Flights == nil {
			return nil, fmt.Errorf("flights file has no flights list")
		}
		if wrapped.Flights != nil {
			flights = *wrapped.Flights
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse flights file: %w", err)
	}
	if flights == nil {
		flights = []reconcile.FlightSegment{}
	}
	return flights, nil
}

// printReconcileReport prints a formatted reconciliation report using logger.
// Every deletion is listed with the children it takes along.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Bool("changed", plan.Changed),
		zap.Int("departures", len(plan.Departures)),
		zap.Int("created", s.Created),
		zap.Int("updated", s.Updated),
		zap.Int("deleted", s.Deleted),
		zap.Int("deleted_children", s.DeletedChildren),
	)

	for _, action := range plan.Actions {
		fields := []zap.Field{
			zap.String("type", string(action.Type)),
			zap.String("departure_id", action.DepartureID),
			zap.String("label", action.Departure.FlightLabel),
			zap.String("reason", action.Reason),
		}
		if action.Type == reconcile.ActionDelete {
			l.Warn("Planned deletion", append(fields,
				zap.Int("supplier_links", len(action.Departure.SupplierLinks)),
				zap.Int("cost_lines", len(action.Departure.CostLines)),
				zap.Int("timeline_items", len(action.Departure.TimelineItems)),
			)...)
			continue
		}
		l.Info("Planned action", append(fields, zap.String("match", string(action.Match)))...)
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Departures will be deleted with their children. Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
