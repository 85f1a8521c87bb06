package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"travel-ops/core/config"
	"travel-ops/core/migrate"
	"travel-ops/core/reconcile"
	"travel-ops/core/storage"
	"travel-ops/core/utils"
	"travel-ops/feature/snapshot"
)

// Prints how the migrated snapshot's ops groups key into the departure index,
// without writing anything back.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	backend, closer, err := snapshot.NewBackend(ctx, cfg.Snapshot, client, cfg.Storage.Bucket)
	if err != nil {
		log.Fatal(err)
	}
	defer closer(ctx)

	data, found, err := backend.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if !found {
		fmt.Println("No snapshot stored")
		return
	}

	raw, err := migrate.Decode(data)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== Migration ===")
	state, report := migrate.Default().MigrateWithReport(raw)
	fmt.Printf("Schema version %d -> %d, applied %v\n", report.From, report.To, report.Applied)

	fmt.Println("\n=== Ops groups ===")
	packages, _ := utils.Slice(state[migrate.KeyPackages])
	groupCount := 0
	for _, p := range packages {
		pkg, ok := utils.Map(p)
		if !ok {
			continue
		}
		project, _ := utils.Map(pkg[migrate.KeyOpsProject])
		groups, _ := utils.Slice(project[migrate.KeyGroups])

		departures := make([]reconcile.Departure, 0, len(groups))
		for _, g := range groups {
			group, ok := utils.Map(g)
			if !ok {
				continue
			}
			departures = append(departures, reconcile.Departure{
				ID:            utils.StringOr(group["id"], ""),
				Airline:       utils.StringOr(group["airline"], ""),
				DepartureDate: utils.StringOr(group["departureDate"], ""),
				ReturnDate:    utils.StringOr(group["returnDate"], ""),
			})
		}
		groupCount += len(departures)

		idx := reconcile.BuildIndex(departures)
		fmt.Printf("Package %v: %d groups, %d index keys\n", pkg["id"], len(departures), idx.Len())
		for _, d := range departures {
			fmt.Printf("  %s  key=%q\n", d.ID, reconcile.DepartureKey(d))
		}
	}

	output := map[string]interface{}{
		"from":     report.From,
		"to":       report.To,
		"applied":  report.Applied,
		"packages": len(packages),
		"groups":   groupCount,
	}
	out, _ := json.MarshalIndent(output, "", "  ")
	os.WriteFile("debug_reconcile.json", out, 0644)

	fmt.Println("\nDebug complete. Check debug_reconcile.json for details.")
}

