package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/strata/internal/db"
	"github.com/banshee-data/strata/internal/export"
	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/pipeline"
)

func runClassify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the SQLite database")
	modelID := fs.String("model", "", "Model version ID (required)")
	projectID := fs.String("project", "", "Project ID for events and control points (required)")
	configPath := fs.String("config", "", "Path to a JSON config file (defaults built in)")
	out := fs.String("out", "", "Write classified events as GeoJSON to this path")
	asJSON := fs.Bool("json", false, "Print the full report as JSON")
	fs.Parse(args)

	if *modelID == "" || *projectID == "" {
		return errors.New("-model and -project are required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	report, err := pipeline.ClassifyEvents(ctx, store, store, store, *modelID, *projectID, pipeline.OptionsFromConfig(cfg))
	switch {
	case errors.Is(err, strata.ErrNoPointsProcessed):
		log.Printf("warning: %v", err)
	case err != nil:
		return err
	}

	if *out != "" {
		if err := export.WriteFile(*out, export.EventsGeoJSON(report)); err != nil {
			return err
		}
		log.Printf("wrote %d events to %s", len(report.Events), *out)
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printTally(os.Stdout, report)
	return nil
}

func printTally(w io.Writer, r *pipeline.Report) {
	fmt.Fprintf(w, "run %s  model %s  project %s\n", r.RunID, r.ModelID, r.ProjectID)
	fmt.Fprintf(w, "transform %s (%s)\n", r.Transform, r.Quality)
	fmt.Fprintf(w, "%-24s %8s\n", "stratum", "events")
	for _, d := range r.Strata {
		fmt.Fprintf(w, "%-24s %8d\n", d.Name, r.Tally.ByStratum[d.Name])
	}
	fmt.Fprintf(w, "%-24s %8d\n", "(unmatched)", r.Tally.Unmatched)
	fmt.Fprintf(w, "%-24s %8d\n", "(outside survey)", r.Tally.OutOfRange)
	fmt.Fprintf(w, "%-24s %8d\n", "total", r.Tally.Total)
}
