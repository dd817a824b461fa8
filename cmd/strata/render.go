package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/strata/internal/db"
	"github.com/banshee-data/strata/internal/export"
	"github.com/banshee-data/strata/internal/strata/boundary"
	"github.com/banshee-data/strata/internal/strata/pipeline"
	"github.com/banshee-data/strata/internal/strata/surface"
)

// runMesh writes the render scene of a model version: its surface and a
// solid per layer, shaded by the front when -position is given.
func runMesh(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the SQLite database")
	modelID := fs.String("model", "", "Model version ID (required)")
	configPath := fs.String("config", "", "Path to a JSON config file (defaults built in)")
	axis := fs.String("axis", "", "Front axis, x or y (config front_axis)")
	direction := fs.String("direction", "", "Advance direction, positive or negative (config front_direction)")
	position := fs.Float64("position", 0, "Front position; when set every mesh carries its excavated mask")
	out := fs.String("out", "", "Write the scene as JSON to this path (required)")
	fs.Parse(args)

	if *modelID == "" || *out == "" {
		return errors.New("-model and -out are required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	var front *boundary.Front
	if flagSet(fs, "position") {
		f, err := parseFront(cfg, *axis, *direction, *position)
		if err != nil {
			return err
		}
		front = &f
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	scene, err := pipeline.BuildScene(ctx, store, *modelID, front, pipeline.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	printStats(os.Stdout, scene.Stats)
	for _, l := range scene.Layers {
		fmt.Printf("layer %-24s %-8s %d triangles\n", l.Name, l.Kind, l.Mesh.TriangleCount())
	}
	if err := export.WriteJSON(*out, scene); err != nil {
		return err
	}
	log.Printf("wrote scene to %s", *out)
	return nil
}

// runSurvey prints surface statistics and optionally writes a regular
// elevation, slope and aspect grid.
func runSurvey(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("survey", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the SQLite database")
	modelID := fs.String("model", "", "Model version ID (required)")
	projectID := fs.String("project", "", "Project ID whose control points georeference the grid")
	configPath := fs.String("config", "", "Path to a JSON config file (defaults built in)")
	step := fs.Float64("step", 0, "Grid spacing (config ribbon_step)")
	out := fs.String("out", "", "Write the grid as GeoJSON to this path")
	fs.Parse(args)

	if *modelID == "" {
		return errors.New("-model is required")
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

	opts := pipeline.OptionsFromConfig(cfg)
	model, err := pipeline.BuildSurface(ctx, store, *modelID, opts.Triangulation)
	if err != nil {
		return err
	}
	printStats(os.Stdout, model.Stats())
	if *out == "" {
		return nil
	}

	cells, err := pipeline.SampleGrid(model, orDefault(*step, cfg.GetRibbonStep()))
	if err != nil {
		return err
	}
	fit, err := pipeline.LoadTransform(ctx, store, *projectID, opts.ReferenceEpsilon)
	if err != nil {
		return err
	}
	if err := export.WriteFile(*out, export.GridGeoJSON(cells, fit.Transform)); err != nil {
		return err
	}
	log.Printf("wrote %d grid cells to %s", len(cells), *out)
	return nil
}

func runModels(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the SQLite database")
	fs.Parse(args)

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	ids, err := store.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	printModels(os.Stdout, ids)
	return nil
}

func printModels(w io.Writer, ids []string) {
	if len(ids) == 0 {
		fmt.Fprintln(w, "no models")
		return
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
}

func printStats(w io.Writer, s surface.Stats) {
	fmt.Fprintf(w, "points %d  triangles %d  plan area %.1f\n", s.Points, s.Triangles, s.PlanArea)
	fmt.Fprintf(w, "z min %.3f  max %.3f  mean %.3f  sd %.3f\n", s.MinZ, s.MaxZ, s.MeanZ, s.StdDevZ)
}

// flagSet reports whether name was given on the command line.
func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
