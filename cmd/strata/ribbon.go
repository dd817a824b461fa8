package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/strata/internal/config"
	"github.com/banshee-data/strata/internal/db"
	"github.com/banshee-data/strata/internal/export"
	"github.com/banshee-data/strata/internal/strata/boundary"
	"github.com/banshee-data/strata/internal/strata/pipeline"
)

func runRibbon(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ribbon", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the SQLite database")
	modelID := fs.String("model", "", "Model version ID (required)")
	projectID := fs.String("project", "", "Project ID whose control points georeference the output")
	configPath := fs.String("config", "", "Path to a JSON config file (defaults built in)")
	axis := fs.String("axis", "", "Front axis, x or y (config front_axis)")
	direction := fs.String("direction", "", "Advance direction, positive or negative (config front_direction)")
	position := fs.Float64("position", 0, "Front position along the axis")
	advance := fs.Float64("advance", 0, "Move the front this far in its direction of advance before projecting")
	minS := fs.Float64("min", 0, "Start of the walk along the front (0 with -max 0 spans the surface)")
	maxS := fs.Float64("max", 0, "End of the walk along the front")
	width := fs.Float64("width", 0, "Band width across the front (config ribbon_width)")
	step := fs.Float64("step", 0, "Step along the front (config ribbon_step)")
	out := fs.String("out", "", "Write ribbon edges as GeoJSON to this path")
	profile := fs.String("profile", "", "Write the centre-line profile as GeoJSON to this path")
	meshOut := fs.String("mesh", "", "Write the ribbon mesh and excavated mask as JSON to this path")
	fs.Parse(args)

	if *modelID == "" {
		return errors.New("-model is required")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	front, err := parseFront(cfg, *axis, *direction, *position)
	if err != nil {
		return err
	}
	if *advance != 0 {
		front = front.Advance(*advance)
	}

	p := boundary.RibbonParams{
		Front:    front,
		Min:      *minS,
		Max:      *maxS,
		Width:    orDefault(*width, cfg.GetRibbonWidth()),
		Step:     orDefault(*step, cfg.GetRibbonStep()),
		Lift:     cfg.GetRibbonLift(),
		Workers:  cfg.GetWorkers(),
		MaxSteps: cfg.GetRibbonMaxSteps(),
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	opts := pipeline.OptionsFromConfig(cfg)
	view, err := pipeline.ViewFront(ctx, store, *modelID, p, opts)
	if err != nil {
		return err
	}
	fit, err := pipeline.LoadTransform(ctx, store, *projectID, opts.ReferenceEpsilon)
	if err != nil {
		return err
	}

	printFront(os.Stdout, view)
	if *out != "" {
		if err := export.WriteFile(*out, export.RibbonGeoJSON(view.Ribbon, fit.Transform)); err != nil {
			return err
		}
		log.Printf("wrote ribbon to %s", *out)
	}
	if *profile != "" {
		if err := export.WriteFile(*profile, export.ProfileGeoJSON(front, view.Profile, fit.Transform)); err != nil {
			return err
		}
		log.Printf("wrote profile to %s", *profile)
	}
	if *meshOut != "" {
		if err := export.WriteJSON(*meshOut, view); err != nil {
			return err
		}
		log.Printf("wrote ribbon mesh to %s", *meshOut)
	}
	return nil
}

func printFront(w io.Writer, v *pipeline.FrontView) {
	f := v.Ribbon.Front
	fmt.Fprintf(w, "front %s=%.3f (%s): %d segments, %d runs\n",
		f.Axis, f.AxisPosition, directionName(f.Direction), len(v.Ribbon.Segments), len(v.Ribbon.LeftEdges))
	if !v.Crosses {
		fmt.Fprintln(w, "front does not cross the surface")
		return
	}
	fmt.Fprintf(w, "surface spans %.3f to %.3f along the front\n", v.ExtentMin, v.ExtentMax)
}

// parseFront builds a front from flags, falling back to config for the
// axis and direction.
func parseFront(cfg *config.Config, axis, direction string, position float64) (boundary.Front, error) {
	if axis == "" {
		axis = cfg.GetFrontAxis()
	}
	if direction == "" {
		direction = cfg.GetFrontDirection()
	}
	a, err := boundary.ParseAxis(axis)
	if err != nil {
		return boundary.Front{}, err
	}
	d, err := boundary.ParseDirection(direction)
	if err != nil {
		return boundary.Front{}, err
	}
	return boundary.Front{Axis: a, Direction: d}.WithPosition(position), nil
}

func directionName(d boundary.Direction) string {
	if d == boundary.Negative {
		return "negative"
	}
	return "positive"
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
