package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/geotransform"
)

func runTransform(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	ax := fs.Float64("ax", 0, "Reference A, system x")
	ay := fs.Float64("ay", 0, "Reference A, system y")
	gax := fs.Float64("gax", 0, "Reference A, geodetic X")
	gay := fs.Float64("gay", 0, "Reference A, geodetic Y")
	bx := fs.Float64("bx", 0, "Reference B, system x")
	by := fs.Float64("by", 0, "Reference B, system y")
	gbx := fs.Float64("gbx", 0, "Reference B, geodetic X")
	gby := fs.Float64("gby", 0, "Reference B, geodetic Y")
	inverse := fs.Bool("inverse", false, "Map geodetic coordinates back to the system")
	epsilon := fs.Float64("epsilon", geotransform.DefaultEpsilon, "Degenerate reference threshold")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 3 {
		return errors.New("usage: strata transform [flags] x y z")
	}
	var xyz [3]float64
	for i, s := range fs.Args() {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("coordinate %q: %w", s, err)
		}
		xyz[i] = v
	}

	t, err := geotransform.Build(
		strata.Point2D{X: *ax, Y: *ay}, strata.Point2D{X: *gax, Y: *gay},
		strata.Point2D{X: *bx, Y: *by}, strata.Point2D{X: *gbx, Y: *gby},
		*epsilon)
	if err != nil {
		return err
	}

	var x, y, z float64
	if *inverse {
		x, y, z = t.Inverse(xyz[0], xyz[1], xyz[2])
	} else {
		x, y, z = t.Apply(xyz[0], xyz[1], xyz[2])
	}
	_, err = fmt.Fprintf(w, "%.6f %.6f %.6f\n", x, y, z)
	return err
}
