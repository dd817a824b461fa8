// Package export renders classification reports and boundary ribbons as
// GeoJSON in geodetic coordinates for reporting collaborators.
package export

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/boundary"
	"github.com/banshee-data/strata/internal/strata/geotransform"
	"github.com/banshee-data/strata/internal/strata/pipeline"
	"github.com/banshee-data/strata/internal/strata/stratum"
)

// EventsGeoJSON returns one Point feature per classified event, located at
// its geodetic position.
func EventsGeoJSON(report *pipeline.Report) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, ev := range report.Events {
		f := geojson.NewFeature(orb.Point{ev.Geo.X, ev.Geo.Y})
		f.ID = ev.Event.ID
		f.Properties["event_id"] = ev.Event.ID
		f.Properties["kind"] = ev.Result.Kind.String()
		f.Properties["geo_z"] = ev.Geo.Z
		f.Properties["magnitude"] = ev.Event.Magnitude
		f.Properties["run_id"] = report.RunID
		f.Properties["model_id"] = report.ModelID
		if ev.Result.IsMatched() {
			f.Properties["stratum"] = ev.Result.Stratum
		}
		if ev.Result.Kind != stratum.OutOfRange {
			f.Properties["relative_z"] = ev.Result.RelativeZ
		}
		if !ev.Event.OccurredAt.IsZero() {
			f.Properties["occurred_at"] = ev.Event.OccurredAt.UTC().Format(time.RFC3339Nano)
		}
		fc.Append(f)
	}
	return fc
}

// RibbonGeoJSON returns the ribbon's left and right edges as LineString
// features mapped through t. A ribbon broken by gaps gives one feature per
// run and side. Each feature records whether its edge lies on the
// excavated side of the front.
func RibbonGeoJSON(r boundary.Ribbon, t geotransform.Transform) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	add := func(side string, runs []strata.Polyline) {
		for i, run := range runs {
			f := geojson.NewFeature(lineString(run, t))
			f.Properties["side"] = side
			f.Properties["run"] = i
			f.Properties["axis"] = r.Front.Axis.String()
			f.Properties["axis_position"] = r.Front.AxisPosition
			lo, hi := zRange(run)
			f.Properties["min_z"] = lo
			f.Properties["max_z"] = hi
			f.Properties["excavated"] = r.Front.Excavated(run[0].X, run[0].Y)
			fc.Append(f)
		}
	}
	add("left", r.LeftEdges)
	add("right", r.RightEdges)
	return fc
}

// ProfileGeoJSON returns centre-line profile runs as LineString features.
func ProfileGeoJSON(f boundary.Front, runs []strata.Polyline, t geotransform.Transform) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, run := range runs {
		feat := geojson.NewFeature(lineString(run, t))
		feat.Properties["run"] = i
		feat.Properties["axis"] = f.Axis.String()
		feat.Properties["axis_position"] = f.AxisPosition
		fc.Append(feat)
	}
	return fc
}

// GridGeoJSON returns surface samples as Point features mapped through t,
// with slope and aspect in degrees.
func GridGeoJSON(cells []pipeline.GridCell, t geotransform.Transform) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range cells {
		x, y, z := t.Apply(c.X, c.Y, c.Z)
		f := geojson.NewFeature(orb.Point{x, y})
		f.Properties["z"] = c.Z
		f.Properties["geo_z"] = z
		f.Properties["slope_deg"] = c.Slope * 180 / math.Pi
		f.Properties["aspect_deg"] = c.Aspect * 180 / math.Pi
		fc.Append(f)
	}
	return fc
}

func lineString(run strata.Polyline, t geotransform.Transform) orb.LineString {
	geo := t.ApplyAll(run)
	ls := make(orb.LineString, len(geo))
	for i, p := range geo {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return ls
}

func zRange(run strata.Polyline) (lo, hi float64) {
	for i, p := range run {
		if i == 0 || p.Z < lo {
			lo = p.Z
		}
		if i == 0 || p.Z > hi {
			hi = p.Z
		}
	}
	return lo, hi
}
