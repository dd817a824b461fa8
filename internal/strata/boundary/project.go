package boundary

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/strata/internal/strata"
)

// Surface is the elevation query the projector samples.
type Surface interface {
	InterpolateZ(x, y float64) (float64, bool)
}

// SurfaceHeightAt returns the surface elevation at (x, y), or ok=false
// outside the modelled region.
func SurfaceHeightAt(x, y float64, model Surface) (float64, bool) {
	return model.InterpolateZ(x, y)
}

// BoundaryHeight returns the surface elevation on the front line at
// position s along it.
func BoundaryHeight(f Front, s float64, model Surface) (float64, bool) {
	x, y := f.At(s, 0)
	return SurfaceHeightAt(x, y, model)
}

// DefaultMaxSteps caps the number of samples one pass may take when
// RibbonParams.MaxSteps is zero.
const DefaultMaxSteps = 1 << 20

// RibbonParams describes one projection pass.
type RibbonParams struct {
	Front Front
	// Min and Max bound the walk along the front line.
	Min, Max float64
	// Width is the band width across the front, centred on its position.
	Width float64
	// Step is the spacing between samples along the front line.
	Step float64
	// Lift raises emitted geometry above the terrain for display.
	Lift float64
	// Workers bounds parallel sampling; 0 means GOMAXPROCS.
	Workers int
	// MaxSteps bounds the number of samples; 0 means DefaultMaxSteps.
	MaxSteps int
}

func (p RibbonParams) validate() error {
	for _, v := range []float64{p.Min, p.Max, p.Width, p.Step, p.Lift, p.Front.AxisPosition} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("ribbon parameters must be finite: %w", strata.ErrInvalidParameter)
		}
	}
	if p.Step <= 0 {
		return fmt.Errorf("ribbon step must be positive, got %g: %w", p.Step, strata.ErrInvalidParameter)
	}
	if p.Width <= 0 {
		return fmt.Errorf("ribbon width must be positive, got %g: %w", p.Width, strata.ErrInvalidParameter)
	}
	if p.Max < p.Min {
		return fmt.Errorf("ribbon range [%g, %g] is inverted: %w", p.Min, p.Max, strata.ErrInvalidParameter)
	}
	limit := p.maxSteps()
	if steps := (p.Max - p.Min) / p.Step; math.IsInf(steps, 0) || steps+1 > float64(limit) {
		return fmt.Errorf("ribbon range [%g, %g] at step %g exceeds %d samples: %w",
			p.Min, p.Max, p.Step, limit, strata.ErrInvalidParameter)
	}
	return nil
}

func (p RibbonParams) maxSteps() int {
	if p.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return p.MaxSteps
}

// Segment is one quad of the ribbon, joining the previous step's edge
// points to the current step's.
type Segment struct {
	PrevLeft, PrevRight strata.Point3D
	Left, Right         strata.Point3D
}

// Ribbon is the projected boundary geometry. An empty ribbon is a normal
// result meaning nothing is visible.
type Ribbon struct {
	Front      Front
	Mesh       strata.Mesh
	Segments   []Segment
	LeftEdges  []strata.Polyline
	RightEdges []strata.Polyline
}

// IsEmpty reports whether no segment was produced.
func (r Ribbon) IsEmpty() bool { return len(r.Segments) == 0 }

// edgeSample is the pair of edge heights at one step.
type edgeSample struct {
	left, right strata.Point3D
	ok          bool
}

// ProjectRibbon walks the front line from Min to Max and drapes a band of
// the given width over the surface. A step where either edge is outside
// the surface is skipped and breaks the ribbon; fewer than two consecutive
// valid steps give an empty ribbon.
func ProjectRibbon(model Surface, p RibbonParams) (Ribbon, error) {
	if err := p.validate(); err != nil {
		return Ribbon{}, err
	}
	ribbon := Ribbon{Front: p.Front, Mesh: strata.Mesh{Name: "ribbon"}}

	half := p.Width / 2
	samples := sampleSteps(p, func(s float64) edgeSample {
		lx, ly := p.Front.At(s, -half)
		rx, ry := p.Front.At(s, half)
		lz, lok := SurfaceHeightAt(lx, ly, model)
		rz, rok := SurfaceHeightAt(rx, ry, model)
		if !lok || !rok {
			return edgeSample{}
		}
		return edgeSample{
			left:  strata.Point3D{X: lx, Y: ly, Z: lz + p.Lift},
			right: strata.Point3D{X: rx, Y: ry, Z: rz + p.Lift},
			ok:    true,
		}
	})

	// Walking +y with the band across x is counter-clockwise as
	// (prevLeft, prevRight, right); across y it is the reverse.
	ccw := p.Front.Axis == AxisX

	// Vertices are added only for samples that join a segment, so an
	// isolated valid step leaves nothing behind in the mesh.
	verts := make(map[int][2]uint32)
	vertex := func(k int) (l, r uint32) {
		v, ok := verts[k]
		if !ok {
			v = [2]uint32{ribbon.Mesh.AddVertex(samples[k].left), ribbon.Mesh.AddVertex(samples[k].right)}
			verts[k] = v
		}
		return v[0], v[1]
	}

	var left, right strata.Polyline
	flush := func() {
		if len(left) >= 2 {
			ribbon.LeftEdges = append(ribbon.LeftEdges, left)
			ribbon.RightEdges = append(ribbon.RightEdges, right)
		}
		left, right = nil, nil
	}

	for k, cur := range samples {
		if !cur.ok {
			flush()
			continue
		}
		if k > 0 && samples[k-1].ok {
			prev := samples[k-1]
			prevL, prevR := vertex(k - 1)
			l, r := vertex(k)
			ribbon.Segments = append(ribbon.Segments, Segment{
				PrevLeft: prev.left, PrevRight: prev.right,
				Left: cur.left, Right: cur.right,
			})
			if ccw {
				ribbon.Mesh.AddTriangle(prevL, prevR, r)
				ribbon.Mesh.AddTriangle(prevL, r, l)
			} else {
				ribbon.Mesh.AddTriangle(prevL, r, prevR)
				ribbon.Mesh.AddTriangle(prevL, l, r)
			}
		}
		left = append(left, cur.left)
		right = append(right, cur.right)
	}
	flush()

	return ribbon, nil
}

// Profile samples the surface along the front line itself and returns the
// runs of consecutive valid samples (at least two points each), lifted by
// lift.
func Profile(model Surface, f Front, minS, maxS, step, lift float64) ([]strata.Polyline, error) {
	p := RibbonParams{Front: f, Min: minS, Max: maxS, Width: 1, Step: step, Lift: lift}
	if err := p.validate(); err != nil {
		return nil, err
	}
	samples := sampleSteps(p, func(s float64) edgeSample {
		x, y := f.At(s, 0)
		z, ok := SurfaceHeightAt(x, y, model)
		return edgeSample{left: strata.Point3D{X: x, Y: y, Z: z + lift}, ok: ok}
	})

	var runs []strata.Polyline
	var cur strata.Polyline
	for _, smp := range samples {
		if !smp.ok {
			if len(cur) >= 2 {
				runs = append(runs, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, smp.left)
	}
	if len(cur) >= 2 {
		runs = append(runs, cur)
	}
	return runs, nil
}

// Extent returns the first and last positions along the front line, at the
// given step, where the surface exists.
func Extent(model Surface, f Front, minS, maxS, step float64) (lo, hi float64, ok bool) {
	p := RibbonParams{Front: f, Min: minS, Max: maxS, Width: 1, Step: step}
	if p.validate() != nil {
		return 0, 0, false
	}
	samples := sampleSteps(p, func(s float64) edgeSample {
		x, y := f.At(s, 0)
		_, ok := SurfaceHeightAt(x, y, model)
		return edgeSample{left: strata.Point3D{X: s}, ok: ok}
	})
	for _, smp := range samples {
		if !smp.ok {
			continue
		}
		if !ok {
			lo, ok = smp.left.X, true
		}
		hi = smp.left.X
	}
	return lo, hi, ok
}

// sampleSteps evaluates fn at every step position in parallel. Each step
// writes only its own slot.
func sampleSteps(p RibbonParams, fn func(s float64) edgeSample) []edgeSample {
	n := int(math.Floor((p.Max-p.Min)/p.Step)) + 1
	out := make([]edgeSample, n)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for k := start; k < end; k++ {
				out[k] = fn(p.Min + float64(k)*p.Step)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
