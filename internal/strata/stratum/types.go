package stratum

import (
	"fmt"

	"github.com/banshee-data/strata/internal/strata"
)

// Surface is the elevation query a classification needs from a base model.
type Surface interface {
	InterpolateZ(x, y float64) (float64, bool)
}

// LayerKind separates layers drawn for display from layers that take part
// in classification.
type LayerKind string

const (
	KindAnalysis LayerKind = "analysis"
	KindDisplay  LayerKind = "display"
)

// Definition is one stratum. It occupies relative elevations in
// [DepthFromReference - Thickness, DepthFromReference], measured from the
// base surface at the query point.
type Definition struct {
	Name               string    `json:"name"`
	DepthFromReference float64   `json:"depth_from_reference"`
	Thickness          float64   `json:"thickness"`
	Order              int       `json:"order"`
	Kind               LayerKind `json:"kind,omitempty"`
}

// Top is the upper relative elevation bound.
func (d Definition) Top() float64 { return d.DepthFromReference }

// Bottom is the lower relative elevation bound.
func (d Definition) Bottom() float64 { return d.DepthFromReference - d.Thickness }

// Contains reports whether relativeZ falls inside the band, bounds included.
func (d Definition) Contains(relativeZ float64) bool {
	return relativeZ <= d.Top() && relativeZ >= d.Bottom()
}

// ResultKind is the outcome of classifying one point.
type ResultKind int

const (
	// Unmatched means the point is inside the modelled region but no
	// stratum band holds it.
	Unmatched ResultKind = iota
	// Matched means a stratum claimed the point.
	Matched
	// OutOfRange means the point is outside the base surface's hull.
	OutOfRange
)

func (k ResultKind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Unmatched:
		return "unmatched"
	case OutOfRange:
		return "out_of_range"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the classification of one point.
type Result struct {
	Kind ResultKind `json:"kind"`
	// Stratum is the matched layer's name, empty otherwise.
	Stratum string `json:"stratum,omitempty"`
	// Index is the matched layer's position in the caller's list, or -1.
	Index int `json:"index"`
	// RelativeZ is the point's elevation above the base surface. Zero for
	// OutOfRange results.
	RelativeZ float64 `json:"relative_z"`
}

// IsMatched reports whether a stratum claimed the point.
func (r Result) IsMatched() bool { return r.Kind == Matched }

func (r Result) String() string {
	if r.Kind == Matched {
		return fmt.Sprintf("matched(%s)", r.Stratum)
	}
	return r.Kind.String()
}

func outOfRange() Result { return Result{Kind: OutOfRange, Index: -1} }

// RelativeDepth returns p's elevation above the base surface.
func RelativeDepth(p strata.Point3D, base Surface) (float64, bool) {
	baseZ, ok := base.InterpolateZ(p.X, p.Y)
	if !ok {
		return 0, false
	}
	return p.Z - baseZ, true
}
