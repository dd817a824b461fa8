package boundary

import (
	"fmt"
	"strings"

	"github.com/banshee-data/strata/internal/strata"
)

// Axis is the horizontal axis a front's position is measured along.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// ParseAxis accepts "x" or "y".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "":
		return AxisX, nil
	case "y":
		return AxisY, nil
	default:
		return AxisX, fmt.Errorf("unknown axis %q: %w", s, strata.ErrInvalidParameter)
	}
}

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// Direction is the sign of excavation advance along the axis.
type Direction int

const (
	Positive Direction = 1
	Negative Direction = -1
)

// ParseDirection accepts "+", "-", "positive", "negative", "1" or "-1".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "positive", "1", "":
		return Positive, nil
	case "-", "negative", "-1":
		return Negative, nil
	default:
		return Positive, fmt.Errorf("unknown direction %q: %w", s, strata.ErrInvalidParameter)
	}
}

// Front is an excavation boundary. Updating the mining position creates a
// new Front; surface models are never touched.
type Front struct {
	Axis         Axis      `json:"axis"`
	AxisPosition float64   `json:"axis_position"`
	Direction    Direction `json:"direction"`
}

// Advance moves the front delta units in its direction of advance.
func (f Front) Advance(delta float64) Front {
	f.AxisPosition += float64(f.direction()) * delta
	return f
}

// WithPosition returns the front moved to pos.
func (f Front) WithPosition(pos float64) Front {
	f.AxisPosition = pos
	return f
}

// Excavated reports whether (x, y) lies on the mined side of the front:
// behind it with respect to the direction of advance. Points on the front
// count as excavated.
func (f Front) Excavated(x, y float64) bool {
	c := x
	if f.Axis == AxisY {
		c = y
	}
	if f.direction() == Negative {
		return c >= f.AxisPosition
	}
	return c <= f.AxisPosition
}

// At maps a position s along the front line and an offset across it to
// plan coordinates.
func (f Front) At(s, offset float64) (x, y float64) {
	if f.Axis == AxisY {
		return s, f.AxisPosition + offset
	}
	return f.AxisPosition + offset, s
}

func (f Front) direction() Direction {
	if f.Direction < 0 {
		return Negative
	}
	return Positive
}

// ExcavatedMask evaluates the predicate at every vertex of mesh, for the
// renderer to shade mined and unmined regions.
func ExcavatedMask(f Front, mesh *strata.Mesh) []bool {
	mask := make([]bool, mesh.VertexCount())
	for i := range mask {
		v := mesh.Vertex(i)
		mask[i] = f.Excavated(v.X, v.Y)
	}
	return mask
}
