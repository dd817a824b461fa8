package stratum

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/strata/internal/monitoring"
	"github.com/banshee-data/strata/internal/strata"
)

// Classify resolves one point against the base surface and strata.
func Classify(p strata.Point3D, base Surface, defs []Definition) Result {
	relZ, ok := RelativeDepth(p, base)
	if !ok {
		return outOfRange()
	}
	for i, d := range defs {
		if d.Contains(relZ) {
			return Result{Kind: Matched, Stratum: d.Name, Index: i, RelativeZ: relZ}
		}
	}
	return Result{Kind: Unmatched, Index: -1, RelativeZ: relZ}
}

// ClassifyMany classifies every point independently across workers
// goroutines (0 means GOMAXPROCS). The result slice is always complete and
// in input order. When no point resolved, the results are returned together
// with strata.ErrNoPointsProcessed, which callers treat as a warning.
func ClassifyMany(points []strata.Point3D, base Surface, defs []Definition, workers int) ([]Result, error) {
	c := NewClassifier(base, defs)
	c.Workers = workers
	return c.ClassifyMany(points)
}

// Classifier binds a base surface and strata list and keeps running
// counters for monitoring. The strata list is copied at construction.
type Classifier struct {
	Workers int

	base   Surface
	strata []Definition

	processed  atomic.Int64
	matched    atomic.Int64
	unmatched  atomic.Int64
	outOfRange atomic.Int64
}

// NewClassifier returns a classifier over base and defs.
func NewClassifier(base Surface, defs []Definition) *Classifier {
	own := make([]Definition, len(defs))
	copy(own, defs)
	return &Classifier{base: base, strata: own}
}

// Strata returns a copy of the classifier's strata in scan order.
func (c *Classifier) Strata() []Definition {
	out := make([]Definition, len(c.strata))
	copy(out, c.strata)
	return out
}

// Classify resolves one point and updates the counters.
func (c *Classifier) Classify(p strata.Point3D) Result {
	r := Classify(p, c.base, c.strata)
	c.processed.Add(1)
	switch r.Kind {
	case Matched:
		c.matched.Add(1)
	case Unmatched:
		c.unmatched.Add(1)
	case OutOfRange:
		c.outOfRange.Add(1)
	}
	return r
}

// ClassifyMany classifies points in parallel. See the package-level
// ClassifyMany for the warning semantics.
func (c *Classifier) ClassifyMany(points []strata.Point3D) ([]Result, error) {
	results := make([]Result, len(points))
	if len(points) == 0 {
		return results, nil
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (len(points) + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	var failed atomic.Int64
	for start := 0; start < len(points); start += chunk {
		end := min(start+chunk, len(points))
		g.Go(func() error {
			var miss int64
			for i := start; i < end; i++ {
				results[i] = c.Classify(points[i])
				if results[i].Kind == OutOfRange || !points[i].Finite() {
					miss++
				}
			}
			failed.Add(miss)
			return nil
		})
	}
	_ = g.Wait()

	if failed.Load() == int64(len(points)) {
		monitoring.Warnf("stratum: none of %d points resolved", len(points))
		return results, fmt.Errorf("classified %d points: %w", len(points), strata.ErrNoPointsProcessed)
	}
	return results, nil
}

// Counts is a snapshot of classifier counters.
type Counts struct {
	Processed  int64
	Matched    int64
	Unmatched  int64
	OutOfRange int64
}

// Stats returns the running counters.
func (c *Classifier) Stats() Counts {
	return Counts{
		Processed:  c.processed.Load(),
		Matched:    c.matched.Load(),
		Unmatched:  c.unmatched.Load(),
		OutOfRange: c.outOfRange.Load(),
	}
}

// ResetStats clears the counters.
func (c *Classifier) ResetStats() {
	c.processed.Store(0)
	c.matched.Store(0)
	c.unmatched.Store(0)
	c.outOfRange.Store(0)
}
