// Package tin owns the triangulation engine: a 2D Delaunay triangulation
// over the plan-view projection of a survey point set.
//
// Responsibilities: near-duplicate rejection, Bowyer-Watson insertion over
// an index arena, triangle adjacency, convex hull edges, and deterministic
// point location.
// Key types: Triangulation, Triangle, TriangleRef, Options.
//
// Dependency rule: tin depends only on internal/strata and internal/monitoring.
package tin
