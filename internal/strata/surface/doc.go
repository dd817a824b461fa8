// Package surface owns the surface model: one survey point set plus its
// triangulation, answering elevation queries by barycentric interpolation.
//
// A Model is built once per model version and is immutable afterwards;
// every query method is safe for concurrent use. Queries outside the convex
// hull report ok=false and must be treated as "outside the modelled
// region", never as zero elevation.
package surface
