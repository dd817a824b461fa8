// Package boundary owns the boundary projector: terrain-following geometry
// for a moving excavation front.
//
// The front is a line perpendicular to one horizontal axis. Projection
// samples a surface model along that line and emits a ribbon mesh, edge
// polylines and a centre-line profile. Samples that fall outside the
// modelled region leave gaps; nothing is extrapolated. The excavation
// direction only drives the Excavated predicate, never the geometry.
package boundary
