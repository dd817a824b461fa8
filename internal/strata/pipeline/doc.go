// Package pipeline is the control flow around the geometry core. It
// fetches point sets, layers, events and control points from the stores,
// then hands them as explicit parameters to the surface, stratum,
// boundary and geotransform packages. The core packages perform no I/O.
package pipeline
