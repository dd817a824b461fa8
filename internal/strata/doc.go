// Package strata owns the shared data model for the stratum modelling stack.
//
// Responsibilities: survey point and point set types, render mesh and
// polyline buffers, and the construction error taxonomy.
// Key types: Point3D, PointSet, Mesh, Polyline.
//
// Dependency rule: strata depends on nothing inside this module. The
// component packages (tin, surface, stratum, boundary, geotransform) depend
// on strata, and each other only in that order. No I/O is allowed here or in
// any component package; callers fetch data and pass it in explicitly.
package strata
