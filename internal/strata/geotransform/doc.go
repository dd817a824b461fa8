// Package geotransform maps local survey-system coordinates to geodetic
// coordinates with a planar similarity transform: uniform scale, rotation
// and translation. Elevation passes through unchanged.
package geotransform
