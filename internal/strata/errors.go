package strata

import "errors"

// Construction errors. They are fatal to building a surface model or a
// transform and are wrapped with context, so match them with errors.Is.
var (
	// ErrInsufficientPoints is returned when fewer than three points are
	// supplied to build a triangulation.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrDegenerateInput is returned when two survey points coincide in
	// plan view (closer than the configured epsilon), or when every point
	// is collinear and no triangle can be formed.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrDegenerateReference is returned when the two transform reference
	// points coincide in the local system.
	ErrDegenerateReference = errors.New("degenerate reference points")

	// ErrInvalidParameter is returned for non-positive steps, widths and
	// similar caller mistakes.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrNoPointsProcessed is a warning, not a failure: a batch completed but
// none of its points resolved to a stratum or an unmatched result. The
// per-point results accompanying it are still valid.
var ErrNoPointsProcessed = errors.New("no points processed")
