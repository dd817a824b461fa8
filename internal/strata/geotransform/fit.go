package geotransform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/strata/internal/monitoring"
	"github.com/banshee-data/strata/internal/strata"
)

// Quality grades a fitted transform by its residual RMSE.
type Quality string

const (
	// QualityExcellent indicates RMSE < 0.05m
	QualityExcellent Quality = "excellent"
	// QualityGood indicates RMSE 0.05-0.15m
	QualityGood Quality = "good"
	// QualityFair indicates RMSE 0.15-0.30m
	QualityFair Quality = "fair"
	// QualityPoor indicates RMSE > 0.30m, recheck the control points
	QualityPoor Quality = "poor"
	// QualityUnknown indicates the fit is exactly determined and residuals
	// carry no information
	QualityUnknown Quality = "unknown"
)

// RMSE thresholds (metres).
const (
	RMSEThresholdExcellent = 0.05
	RMSEThresholdGood      = 0.15
	RMSEThresholdFair      = 0.30
)

// ControlPair ties a local system point to its surveyed geodetic position.
type ControlPair struct {
	System strata.Point2D `json:"system"`
	Geo    strata.Point2D `json:"geo"`
}

// FitResult is a least-squares transform with its residuals.
type FitResult struct {
	Transform Transform
	// Residuals[i] is the plan distance between the transformed system
	// point and the surveyed geodetic point of pair i.
	Residuals []float64
	RMSE      float64
	Quality   Quality
}

// Fit solves the similarity transform that best maps the system points of
// pairs onto their geodetic points in the least-squares sense. Two pairs
// reproduce Build exactly.
func Fit(pairs []ControlPair, epsilon float64) (FitResult, error) {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	if len(pairs) < 2 {
		return FitResult{}, fmt.Errorf("fit needs at least 2 control pairs, got %d: %w",
			len(pairs), strata.ErrInsufficientPoints)
	}

	// Centre the system points so large projected coordinates do not
	// swamp the rotation terms.
	var cx, cy float64
	for _, p := range pairs {
		if !p.System.Finite() || !p.Geo.Finite() {
			return FitResult{}, fmt.Errorf("control pair %v -> %v is not finite: %w",
				p.System, p.Geo, strata.ErrInvalidParameter)
		}
		cx += p.System.X
		cy += p.System.Y
	}
	n := float64(len(pairs))
	cx, cy = cx/n, cy/n

	// Same rule as Build: some pair of system points must be at least
	// sqrt(epsilon) apart.
	var spread float64
	for i := range pairs {
		for j := i + 1; j < len(pairs); j++ {
			dx := pairs[j].System.X - pairs[i].System.X
			dy := pairs[j].System.Y - pairs[i].System.Y
			spread = math.Max(spread, dx*dx+dy*dy)
		}
	}
	if spread < epsilon {
		return FitResult{}, fmt.Errorf("all %d system points coincide: %w", len(pairs), strata.ErrDegenerateReference)
	}

	// Unknowns are (a, b, tx', ty') in centred coordinates.
	A := mat.NewDense(2*len(pairs), 4, nil)
	rhs := mat.NewVecDense(2*len(pairs), nil)
	for i, p := range pairs {
		x, y := p.System.X-cx, p.System.Y-cy
		A.SetRow(2*i, []float64{x, -y, 1, 0})
		A.SetRow(2*i+1, []float64{y, x, 0, 1})
		rhs.SetVec(2*i, p.Geo.X)
		rhs.SetVec(2*i+1, p.Geo.Y)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(A, rhs); err != nil {
		return FitResult{}, fmt.Errorf("solve similarity transform: %w", err)
	}
	a, b := sol.AtVec(0), sol.AtVec(1)
	t := Transform{
		A:  a,
		B:  b,
		TX: sol.AtVec(2) - a*cx + b*cy,
		TY: sol.AtVec(3) - b*cx - a*cy,
	}

	res := FitResult{Transform: t, Residuals: make([]float64, len(pairs))}
	sq := make([]float64, len(pairs))
	for i, p := range pairs {
		gx, gy, _ := t.Apply(p.System.X, p.System.Y, 0)
		res.Residuals[i] = math.Hypot(gx-p.Geo.X, gy-p.Geo.Y)
		sq[i] = res.Residuals[i] * res.Residuals[i]
	}
	res.RMSE = math.Sqrt(stat.Mean(sq, nil))
	res.Quality = grade(res.RMSE, len(pairs))

	monitoring.Logf("geotransform: fitted %d control pairs, %s rmse=%.4f (%s)",
		len(pairs), t, res.RMSE, res.Quality)
	if res.Quality == QualityPoor {
		monitoring.Warnf("geotransform: rmse %.3f exceeds %.2f, recheck control points", res.RMSE, RMSEThresholdFair)
	}
	return res, nil
}

func grade(rmse float64, pairs int) Quality {
	switch {
	case pairs < 3:
		return QualityUnknown
	case rmse < RMSEThresholdExcellent:
		return QualityExcellent
	case rmse < RMSEThresholdGood:
		return QualityGood
	case rmse < RMSEThresholdFair:
		return QualityFair
	default:
		return QualityPoor
	}
}
