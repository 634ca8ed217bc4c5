package errest

import (
	"math"

	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// Covariance is the O(n) statistical estimator: assuming each measurement
// has variance Sigma^2 orthogonal to its ray, Cov(E) ~= Sigma^2 * (sum_i (I
// - d_i d_i^T))^-1, and the returned radius is sqrt(lambda_max(Cov)) -- a
// 1-sigma radius, not a worst case.
type Covariance struct {
	// Sigma is the per-observation angular/positional standard deviation.
	// Only meaningful when estimator=covariance; must be positive.
	Sigma float64
}

// NewCovariance returns a Covariance strategy with the given sigma, falling
// back to sigmaDefault if sigma <= 0.
func NewCovariance(sigma float64) Covariance {
	if sigma <= 0 {
		sigma = sigmaDefault
	}
	return Covariance{Sigma: sigma}
}

func (Covariance) Name() string { return "covariance" }

func (c Covariance) Estimate(obsList []obs.Observation, _ vec2.Point) (float64, error) {
	rays, err := baseRays(obsList)
	if err != nil {
		return 0, err
	}

	var a11, a12, a22 float64
	for _, r := range rays {
		dx, dz := r.Direction.X, r.Direction.Z
		a11 += 1 - dx*dx
		a12 += -dx * dz
		a22 += 1 - dz*dz
	}

	det := a11*a22 - a12*a12
	if math.Abs(det) < 1e-8 {
		return math.Inf(1), nil
	}

	// inverse of [[a11,a12],[a12,a22]], scaled by sigma^2
	sigma2 := c.Sigma * c.Sigma
	invDet := sigma2 / det
	c11 := a22 * invDet
	c12 := -a12 * invDet
	c22 := a11 * invDet

	// larger eigenvalue of the symmetric 2x2 covariance matrix
	trace := c11 + c22
	diff := c11 - c22
	discriminant := math.Sqrt(diff*diff + 4*c12*c12)
	lambdaMax := (trace + discriminant) / 2
	if lambdaMax < 0 {
		lambdaMax = 0
	}
	return math.Sqrt(lambdaMax), nil
}
