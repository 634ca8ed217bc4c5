package errest

import "github.com/pkg/errors"

// Names of the four selectable strategies, matching the `estimator` config
// value.
const (
	NameExhaustive      = "exhaustive"
	NameOptimizedCorner = "optimizedCorner"
	NameLinear          = "linear"
	NameCovariance      = "covariance"
)

// New constructs the Strategy named by name. sigma is only used when
// name == NameCovariance.
func New(name string, sigma float64) (Strategy, error) {
	switch name {
	case NameExhaustive:
		return Exhaustive{}, nil
	case NameOptimizedCorner:
		return OptimizedCorner{}, nil
	case NameLinear:
		return Linear{}, nil
	case NameCovariance:
		return NewCovariance(sigma), nil
	default:
		return nil, errors.Errorf("errest: unknown estimator %q", name)
	}
}
