package errest

import (
	"math"
	"math/rand"
	"time"
)

// Rand is the minimal source of randomness the corner estimators need to
// break ties when more than one corner assignment realizes the same
// maximum distance from nominal -- which combination gets reported is
// otherwise arbitrary. A narrow interface so both a seeded, repeatable
// generator and the real math/rand can satisfy it.
type Rand interface {
	Float64() float64
}

// lcgRand is a linear congruential generator: deterministic across
// platforms and Go versions, which math/rand's algorithm is not guaranteed
// to be across releases. Exists solely so two runs with the same input
// produce the same reported tie-break, for regression tests.
type lcgRand uint64

var lcgA, lcgM lcgRand
var invLcgM float64

func init() {
	lcgA = lcgRand(math.Pow(13, 13))
	lcgM = 1
	lcgM <<= 59
	invLcgM = 1 / float64(lcgM)
	lcgM--
}

// NewLCGRand returns a repeatable Rand seeded to a fixed starting state, so
// the sequence of Float64() calls is identical across runs.
func NewLCGRand() Rand {
	r := lcgRand(3)
	return &r
}

func (r *lcgRand) Float64() float64 {
	*r = *r * lcgA & lcgM
	return float64(*r) * invLcgM
}

// mathRand wraps math/rand.Rand to satisfy Rand for the non-repeatable case.
type mathRand struct{ r *rand.Rand }

// NewRandomRand returns a Rand seeded from the current time, for normal
// (non-repeatable) operation.
func NewRandomRand() Rand {
	return mathRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (m mathRand) Float64() float64 {
	return m.r.Float64()
}
