package broadphase

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestVector_IsValid(t *testing.T) {
	test.That(t, Vector{1, 2}.IsValid(), test.ShouldBeTrue)
	test.That(t, Vector{math.NaN(), 2}.IsValid(), test.ShouldBeFalse)
	test.That(t, Vector{0, math.Inf(-1)}.IsValid(), test.ShouldBeFalse)
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(-1, 0, 10), test.ShouldEqual, 0.0)
	test.That(t, Clamp(5, 0, 10), test.ShouldEqual, 5.0)
	test.That(t, Clamp(11, 0, 10), test.ShouldEqual, 10.0)
}
