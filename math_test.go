package nbprop

import (
	"testing"

	"github.com/gonum/floats"
)

func TestCross(t *testing.T) {
	i := []float64{1, 0, 0}
	j := []float64{0, 1, 0}
	k := []float64{0, 0, 1}
	if !vectorsEqual(cross(i, j), k) {
		t.Fatal("i x j != k")
	}
	if !vectorsEqual(cross(j, k), i) {
		t.Fatal("j x k != i")
	}
	if !vectorsEqual(cross([]float64{2, 3, 4}, []float64{5, 6, 7}), []float64{-3, 6, -3}) {
		t.Fatal("cross fail")
	}
	// From Vallado
	if !vectorsEqual(cross([]float64{6524.834, 6862.875, 6448.296}, []float64{4.901327, 5.533756, -1.976341}), []float64{-4.924667792015100e4, 4.450050424118601e4, 0.246964476137900e4}) {
		t.Fatal("cross fail")
	}
}

func TestNormDot(t *testing.T) {
	if !floats.EqualWithinAbs(norm([]float64{3, 4, 0}), 5, 1e-14) {
		t.Fatal("norm fail")
	}
	if !floats.EqualWithinAbs(dot([]float64{1, 2, 3}, []float64{4, -5, 6}), 12, 1e-14) {
		t.Fatal("dot fail")
	}
	v := []float64{-1.5, 2.5, 3}
	if !floats.EqualWithinAbs(dot(v, v), norm(v)*norm(v), 1e-12) {
		t.Fatal("norm and dot disagree")
	}
}
