package nbprop

import (
	"github.com/gonum/floats"
)

// vectorsEqual compares two vectors within a mixed tolerance.
func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !floats.EqualWithinAbsOrRel(a[i], b[i], 1e-8, 1e-8) {
			return false
		}
	}
	return true
}

// linearEphemeris serves stub bodies moving in straight lines: r(et) = r0 + v0*et.
// Positions in km, velocities in km/s, relative to whatever center the test
// pretends to use.
type linearEphemeris struct {
	r0 map[int][]float64
	v0 map[int][]float64
}

func (l linearEphemeris) Lookup(body int, et float64, frame, abcorr string, center int) ([]float64, []float64, float64, error) {
	if err := checkAbcorr(abcorr, body, et); err != nil {
		return nil, nil, 0, err
	}
	r0, found := l.r0[body]
	if !found {
		return nil, nil, 0, EphemerisError{Body: body, ET: et, Reason: "body not served by stub"}
	}
	v0 := l.v0[body]
	if v0 == nil {
		v0 = []float64{0, 0, 0}
	}
	r := []float64{r0[0] + v0[0]*et, r0[1] + v0[1]*et, r0[2] + v0[2]*et}
	return r, append([]float64(nil), v0...), norm(r) / CLight, nil
}

// centeredEphemeris pins a single body at the center, reducing the problem to
// two-body motion.
type centeredEphemeris struct {
	body int
}

func (c centeredEphemeris) Lookup(body int, et float64, frame, abcorr string, center int) ([]float64, []float64, float64, error) {
	if body != c.body {
		return nil, nil, 0, EphemerisError{Body: body, ET: et, Reason: "body not served by stub"}
	}
	return []float64{0, 0, 0}, []float64{0, 0, 0}, 0, nil
}
