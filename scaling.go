package nbprop

import "github.com/gonum/matrix/mat64"

// Scaling converts physical quantities (km, km/s, s) to the dimensionless
// units used for integration and back. All conversions are pure and
// invertible up to floating-point rounding. The mass scale factor is carried
// by Options but has no dimensional effect on this force model; it is
// reserved for mass-varying extensions.
type Scaling struct {
	LSF float64 // length scale factor, km
	TSF float64 // time scale factor, s
}

// ScaleState returns a freshly-owned scaled copy of a 6-component physical state.
func (s Scaling) ScaleState(x []float64) []float64 {
	vf := s.LSF / s.TSF
	return []float64{x[0] / s.LSF, x[1] / s.LSF, x[2] / s.LSF,
		x[3] / vf, x[4] / vf, x[5] / vf}
}

// UnscaleState is the exact inverse of ScaleState.
func (s Scaling) UnscaleState(x []float64) []float64 {
	vf := s.LSF / s.TSF
	return []float64{x[0] * s.LSF, x[1] * s.LSF, x[2] * s.LSF,
		x[3] * vf, x[4] * vf, x[5] * vf}
}

// ScaleGM converts a gravitational parameter from km^3/s^2 to scaled units.
func (s Scaling) ScaleGM(gm float64) float64 {
	return gm * s.TSF * s.TSF / (s.LSF * s.LSF * s.LSF)
}

// ScaleTime converts seconds to scaled time.
func (s Scaling) ScaleTime(t float64) float64 {
	return t / s.TSF
}

// UnscaleTime converts scaled time to seconds.
func (s Scaling) UnscaleTime(t float64) float64 {
	return t * s.TSF
}

// UnscaleSTM converts a scaled 6x6 state transition matrix to physical units
// in place and returns it. The position-vs-position and velocity-vs-velocity
// blocks are dimensionless either way; the off-diagonal blocks pick up the
// time scale.
func (s Scaling) UnscaleSTM(phi *mat64.Dense) *mat64.Dense {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			phi.Set(i, j+3, phi.At(i, j+3)*s.TSF)
			phi.Set(i+3, j, phi.At(i+3, j)/s.TSF)
		}
	}
	return phi
}

// UnscaleSensitivity converts a scaled epoch-sensitivity 6-vector to physical
// units (km/s and km/s^2 per second of initial epoch), returning a fresh copy.
func (s Scaling) UnscaleSensitivity(sv []float64) []float64 {
	vf := s.LSF / s.TSF
	return []float64{sv[0] * vf, sv[1] * vf, sv[2] * vf,
		sv[3] * vf / s.TSF, sv[4] * vf / s.TSF, sv[5] * vf / s.TSF}
}
