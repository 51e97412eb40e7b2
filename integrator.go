package nbprop

import (
	"fmt"
	"math"

	rk4ode "github.com/ChristopherRabotin/ode"
	"github.com/ready-steady/ode/dopri"
)

// Derivative is the right-hand side of a first-order ODE system; it writes
// the derivative of y at time t into dy.
type Derivative func(t float64, y, dy []float64)

// Integrator integrates an ODE system and samples it at the requested times.
// times must be monotonic and include the initial time first; the returned
// slice holds one state per requested time. Any integrator honoring this
// contract is substitutable for the default one.
type Integrator interface {
	Integrate(fn Derivative, y0 []float64, times []float64) ([][]float64, error)
}

// IntegrationError reports an integrator failure, with the last state seen by
// the equations of motion as diagnostic context. Times and states are in
// physical units.
type IntegrationError struct {
	At        float64   // seconds past J2000 of the last evaluation
	LastState []float64 // km, km/s; nil if no evaluation completed
	Reason    string
}

func (e IntegrationError) Error() string {
	return fmt.Sprintf("integration failed near et=%f: %s", e.At, e.Reason)
}

// DormandPrince is the default adaptive integrator, wrapping the
// Dormand-Prince method from ready-steady/ode.
type DormandPrince struct {
	AbsTol, RelTol float64
}

// NewDormandPrince returns an adaptive integrator with the given tolerances.
func NewDormandPrince(absTol, relTol float64) DormandPrince {
	return DormandPrince{AbsTol: absTol, RelTol: relTol}
}

// Integrate implements the Integrator interface.
func (dp DormandPrince) Integrate(fn Derivative, y0 []float64, times []float64) ([][]float64, error) {
	config := dopri.DefaultConfig()
	config.AbsError = dp.AbsTol
	config.RelError = dp.RelTol
	integrator, err := dopri.New(config)
	if err != nil {
		return nil, err
	}
	values, _, err := integrator.Compute(func(x float64, y, f []float64) {
		fn(x, y, f)
	}, append([]float64(nil), y0...), times)
	if err != nil {
		return nil, err
	}
	n := len(y0)
	out := make([][]float64, len(times))
	for i := range times {
		out[i] = append([]float64(nil), values[i*n:(i+1)*n]...)
	}
	return out, nil
}

// RK4 is a fixed-step fourth-order integrator wrapping
// ChristopherRabotin/ode. It satisfies the same sampling contract as
// DormandPrince but performs no error control; Step is in the integration
// time unit.
type RK4 struct {
	Step float64
}

// Integrate implements the Integrator interface.
func (r RK4) Integrate(fn Derivative, y0 []float64, times []float64) ([][]float64, error) {
	if r.Step <= 0 {
		return nil, fmt.Errorf("rk4: step size %f must be strictly positive", r.Step)
	}
	out := make([][]float64, len(times))
	out[0] = append([]float64(nil), y0...)
	seg := &rk4Segment{fn: fn, state: append([]float64(nil), y0...)}
	for k := 1; k < len(times); k++ {
		span := times[k] - times[k-1]
		n := int(math.Ceil(math.Abs(span) / r.Step))
		if n == 0 {
			n = 1
		}
		seg.remaining = n
		rk4ode.NewRK4(times[k-1], span/float64(n), seg).Solve()
		out[k] = append([]float64(nil), seg.state...)
	}
	return out, nil
}

// rk4Segment adapts one sampling interval to the ode.Integrable interface.
type rk4Segment struct {
	fn        Derivative
	state     []float64
	remaining int
}

func (s *rk4Segment) GetState() []float64 {
	return append([]float64(nil), s.state...)
}

func (s *rk4Segment) SetState(t float64, y []float64) {
	copy(s.state, y)
	s.remaining--
}

func (s *rk4Segment) Stop(t float64) bool {
	return s.remaining <= 0
}

func (s *rk4Segment) Func(t float64, y []float64) []float64 {
	dy := make([]float64, len(y))
	s.fn(t, y, dy)
	return dy
}
