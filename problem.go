package nbprop

import "fmt"

const (
	stateDim     = 6
	stmDim       = 36
	augmentedDim = stateDim + stmDim + stateDim
)

// Options are the recognized propagation options. Start from DefaultOptions
// and override fields; NewProblem rejects invalid values rather than
// silently defaulting them.
type Options struct {
	Center     int     // NAIF id of the integration center (default SSB)
	Frame      string  // reference frame (default ECLIPJ2000)
	LSF        float64 // length scale factor, km (default 1e6)
	TSF        float64 // time scale factor, s (default 1e6)
	MSF        float64 // mass scale factor, reserved (default 1)
	ComputeSTM bool    // propagate the state transition matrix and epoch sensitivity
	AbsTol     float64 // integrator absolute tolerance (default 1e-10)
	RelTol     float64 // integrator relative tolerance (default 1e-10)
	Samples    int     // number of output intervals over the span (default 200)
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Center:  SSB,
		Frame:   FrameECLIPJ2000,
		LSF:     1e6,
		TSF:     1e6,
		MSF:     1,
		AbsTol:  1e-10,
		RelTol:  1e-10,
		Samples: 200,
	}
}

// Problem is an immutable description of one N-body initial-value problem.
// It is created once per propagation request and borrowed by the Propagator
// for the duration of a single call.
type Problem struct {
	state      []float64
	start, end Epoch
	bodies     []int
	opts       Options
}

// NewProblem validates and freezes a propagation problem. The state is the
// physical initial condition (km, km/s); bodies is the ordered list of
// perturbing-body NAIF ids, whose order fixes the force accumulation order.
func NewProblem(state []float64, start, end Epoch, bodies []int, opts Options) (*Problem, error) {
	if len(state) != stateDim {
		return nil, ConfigError{Field: "state", Reason: fmt.Sprintf("expected %d components, got %d", stateDim, len(state))}
	}
	if len(bodies) == 0 {
		return nil, ConfigError{Field: "bodies", Reason: "empty perturbing-body list"}
	}
	seen := make(map[int]bool, len(bodies))
	for _, id := range bodies {
		if seen[id] {
			return nil, ConfigError{Field: "bodies", Reason: fmt.Sprintf("duplicate body %d", id)}
		}
		seen[id] = true
	}
	if start == end {
		return nil, ConfigError{Field: "span", Reason: "start and end epochs are identical"}
	}
	if opts.Frame == "" {
		return nil, ConfigError{Field: "frame", Reason: "empty reference frame"}
	}
	if opts.LSF <= 0 || opts.TSF <= 0 || opts.MSF <= 0 {
		return nil, ConfigError{Field: "scale factors", Reason: fmt.Sprintf("lsf=%g tsf=%g msf=%g must all be strictly positive", opts.LSF, opts.TSF, opts.MSF)}
	}
	if opts.AbsTol <= 0 || opts.RelTol <= 0 {
		return nil, ConfigError{Field: "tolerances", Reason: fmt.Sprintf("abstol=%g reltol=%g must be strictly positive", opts.AbsTol, opts.RelTol)}
	}
	if opts.Samples <= 0 {
		return nil, ConfigError{Field: "samples", Reason: fmt.Sprintf("%d is not a positive interval count", opts.Samples)}
	}
	p := Problem{
		state:  append([]float64(nil), state...),
		start:  start,
		end:    end,
		bodies: append([]int(nil), bodies...),
		opts:   opts,
	}
	return &p, nil
}

// State returns a copy of the physical initial state.
func (p *Problem) State() []float64 {
	return append([]float64(nil), p.state...)
}

// Start returns the initial epoch.
func (p *Problem) Start() Epoch { return p.start }

// End returns the final epoch.
func (p *Problem) End() Epoch { return p.end }

// Bodies returns a copy of the ordered perturbing-body list.
func (p *Problem) Bodies() []int {
	return append([]int(nil), p.bodies...)
}

// Options returns the validated options.
func (p *Problem) Options() Options { return p.opts }

// scaling returns the scaling manager implied by the options.
func (p *Problem) scaling() Scaling {
	return Scaling{LSF: p.opts.LSF, TSF: p.opts.TSF}
}

// dim returns the integrated state dimension.
func (p *Problem) dim() int {
	if p.opts.ComputeSTM {
		return augmentedDim
	}
	return stateDim
}
