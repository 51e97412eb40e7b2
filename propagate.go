package nbprop

import (
	"math"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
)

/* Handles the propagation pipeline: scale, integrate, unscale. */

// Trajectory is a propagated trajectory in physical units: one state (km,
// km/s) per sample time. When the problem requested the STM, STMs and
// Sensitivities hold the matching 6x6 matrices and epoch-sensitivity
// vectors. The trajectory owns its memory and outlives the Problem.
type Trajectory struct {
	Times         []Epoch
	States        [][]float64
	STMs          []*mat64.Dense
	Sensitivities [][]float64
}

// Propagator runs a single problem through scaling, integration and
// unscaling. It borrows the problem and its providers for the duration of
// one Propagate call and performs no internal retries: provider and
// integrator failures surface verbatim as typed errors.
type Propagator struct {
	prob   *Problem
	eph    EphemerisProvider
	consts ConstantsProvider
	integ  Integrator
	logger kitlog.Logger
}

// NewPropagator returns a propagator for the given problem with explicitly
// injected providers. The reference data behind the providers must be
// initialized by the caller before this point; the propagator never loads
// anything lazily. The default integrator is Dormand-Prince with the
// problem's tolerances.
func NewPropagator(prob *Problem, eph EphemerisProvider, consts ConstantsProvider) *Propagator {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "nbprop")
	return &Propagator{
		prob:   prob,
		eph:    eph,
		consts: consts,
		integ:  NewDormandPrince(prob.opts.AbsTol, prob.opts.RelTol),
		logger: klog,
	}
}

// SetIntegrator substitutes the integrator. Any integrator honoring the
// sampling contract may be used.
func (p *Propagator) SetIntegrator(integ Integrator) {
	p.integ = integ
}

// SetLogger substitutes the logger.
func (p *Propagator) SetLogger(logger kitlog.Logger) {
	p.logger = logger
}

// Propagate runs the propagation to completion and returns the trajectory in
// physical units.
func (p *Propagator) Propagate() (*Trajectory, error) {
	if p.eph == nil || p.consts == nil {
		return nil, ConfigError{Field: "providers", Reason: "ephemeris and body-constants providers must be initialized and injected before propagation"}
	}
	opts := p.prob.opts
	scale := p.prob.scaling()

	// Scaled: dimensionless initial state, augmented when the STM is wanted.
	y0 := make([]float64, p.prob.dim())
	copy(y0, scale.ScaleState(p.prob.state))
	if opts.ComputeSTM {
		for i := 0; i < stateDim; i++ {
			y0[stateDim+i*stateDim+i] = 1 // identity STM at the initial epoch
		}
		// Epoch sensitivity starts at zero; y0 is zero-filled already.
	}

	times := make([]float64, opts.Samples+1)
	span := float64(p.prob.end - p.prob.start)
	for i := range times {
		et := float64(p.prob.start) + span*float64(i)/float64(opts.Samples)
		times[i] = scale.ScaleTime(et)
	}
	// Land exactly on the final epoch despite the division above.
	times[opts.Samples] = scale.ScaleTime(float64(p.prob.end))

	eom := NewEOM(p.prob, p.eph, p.consts)
	var evalErr error
	var lastT float64
	var lastY []float64
	fn := func(t float64, y, dy []float64) {
		if evalErr != nil {
			// A provider already failed; poison the derivative so the
			// integrator gives up instead of stepping on stale values.
			for i := range dy {
				dy[i] = math.NaN()
			}
			return
		}
		if err := eom.Eval(t, y, dy); err != nil {
			evalErr = err
			for i := range dy {
				dy[i] = math.NaN()
			}
			return
		}
		lastT = t
		lastY = append(lastY[:0], y...)
	}

	p.logger.Log("level", "info", "status", "starting",
		"start", p.prob.start.String(), "end", p.prob.end.String(),
		"bodies", len(p.prob.bodies), "center", BodyName(opts.Center),
		"frame", opts.Frame, "stm", opts.ComputeSTM)

	raw, err := p.integ.Integrate(fn, y0, times)
	if evalErr != nil {
		p.logger.Log("level", "error", "status", "failed", "err", evalErr.Error())
		return nil, evalErr
	}
	if err != nil {
		intErr := IntegrationError{At: scale.UnscaleTime(lastT), Reason: err.Error()}
		if len(lastY) >= stateDim {
			intErr.LastState = scale.UnscaleState(lastY[:stateDim])
		}
		p.logger.Log("level", "error", "status", "failed", "err", intErr.Error())
		return nil, intErr
	}

	// Unscaled: back to physical units, sample by sample.
	traj := &Trajectory{
		Times:  make([]Epoch, len(times)),
		States: make([][]float64, len(times)),
	}
	if opts.ComputeSTM {
		traj.STMs = make([]*mat64.Dense, len(times))
		traj.Sensitivities = make([][]float64, len(times))
	}
	for i, y := range raw {
		traj.Times[i] = Epoch(scale.UnscaleTime(times[i]))
		traj.States[i] = scale.UnscaleState(y[:stateDim])
		if opts.ComputeSTM {
			phi := mat64.NewDense(stateDim, stateDim, append([]float64(nil), y[stateDim:stateDim+stmDim]...))
			traj.STMs[i] = scale.UnscaleSTM(phi)
			traj.Sensitivities[i] = scale.UnscaleSensitivity(y[stateDim+stmDim:])
		}
	}

	p.logger.Log("level", "info", "status", "finished", "samples", len(traj.Times))
	return traj, nil
}
