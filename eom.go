package nbprop

import "github.com/gonum/matrix/mat64"

/* Scaled N-body equations of motion with their variational extension. */

// EOM evaluates the scaled equations of motion of a point mass under the
// gravity of the problem's perturbing bodies, and, when the problem requests
// it, the derivative of the state transition matrix and of the
// epoch-sensitivity vector. An EOM retains no state between calls: adaptive
// integrators may evaluate it at repeated or out-of-order times.
type EOM struct {
	prob   *Problem
	eph    EphemerisProvider
	consts ConstantsProvider
	scale  Scaling
}

// NewEOM binds the equations of motion to a problem and its providers.
func NewEOM(prob *Problem, eph EphemerisProvider, consts ConstantsProvider) *EOM {
	return &EOM{prob: prob, eph: eph, consts: consts, scale: prob.scaling()}
}

// Dim returns the integrated state dimension: 6, or 48 when the STM and
// epoch sensitivity are propagated.
func (e *EOM) Dim() int {
	return e.prob.dim()
}

// Eval writes the scaled state derivative at (t, y) into dy. t is scaled
// time, y and dy have length Dim.
//
// A zero separation from a perturbing body is a singularity of the physical
// model: the resulting non-finite values propagate into dy rather than
// raising an error. Provider failures (unknown body, coverage gap) are
// returned verbatim.
func (e *EOM) Eval(t float64, y, dy []float64) error {
	opts := e.prob.opts
	stm := opts.ComputeSTM && len(y) == augmentedDim

	dy[0] = y[3]
	dy[1] = y[4]
	dy[2] = y[5]

	var acc, dft0 [3]float64
	var dfdrAcc [3][3]float64

	et := e.scale.UnscaleTime(t)
	vf := opts.LSF / opts.TSF

	for _, id := range e.prob.bodies {
		rBody, vBody, _, err := e.eph.Lookup(id, et, opts.Frame, "NONE", opts.Center)
		if err != nil {
			return err
		}
		gm, err := e.consts.GM(id)
		if err != nil {
			return err
		}
		gmS := e.scale.ScaleGM(gm)
		for i := 0; i < 3; i++ {
			rBody[i] /= opts.LSF
			vBody[i] /= vf
		}

		rRel := []float64{y[0] - rBody[0], y[1] - rBody[1], y[2] - rBody[2]}
		rn := norm(rRel)
		rn3 := rn * rn * rn
		for i := 0; i < 3; i++ {
			acc[i] -= gmS * rRel[i] / rn3
		}

		if stm {
			rn5 := rn3 * rn * rn
			var jac [3][3]float64
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					jac[i][j] = 3 * gmS * rRel[i] * rRel[j] / rn5
					if i == j {
						jac[i][j] -= gmS / rn3
					}
					dfdrAcc[i][j] += jac[i][j]
				}
			}
			for i := 0; i < 3; i++ {
				dft0[i] -= jac[i][0]*vBody[0] + jac[i][1]*vBody[1] + jac[i][2]*vBody[2]
			}
		}

		if opts.Center != SSB && opts.Center != id {
			// The center of integration is itself accelerated by this body.
			// Approximation: the center's inertial acceleration is taken from
			// the body's instantaneous position, not from an ephemeris of the
			// center's acceleration.
			bn := norm(rBody)
			bn3 := bn * bn * bn
			for i := 0; i < 3; i++ {
				acc[i] -= gmS * rBody[i] / bn3
			}
			if stm {
				bn5 := bn3 * bn * bn
				for i := 0; i < 3; i++ {
					var row [3]float64
					for j := 0; j < 3; j++ {
						row[j] = 3 * gmS * rBody[i] * rBody[j] / bn5
						if i == j {
							row[j] -= gmS / bn3
						}
					}
					// Opposite sign from the direct term above.
					dft0[i] += row[0]*vBody[0] + row[1]*vBody[1] + row[2]*vBody[2]
				}
			}
		}
	}

	dy[3] = acc[0]
	dy[4] = acc[1]
	dy[5] = acc[2]

	if !stm {
		return nil
	}

	// dfdx = [[0, I], [dfdr, 0]]
	A := mat64.NewDense(stateDim, stateDim, nil)
	A.Set(0, 3, 1)
	A.Set(1, 4, 1)
	A.Set(2, 5, 1)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			A.Set(i+3, j, dfdrAcc[i][j])
		}
	}

	phi := mat64.NewDense(stateDim, stateDim, append([]float64(nil), y[stateDim:stateDim+stmDim]...))
	phiDot := mat64.NewDense(stateDim, stateDim, nil)
	phiDot.Mul(A, phi)
	idx := stateDim
	for i := 0; i < stateDim; i++ {
		for j := 0; j < stateDim; j++ {
			dy[idx] = phiDot.At(i, j)
			idx++
		}
	}

	sens := mat64.NewVector(stateDim, append([]float64(nil), y[stateDim+stmDim:]...))
	var sensDot mat64.Vector
	sensDot.MulVec(A, sens)
	for i := 0; i < stateDim; i++ {
		dy[stateDim+stmDim+i] = sensDot.At(i, 0)
	}
	for i := 0; i < 3; i++ {
		dy[stateDim+stmDim+3+i] += dft0[i]
	}
	return nil
}
