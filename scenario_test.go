package nbprop

import (
	"testing"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/floats"
)

// End-to-end scenarios against a real DE ephemeris. They only run when
// NBPROP_CONFIG points at a configuration with a DE backend; everything else
// in the suite runs on stub providers.

func scenarioProviders(t *testing.T) (EphemerisProvider, *BodyConstants) {
	t.Helper()
	cfg, err := LoadConfig()
	if err != nil {
		t.Skipf("no reference data configured: %s", err)
	}
	if cfg.Backend != "de" {
		t.Skip("scenario expects a DE backend")
	}
	eph, err := cfg.Ephemeris()
	if err != nil {
		t.Skipf("DE ephemeris not loadable: %s", err)
	}
	if de, ok := eph.(*DEEphemeris); ok {
		t.Cleanup(func() { de.Close() })
	}
	return eph, cfg.Constants()
}

var scenarioBodies = []int{Sun.ID, Earth.ID, Moon.ID, Venus.ID, Mars.ID, Jupiter.ID}

func TestScenarioBarycentric(t *testing.T) {
	eph, consts := scenarioProviders(t)
	start := EpochFromTDB(time.Date(2019, 1, 1, 12, 0, 0, 0, time.UTC))
	state := []float64{1e7, 1e8, 1e6, 15, 20, 3}
	prob, err := NewProblem(state, start, start.Add(30*86400), scenarioBodies, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	p := NewPropagator(prob, eph, consts)
	p.SetLogger(kitlog.NewNopLogger())
	traj, err := p.Propagate()
	if err != nil {
		t.Fatal(err)
	}
	exp := []float64{
		4.223450194979922e7, 1.167640417577651e8, 7.759087742359675e6,
		9.233242342590227, -5.023717927929555, 2.053384118051583,
	}
	got := traj.States[len(traj.States)-1]
	for i := range exp {
		if !floats.EqualWithinAbsOrRel(got[i], exp[i], 0, 1e-10) {
			t.Fatalf("final state component %d: %.15e != %.15e", i, got[i], exp[i])
		}
	}
}

func TestScenarioGeocentric(t *testing.T) {
	eph, consts := scenarioProviders(t)
	start := EpochFromUTC(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC))
	opts := DefaultOptions()
	opts.Center = Earth.ID
	opts.Frame = FrameJ2000
	opts.LSF = 1e5
	opts.TSF = 1e5
	state := []float64{42000, 10, 50, 0.5, 3.080663355435613, 0.6}
	prob, err := NewProblem(state, start, start.Add(30*86400), scenarioBodies, opts)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPropagator(prob, eph, consts)
	p.SetLogger(kitlog.NewNopLogger())
	traj, err := p.Propagate()
	if err != nil {
		t.Fatal(err)
	}
	exp := []float64{
		-22917.92316114288, 46095.31317147258, 8960.615353005227,
		-2.217738317104420, -1.185657482487868, -0.2299275473222509,
	}
	got := traj.States[len(traj.States)-1]
	for i := range exp {
		if !floats.EqualWithinAbsOrRel(got[i], exp[i], 0, 1e-6) {
			t.Fatalf("final state component %d: %.15e != %.15e", i, got[i], exp[i])
		}
	}
}

func TestScenarioVariational(t *testing.T) {
	eph, consts := scenarioProviders(t)
	start := EpochFromTDB(time.Date(2019, 1, 1, 12, 0, 0, 0, time.UTC))
	end := start.Add(30 * 86400)
	opts := DefaultOptions()
	opts.ComputeSTM = true
	opts.AbsTol = 1e-12
	opts.RelTol = 1e-12
	state := []float64{1e8, 0, 0, 0, 35, 0}
	prob, err := NewProblem(state, start, end, scenarioBodies, opts)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPropagator(prob, eph, consts)
	p.SetLogger(kitlog.NewNopLogger())
	traj, err := p.Propagate()
	if err != nil {
		t.Fatal(err)
	}
	phi := traj.STMs[len(traj.STMs)-1]
	sens := traj.Sensitivities[len(traj.Sensitivities)-1]

	rerun := func(s []float64, t0, tf Epoch) []float64 {
		o := DefaultOptions()
		o.AbsTol = 1e-12
		o.RelTol = 1e-12
		pr, err := NewProblem(s, t0, tf, scenarioBodies, o)
		if err != nil {
			t.Fatal(err)
		}
		pp := NewPropagator(pr, eph, consts)
		pp.SetLogger(kitlog.NewNopLogger())
		tr, err := pp.Propagate()
		if err != nil {
			t.Fatal(err)
		}
		return tr.States[len(tr.States)-1]
	}

	steps := []float64{100, 100, 100, 1e-3, 1e-3, 1e-3}
	for j := 0; j < stateDim; j++ {
		plus := append([]float64(nil), state...)
		minus := append([]float64(nil), state...)
		plus[j] += steps[j]
		minus[j] -= steps[j]
		xfPlus := rerun(plus, start, end)
		xfMinus := rerun(minus, start, end)
		fd := make([]float64, stateDim)
		col := make([]float64, stateDim)
		for i := 0; i < stateDim; i++ {
			fd[i] = (xfPlus[i] - xfMinus[i]) / (2 * steps[j])
			col[i] = phi.At(i, j)
		}
		diff := make([]float64, stateDim)
		floats.SubTo(diff, fd, col)
		if norm(diff[:3]) > 1e-6*norm(col[:3]) || norm(diff[3:]) > 1e-6*norm(col[3:]) {
			t.Fatalf("STM column %d disagrees with finite difference", j)
		}
	}

	const dt = 100.0
	xfPlus := rerun(state, start.Add(dt), end.Add(dt))
	xfMinus := rerun(state, start.Add(-dt), end.Add(-dt))
	fd := make([]float64, stateDim)
	for i := 0; i < stateDim; i++ {
		fd[i] = (xfPlus[i] - xfMinus[i]) / (2 * dt)
	}
	diff := make([]float64, stateDim)
	floats.SubTo(diff, fd, sens)
	if norm(diff[:3]) > 1e-5*norm(sens[:3]) || norm(diff[3:]) > 1e-5*norm(sens[3:]) {
		t.Fatalf("epoch sensitivity disagrees with finite difference: %v != %v", fd, sens)
	}
}
