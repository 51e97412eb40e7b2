// Package nbprop propagates point-mass trajectories under the gravity of
// several solar-system bodies, optionally together with the state transition
// matrix and the sensitivity of the state to the initial epoch. Ephemerides
// come from a JPL DE file or the VSOP87 series; the ODE integration itself is
// delegated to a pluggable adaptive integrator.
package nbprop
