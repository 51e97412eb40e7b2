package nbprop

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
	"github.com/mshafiee/jpleph"
	"github.com/soniakeys/meeus/planetposition"
	"github.com/soniakeys/meeus/pluto"
)

const (
	// FrameJ2000 is the Earth mean equator and equinox of J2000 inertial frame.
	FrameJ2000 = "J2000"
	// FrameECLIPJ2000 is the ecliptic and equinox of J2000 inertial frame.
	FrameECLIPJ2000 = "ECLIPJ2000"
	// CLight is the speed of light in km/s.
	CLight = 299792.458
	// obliquityJ2000 is the IAU 1976 mean obliquity of the ecliptic at J2000
	// (84381.448 arcseconds), the angle defining ECLIPJ2000.
	obliquityJ2000 = 84381.448 / 3600 * math.Pi / 180
	// vsop87VelStep is the half-width in seconds of the central difference
	// used to derive velocities from the VSOP87 position series.
	vsop87VelStep = 300.0
)

// EphemerisError is returned when an ephemeris lookup cannot be served:
// the requested time is outside loaded coverage, or the body, frame or
// aberration correction is unknown to the backend.
type EphemerisError struct {
	Body   int
	ET     float64
	Reason string
}

func (e EphemerisError) Error() string {
	return fmt.Sprintf("ephemeris lookup for body %d at et=%f: %s", e.Body, e.ET, e.Reason)
}

// EphemerisProvider serves body states. Implementations are read-only and
// queried once per body per equations-of-motion evaluation; any caching is
// the provider's responsibility.
type EphemerisProvider interface {
	// Lookup returns the position (km) and velocity (km/s) of body relative
	// to center in the given frame at et (TDB seconds past J2000), along with
	// the one-way light time in seconds. Only aberration correction "NONE"
	// is supported.
	Lookup(body int, et float64, frame, abcorr string, center int) (r, v []float64, lightTime float64, err error)
}

func checkAbcorr(abcorr string, body int, et float64) error {
	if abcorr != "" && abcorr != "NONE" {
		return EphemerisError{Body: body, ET: et, Reason: fmt.Sprintf("aberration correction %q not supported", abcorr)}
	}
	return nil
}

// equatorialTo returns the rotation from the equatorial J2000 frame to the
// requested frame, or nil for the identity.
func equatorialTo(frame string, body int, et float64) (*mat64.Dense, error) {
	switch frame {
	case FrameJ2000:
		return nil, nil
	case FrameECLIPJ2000:
		return R1(obliquityJ2000), nil
	default:
		return nil, EphemerisError{Body: body, ET: et, Reason: fmt.Sprintf("unknown frame %q", frame)}
	}
}

// eclipticTo returns the rotation from the ecliptic J2000 frame to the
// requested frame, or nil for the identity.
func eclipticTo(frame string, body int, et float64) (*mat64.Dense, error) {
	switch frame {
	case FrameECLIPJ2000:
		return nil, nil
	case FrameJ2000:
		return R1(-obliquityJ2000), nil
	default:
		return nil, EphemerisError{Body: body, ET: et, Reason: fmt.Sprintf("unknown frame %q", frame)}
	}
}

/* JPL DE development ephemeris backend. */

// DEEphemeris serves states from a JPL DE ephemeris file (DE430, DE440, ...).
// States are interpolated in the file's native frame, the equatorial ICRF,
// treated here as equatorial J2000.
type DEEphemeris struct {
	eph *jpleph.Ephemeris
	au  float64 // km per AU, from the kernel constants
}

// OpenDE opens a JPL DE ephemeris file. The caller owns the provider and must
// Close it; opening is the explicit initialization step required before any
// propagation using this backend.
func OpenDE(path string) (*DEEphemeris, error) {
	eph, err := jpleph.NewEphemeris(path, true)
	if err != nil {
		return nil, fmt.Errorf("could not open DE ephemeris %s: %s", path, err)
	}
	au := eph.GetEphemerisDouble(jpleph.AUinKM)
	if au <= 0 {
		au = AU
	}
	return &DEEphemeris{eph: eph, au: au}, nil
}

// Close releases the ephemeris file.
func (d *DEEphemeris) Close() error {
	return d.eph.Close()
}

// deTargets maps NAIF ids to the DE body numbering. Planet barycenters and
// planets share the same Chebyshev series in the DE files.
var deTargets = map[int]jpleph.Planet{
	1: jpleph.Mercury, 199: jpleph.Mercury,
	2: jpleph.Venus, 299: jpleph.Venus,
	3: jpleph.EarthMoonBarycenter, 399: jpleph.Earth,
	4: jpleph.Mars, 499: jpleph.Mars,
	5: jpleph.Jupiter, 599: jpleph.Jupiter,
	6: jpleph.Saturn, 699: jpleph.Saturn,
	7: jpleph.Uranus, 799: jpleph.Uranus,
	8: jpleph.Neptune, 899: jpleph.Neptune,
	9: jpleph.Pluto, 999: jpleph.Pluto,
	10:  jpleph.Sun,
	301: jpleph.Moon,
}

// barycentric returns the state of a body relative to the solar-system
// barycenter in the equatorial J2000 frame, in km and km/s.
func (d *DEEphemeris) barycentric(id int, et float64) (r, v []float64, err error) {
	if id == SSB {
		return []float64{0, 0, 0}, []float64{0, 0, 0}, nil
	}
	target, found := deTargets[id]
	if !found {
		return nil, nil, EphemerisError{Body: id, ET: et, Reason: "body not present in DE ephemeris"}
	}
	jed := J2000JD + et/86400
	pos, vel, err := d.eph.CalculatePV(jed, target, jpleph.CenterSolarSystemBarycenter, true)
	if err != nil {
		return nil, nil, EphemerisError{Body: id, ET: et, Reason: err.Error()}
	}
	r = []float64{pos.X * d.au, pos.Y * d.au, pos.Z * d.au}
	v = []float64{vel.DX * d.au / 86400, vel.DY * d.au / 86400, vel.DZ * d.au / 86400}
	return r, v, nil
}

// Lookup implements the EphemerisProvider interface.
func (d *DEEphemeris) Lookup(body int, et float64, frame, abcorr string, center int) (r, v []float64, lightTime float64, err error) {
	if err = checkAbcorr(abcorr, body, et); err != nil {
		return nil, nil, 0, err
	}
	rot, err := equatorialTo(frame, body, et)
	if err != nil {
		return nil, nil, 0, err
	}
	rT, vT, err := d.barycentric(body, et)
	if err != nil {
		return nil, nil, 0, err
	}
	rC, vC, err := d.barycentric(center, et)
	if err != nil {
		return nil, nil, 0, err
	}
	r = make([]float64, 3)
	v = make([]float64, 3)
	for i := 0; i < 3; i++ {
		r[i] = rT[i] - rC[i]
		v[i] = vT[i] - vC[i]
	}
	if rot != nil {
		r = MxV33(rot, r)
		v = MxV33(rot, v)
	}
	return r, v, norm(r) / CLight, nil
}

/* VSOP87 analytic backend. */

// VSOP87Ephemeris serves heliocentric planetary states from the VSOP87
// analytic series, as a lower-fidelity alternative to a DE file. It cannot
// produce barycentric states: the supported centers are the Sun and the
// planets themselves. Native frame is the ecliptic J2000.
type VSOP87Ephemeris struct {
	dir     string
	planets map[int]*planetposition.V87Planet
}

// OpenVSOP87 returns a provider reading the VSOP87 data files from dir.
// Planet series are loaded on first use and cached for the provider lifetime.
func OpenVSOP87(dir string) *VSOP87Ephemeris {
	return &VSOP87Ephemeris{dir: dir, planets: make(map[int]*planetposition.V87Planet)}
}

// vsop87Index maps NAIF ids to VSOP87 planet numbers (0=Mercury .. 7=Neptune).
var vsop87Index = map[int]int{
	1: 0, 199: 0,
	2: 1, 299: 1,
	3: 2, 399: 2,
	4: 3, 499: 3,
	5: 4, 599: 4,
	6: 5, 699: 5,
	7: 6, 799: 6,
	8: 7, 899: 7,
}

// heliocentric returns the ecliptic J2000 position of a body relative to the
// Sun in km at the given JDE.
func (vs *VSOP87Ephemeris) heliocentric(id int, jed, et float64) ([]float64, error) {
	if id == Sun.ID {
		return []float64{0, 0, 0}, nil
	}
	if id == 9 || id == Pluto.ID {
		// Special case, as in Sonia Keys' Meeus.
		l, b, r := pluto.Heliocentric(jed)
		return sphericalToCartesian(l.Rad(), b.Rad(), r*AU), nil
	}
	idx, found := vsop87Index[id]
	if !found {
		return nil, EphemerisError{Body: id, ET: et, Reason: "no VSOP87 series for body"}
	}
	planet, loaded := vs.planets[idx]
	if !loaded {
		var err error
		planet, err = planetposition.LoadPlanetPath(idx, vs.dir)
		if err != nil {
			return nil, EphemerisError{Body: id, ET: et, Reason: fmt.Sprintf("could not load VSOP87 planet %d: %s", idx, err)}
		}
		vs.planets[idx] = planet
	}
	l, b, r := planet.Position2000(jed)
	return sphericalToCartesian(l.Rad(), b.Rad(), r*AU), nil
}

func sphericalToCartesian(l, b, r float64) []float64 {
	sB, cB := math.Sincos(b)
	sL, cL := math.Sincos(l)
	return []float64{r * cB * cL, r * cB * sL, r * sB}
}

// relative returns the ecliptic J2000 position of body relative to center.
func (vs *VSOP87Ephemeris) relative(body, center int, jed, et float64) ([]float64, error) {
	if center == SSB {
		return nil, EphemerisError{Body: body, ET: et, Reason: "barycentric states unavailable in the VSOP87 backend, use a DE file"}
	}
	rT, err := vs.heliocentric(body, jed, et)
	if err != nil {
		return nil, err
	}
	rC, err := vs.heliocentric(center, jed, et)
	if err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		rT[i] -= rC[i]
	}
	return rT, nil
}

// Lookup implements the EphemerisProvider interface. Velocities are derived
// from the position series by central difference.
func (vs *VSOP87Ephemeris) Lookup(body int, et float64, frame, abcorr string, center int) (r, v []float64, lightTime float64, err error) {
	if err = checkAbcorr(abcorr, body, et); err != nil {
		return nil, nil, 0, err
	}
	rot, err := eclipticTo(frame, body, et)
	if err != nil {
		return nil, nil, 0, err
	}
	jed := J2000JD + et/86400
	r, err = vs.relative(body, center, jed, et)
	if err != nil {
		return nil, nil, 0, err
	}
	hDays := vsop87VelStep / 86400
	rPlus, err := vs.relative(body, center, jed+hDays, et)
	if err != nil {
		return nil, nil, 0, err
	}
	rMinus, err := vs.relative(body, center, jed-hDays, et)
	if err != nil {
		return nil, nil, 0, err
	}
	v = make([]float64, 3)
	for i := 0; i < 3; i++ {
		v[i] = (rPlus[i] - rMinus[i]) / (2 * vsop87VelStep)
	}
	if rot != nil {
		r = MxV33(rot, r)
		v = MxV33(rot, v)
	}
	return r, v, norm(r) / CLight, nil
}
