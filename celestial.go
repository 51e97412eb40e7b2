package nbprop

import "fmt"

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// SSB is the NAIF id of the solar-system barycenter.
	SSB = 0
)

// Body defines a celestial body by its NAIF id and gravitational parameter.
type Body struct {
	Name string
	ID   int     // NAIF id
	GM   float64 // km^3/s^2
}

// String implements the Stringer interface.
func (b Body) String() string {
	return fmt.Sprintf("%s (%d)", b.Name, b.ID)
}

/* Definitions. GM values are those of DE430/431 (gm_de431.tpc). */

// Sun is our closest star.
var Sun = Body{"Sun", 10, 1.32712440041939400e11}

// Mercury is the swiftest planet.
var Mercury = Body{"Mercury", 199, 2.2031780000000021e4}

// Venus is poisonous.
var Venus = Body{"Venus", 299, 3.2485859200000006e5}

// Earth is home.
var Earth = Body{"Earth", 399, 3.986004354360959e5}

// Moon is Earth's.
var Moon = Body{"Moon", 301, 4.902800066163796e3}

// Mars is the vacation place.
var Mars = Body{"Mars", 499, 4.282837362069909e4}

// Jupiter is big.
var Jupiter = Body{"Jupiter", 599, 1.266865349218008e8}

// Saturn floats and that's really cool.
var Saturn = Body{"Saturn", 699, 3.793120749865224e7}

// Uranus is no joke.
var Uranus = Body{"Uranus", 799, 5.793951322279009e6}

// Neptune is windy.
var Neptune = Body{"Neptune", 899, 6.835099502439672e6}

// Pluto is not a planet and had that down ranking coming.
var Pluto = Body{"Pluto", 999, 8.696138177608748e2}

var bodies = []Body{Sun, Mercury, Venus, Earth, Moon, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

// Planet-system (barycenter) gravitational parameters, NAIF ids 1 through 9.
var systemGM = map[int]float64{
	1: 2.2031780000000021e4,
	2: 3.2485859200000006e5,
	3: 4.035032355022598e5,
	4: 4.2828375214000022e4,
	5: 1.2671276480180005e8,
	6: 3.7940585200000003e7,
	7: 5.794548600000008e6,
	8: 6.836527100580397e6,
	9: 9.770000000000000e2,
}

// BodyName returns a printable name for a NAIF id, for logging.
func BodyName(id int) string {
	for _, b := range bodies {
		if b.ID == id {
			return b.Name
		}
	}
	return fmt.Sprintf("body %d", id)
}

// UnknownBodyError is returned when a gravitational parameter cannot be resolved.
type UnknownBodyError struct {
	ID int
}

func (e UnknownBodyError) Error() string {
	return fmt.Sprintf("no gravitational parameter known for body %d", e.ID)
}

// ConstantsProvider resolves gravitational parameters of celestial bodies.
type ConstantsProvider interface {
	// GM returns the gravitational parameter of the given NAIF id in km^3/s^2.
	GM(id int) (float64, error)
}

// BodyConstants is a map-backed ConstantsProvider preloaded with the DE430
// values above. It is explicitly constructed and injected, never a package
// singleton, so alternate constant sets can coexist.
type BodyConstants struct {
	gm map[int]float64
}

// NewBodyConstants returns a provider loaded with the DE430 values for the
// planets, the Moon, the Sun and the planetary-system barycenters.
func NewBodyConstants() *BodyConstants {
	gm := make(map[int]float64, len(bodies)+len(systemGM))
	for _, b := range bodies {
		gm[b.ID] = b.GM
	}
	for id, v := range systemGM {
		gm[id] = v
	}
	return &BodyConstants{gm: gm}
}

// Define sets or overrides the gravitational parameter of a body.
func (c *BodyConstants) Define(id int, gm float64) {
	c.gm[id] = gm
}

// GM implements the ConstantsProvider interface.
func (c *BodyConstants) GM(id int) (float64, error) {
	gm, found := c.gm[id]
	if !found {
		return 0, UnknownBodyError{ID: id}
	}
	return gm, nil
}
