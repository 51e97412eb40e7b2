package nbprop

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/julian"
)

const (
	// J2000JD is the Julian date of the J2000 epoch.
	J2000JD = 2451545.0
	// ttMinusTAI is the fixed offset between Terrestrial Time and TAI in seconds.
	ttMinusTAI = 32.184
)

// Epoch is a TDB instant expressed in seconds past J2000 TDB, i.e. the same
// convention as SPICE ephemeris time. The difference between TDB and TT
// (periodic, < 2 ms) is neglected.
type Epoch float64

// leapSecond records the cumulative TAI-UTC offset effective from a given date.
type leapSecond struct {
	year, month int
	taiMinusUTC float64
}

// Cumulative leap seconds since 1972 (IERS Bulletin C).
var leapSeconds = []leapSecond{
	{1972, 1, 10}, {1972, 7, 11}, {1973, 1, 12}, {1974, 1, 13}, {1975, 1, 14},
	{1976, 1, 15}, {1977, 1, 16}, {1978, 1, 17}, {1979, 1, 18}, {1980, 1, 19},
	{1981, 7, 20}, {1982, 7, 21}, {1983, 7, 22}, {1985, 7, 23}, {1988, 1, 24},
	{1990, 1, 25}, {1991, 1, 26}, {1992, 7, 27}, {1993, 7, 28}, {1994, 7, 29},
	{1996, 1, 30}, {1997, 7, 31}, {1999, 1, 32}, {2006, 1, 33}, {2009, 1, 34},
	{2012, 7, 35}, {2015, 7, 36}, {2017, 1, 37},
}

// taiMinusUTCAt returns the TAI-UTC offset in effect at the given UTC date.
func taiMinusUTCAt(dt time.Time) float64 {
	offset := leapSeconds[0].taiMinusUTC
	for _, ls := range leapSeconds {
		effective := time.Date(ls.year, time.Month(ls.month), 1, 0, 0, 0, 0, time.UTC)
		if dt.Before(effective) {
			break
		}
		offset = ls.taiMinusUTC
	}
	return offset
}

// EpochFromTDB interprets the wall-clock reading of dt as a TDB calendar date.
func EpochFromTDB(dt time.Time) Epoch {
	return Epoch((julian.TimeToJD(dt) - J2000JD) * 86400)
}

// EpochFromUTC converts a UTC date to an Epoch, applying the leap second
// table and the fixed TT-TAI offset.
func EpochFromUTC(dt time.Time) Epoch {
	dt = dt.UTC()
	return EpochFromTDB(dt) + Epoch(taiMinusUTCAt(dt)+ttMinusTAI)
}

// JDE returns the Julian ephemeris date of this epoch.
func (e Epoch) JDE() float64 {
	return J2000JD + float64(e)/86400
}

// Add returns the epoch shifted by the given number of seconds.
func (e Epoch) Add(seconds float64) Epoch {
	return e + Epoch(seconds)
}

func (e Epoch) String() string {
	return fmt.Sprintf("%s TDB", julian.JDToTime(e.JDE()).Format("2006-01-02T15:04:05.000"))
}
