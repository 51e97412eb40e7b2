package nbprop

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// ConfigError reports an invalid configuration or problem option. It is
// raised at construction time and never reaches the propagation loop.
type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Config holds the reference-data setup read from $NBPROP_CONFIG/conf.toml.
// Loading is explicit: the caller loads once at process start and injects the
// resulting providers; nothing here is furnished lazily on first use.
type Config struct {
	Backend   string // "de" or "vsop87"
	DEFile    string // path to a JPL DE ephemeris file
	VSOP87Dir string // directory holding the VSOP87 data files
	GM        map[int]float64
}

// LoadConfig reads conf.toml from the directory named by the NBPROP_CONFIG
// environment variable.
//
// Recognized settings:
//
//	[ephemeris]
//	backend = "de"        # or "vsop87"
//	de_file = "/data/de430.bin"
//	vsop87_dir = "/data/vsop87"
//	[gm]                  # optional overrides, km^3/s^2 keyed by NAIF id
//	301 = 4902.800066
func LoadConfig() (Config, error) {
	confPath := os.Getenv("NBPROP_CONFIG")
	if confPath == "" {
		return Config{}, ConfigError{Field: "NBPROP_CONFIG", Reason: "environment variable is missing or empty"}
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, ConfigError{Field: "conf.toml", Reason: fmt.Sprintf("%s/conf.toml not found or unreadable: %s", confPath, err)}
	}
	cfg := Config{
		Backend:   v.GetString("ephemeris.backend"),
		DEFile:    v.GetString("ephemeris.de_file"),
		VSOP87Dir: v.GetString("ephemeris.vsop87_dir"),
		GM:        make(map[int]float64),
	}
	if cfg.Backend == "" {
		cfg.Backend = "de"
	}
	if cfg.Backend != "de" && cfg.Backend != "vsop87" {
		return Config{}, ConfigError{Field: "ephemeris.backend", Reason: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
	for key, raw := range v.GetStringMap("gm") {
		id, err := strconv.Atoi(key)
		if err != nil {
			return Config{}, ConfigError{Field: "gm." + key, Reason: "key is not a NAIF id"}
		}
		var gm float64
		switch val := raw.(type) {
		case float64:
			gm = val
		case int:
			gm = float64(val)
		case int64:
			gm = float64(val)
		default:
			return Config{}, ConfigError{Field: "gm." + key, Reason: "value is not a number"}
		}
		cfg.GM[id] = gm
	}
	return cfg, nil
}

// Ephemeris constructs the configured ephemeris provider.
func (c Config) Ephemeris() (EphemerisProvider, error) {
	switch c.Backend {
	case "de":
		if c.DEFile == "" {
			return nil, ConfigError{Field: "ephemeris.de_file", Reason: "no DE ephemeris file configured"}
		}
		return OpenDE(c.DEFile)
	case "vsop87":
		if c.VSOP87Dir == "" {
			return nil, ConfigError{Field: "ephemeris.vsop87_dir", Reason: "no VSOP87 directory configured"}
		}
		return OpenVSOP87(c.VSOP87Dir), nil
	default:
		return nil, ConfigError{Field: "ephemeris.backend", Reason: fmt.Sprintf("unknown backend %q", c.Backend)}
	}
}

// Constants constructs a body-constants provider with the DE430 defaults and
// any [gm] overrides applied.
func (c Config) Constants() *BodyConstants {
	consts := NewBodyConstants()
	for id, gm := range c.GM {
		consts.Define(id, gm)
	}
	return consts
}
