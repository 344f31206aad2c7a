package dimmerd

import (
	"encoding"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the configuration for the dimmer daemon. It is read once at
// startup and immutable thereafter.
type Config struct {
	// Chip is the GPIO character device to use, e.g. "gpiochip0".
	Chip string `toml:"chip"`
	// UpLine is the line offset of the brightness-up button.
	UpLine int `toml:"up_line"`
	// DownLine is the line offset of the brightness-down button.
	DownLine int `toml:"down_line"`
	// LightLine is the line offset of the light output.
	LightLine int `toml:"light_line"`
	// Period is the PWM period.
	Period TOMLDuration `toml:"period"`
	// MaxLevel is the maximum brightness level. Negative values are
	// clamped to 0 at startup.
	MaxLevel int `toml:"max_level"`
}

// DefaultConfig returns the stock wiring: buttons on lines 24 (up) and
// 23 (down), the light on line 18, a 100µs PWM period and 6 brightness
// steps.
func DefaultConfig() *Config {
	return &Config{
		Chip:      "gpiochip0",
		UpLine:    24,
		DownLine:  23,
		LightLine: 18,
		Period:    TOMLDuration(100 * time.Microsecond),
		MaxLevel:  5,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Chip == "" {
		return errors.New("no gpio chip configured")
	}
	if c.Period <= 0 {
		return errors.New("pwm period must be positive")
	}

	lines := map[int]string{}
	for _, l := range []struct {
		offset int
		name   string
	}{
		{c.UpLine, "up button"},
		{c.DownLine, "down button"},
		{c.LightLine, "light"},
	} {
		if l.offset < 0 {
			return errors.Errorf("%s line offset %d is negative", l.name, l.offset)
		}
		if other, ok := lines[l.offset]; ok {
			return errors.Errorf("%s and %s share line offset %d", other, l.name, l.offset)
		}
		lines[l.offset] = l.name
	}

	return nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader. Fields absent from the
// document keep their DefaultConfig values.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}
