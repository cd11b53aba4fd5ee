// Package config holds the demo's wiring and display options, loaded from
// YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/flavioheleno/ssd1289"
	"gopkg.in/yaml.v3"
)

// Transports accepted in Config.Transport.
const (
	TransportGPIO = "gpio"
	TransportSPI  = "spi"
)

// PinsConfig maps every control role to a GPIO name as known to gpioreg
// (e.g. "GPIO17").
type PinsConfig struct {
	DC    string `yaml:"dc"`
	WR    string `yaml:"wr"`
	Latch string `yaml:"latch,omitempty"`
	RST   string `yaml:"rst,omitempty"`
	// DB lists the data lines, DB0 first. Latched wiring uses the first 8.
	DB []string `yaml:"db"`
}

// Config is the top-level demo configuration.
type Config struct {
	// Transport is "gpio" for the bit-banged parallel bus or "spi".
	Transport string `yaml:"transport"`

	// SPIPort is the spireg name of the port, empty for the first one.
	SPIPort string `yaml:"spi_port,omitempty"`

	Pins PinsConfig `yaml:"pins"`

	// Rotation in degrees: 0, 90, 180 or 270.
	Rotation int `yaml:"rotation"`

	// Bus variant. Latched takes precedence over Naive, Naive over Slow.
	Latched bool `yaml:"latched"`
	Slow    bool `yaml:"slow"`
	Naive   bool `yaml:"naive"`

	// Debug lists the operations to trace: init, addrwin, reg, write,
	// pins or all.
	Debug []string `yaml:"debug,omitempty"`
}

// Default returns the wiring of the Sainsmart 3.2" shield on a Raspberry Pi
// header, 16-bit bus.
func Default() *Config {
	return &Config{
		Transport: TransportGPIO,
		Pins: PinsConfig{
			DC:  "GPIO2",
			WR:  "GPIO3",
			RST: "GPIO4",
			DB: []string{
				"GPIO5", "GPIO6", "GPIO7", "GPIO8",
				"GPIO9", "GPIO10", "GPIO11", "GPIO12",
				"GPIO13", "GPIO16", "GPIO17", "GPIO18",
				"GPIO19", "GPIO20", "GPIO21", "GPIO22",
			},
		},
	}
}

// Normalize fills in missing values so partially filled files behave like
// the defaults.
func (c *Config) Normalize() {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport == "" {
		c.Transport = TransportGPIO
	}
	if c.Pins.DB == nil && c.Transport == TransportGPIO {
		c.Pins.DB = Default().Pins.DB
	}
	for i, d := range c.Debug {
		c.Debug[i] = strings.ToLower(strings.TrimSpace(d))
	}
}

// DataLines returns how many data lines the selected bus needs.
func (c *Config) DataLines() int {
	if c.Transport != TransportGPIO {
		return 0
	}
	if c.Latched {
		return 8
	}
	return 16
}

// Validate checks the configuration is complete for its transport.
func (c *Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportGPIO, TransportSPI:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}
	switch c.Rotation {
	case 0, 90, 180, 270:
	default:
		errs = append(errs, fmt.Errorf("unsupported rotation %d", c.Rotation))
	}
	if c.Pins.DC == "" {
		errs = append(errs, errors.New("pins.dc is required"))
	}
	if c.Transport == TransportGPIO {
		if c.Pins.WR == "" {
			errs = append(errs, errors.New("pins.wr is required on the gpio transport"))
		}
		if c.Latched && c.Pins.Latch == "" {
			errs = append(errs, errors.New("pins.latch is required with latched wiring"))
		}
		if n := c.DataLines(); len(c.Pins.DB) < n {
			errs = append(errs, fmt.Errorf("pins.db has %d lines, need %d", len(c.Pins.DB), n))
		}
	}
	for _, d := range c.Debug {
		if _, ok := debugNames[d]; !ok {
			errs = append(errs, fmt.Errorf("unknown debug flag %q", d))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

var debugNames = map[string]ssd1289.DebugFlags{
	"init":    ssd1289.DebugInitDisplay,
	"addrwin": ssd1289.DebugSetAddrWin,
	"reg":     ssd1289.DebugWriteReg,
	"write":   ssd1289.DebugWrite,
	"pins":    ssd1289.DebugVerifyPins,
	"all":     ssd1289.DebugAll,
}

// Opts returns the driver options described by c, without pins. c must be
// valid.
func (c *Config) Opts() *ssd1289.Opts {
	rot, _ := ssd1289.ParseRotation(c.Rotation)
	o := &ssd1289.Opts{
		Rotation: rot,
		Latched:  c.Latched,
		Slow:     c.Slow,
		Naive:    c.Naive,
	}
	for _, d := range c.Debug {
		o.Debug |= debugNames[d]
	}
	return o
}

// Load reads the YAML file at path on top of the defaults, then normalizes
// and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return yaml.Marshal(cfg)
}
