// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package probeconfig describes how a BGT60TRxx radar shield is wired to the
// host and loads that description from a YAML file.
package probeconfig

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cradlewave/devices/bgt60tr"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Backend is the library used to access the SPI controller and GPIOs.
type Backend string

const (
	BackendPeriph Backend = "periph"
	BackendRPIO   Backend = "rpio"
)

// Color selects when the verdict is highlighted.
type Color string

const (
	ColorAuto   Color = "auto"
	ColorAlways Color = "always"
	ColorNever  Color = "never"
)

// Config is the wiring and timing of the probe.
type Config struct {
	Backend Backend `yaml:"Backend"`
	Color   Color   `yaml:"Color"`
	SPI     struct {
		// Port is the spireg name for the periph backend ("" selects the
		// first port), or "0"/"1" for the rpio controller.
		Port string `yaml:"Port"`
		// Frequency in Hz.
		Frequency int64 `yaml:"Frequency"`
	} `yaml:"SPI"`
	Pins struct {
		CS    string `yaml:"CS"`
		Reset string `yaml:"Reset"`
	} `yaml:"Pins"`
	Timing struct {
		CSSetup    time.Duration `yaml:"CSSetup"`
		ResetPulse time.Duration `yaml:"ResetPulse"`
	} `yaml:"Timing"`
}

// Default returns the reference wiring: chip-select on GPIO7, reset on
// GPIO6, 1MHz clock.
func Default() *Config {
	c := &Config{Backend: BackendPeriph, Color: ColorAuto}
	c.SPI.Frequency = int64(bgt60tr.DefaultOpts.Frequency / physic.Hertz)
	c.Pins.CS = "GPIO7"
	c.Pins.Reset = "GPIO6"
	c.Timing.CSSetup = bgt60tr.DefaultOpts.CSSetup
	c.Timing.ResetPulse = bgt60tr.DefaultOpts.ResetPulse
	return c
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("probeconfig: %w", err)
	}
	defer f.Close()
	c := Default()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return nil, fmt.Errorf("probeconfig: can't decode %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the configuration can be used to open the device.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPeriph, BackendRPIO:
	default:
		return fmt.Errorf("probeconfig: unknown backend %q", c.Backend)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("probeconfig: unknown color mode %q", c.Color)
	}
	if c.SPI.Frequency <= 0 || c.SPI.Frequency > int64(bgt60tr.MaxFrequency/physic.Hertz) {
		return fmt.Errorf("probeconfig: invalid SPI frequency %dHz; must be between 1Hz and %s", c.SPI.Frequency, bgt60tr.MaxFrequency)
	}
	if c.Pins.CS == "" {
		return errors.New("probeconfig: chip-select pin is required")
	}
	if c.Timing.CSSetup < 0 || c.Timing.ResetPulse < 0 {
		return errors.New("probeconfig: negative timing")
	}
	return nil
}

// Opts converts the configuration into driver options.
func (c *Config) Opts() *bgt60tr.Opts {
	return &bgt60tr.Opts{
		Frequency:  physic.Frequency(c.SPI.Frequency) * physic.Hertz,
		CSSetup:    c.Timing.CSSetup,
		ResetPulse: c.Timing.ResetPulse,
	}
}
