// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// bgt60tr-probe resets a BGT60TRxx radar chip, reads its identification
// register once and prints what was exchanged on the bus.
//
// The exit code is 1 when no chip answered.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/cradlewave/devices/bgt60tr"
	"github.com/cradlewave/devices/internal/probeconfig"
	"github.com/cradlewave/devices/rpioport"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var (
	green = color.NRGBA{0x00, 0xc0, 0x00, 0xff}
	red   = color.NRGBA{0xc0, 0x00, 0x00, 0xff}
)

// open returns the SPI port and the chip-select and reset lines for the
// configured backend. rst is nil when no reset line is configured.
func open(cfg *probeconfig.Config) (spi.PortCloser, gpio.PinOut, gpio.PinOut, error) {
	switch cfg.Backend {
	case probeconfig.BackendRPIO:
		dev, err := rpioDev(cfg.SPI.Port)
		if err != nil {
			return nil, nil, nil, err
		}
		cs, err := parseGPIO(cfg.Pins.CS)
		if err != nil {
			return nil, nil, nil, err
		}
		var rst gpio.PinOut
		if cfg.Pins.Reset != "" {
			n, err := parseGPIO(cfg.Pins.Reset)
			if err != nil {
				return nil, nil, nil, err
			}
			rst = rpioport.Pin(n)
		}
		p, err := rpioport.Open(dev, 0)
		if err != nil {
			return nil, nil, nil, err
		}
		return p, rpioport.Pin(cs), rst, nil
	default:
		if _, err := host.Init(); err != nil {
			return nil, nil, nil, err
		}
		cs := gpioreg.ByName(cfg.Pins.CS)
		if cs == nil {
			return nil, nil, nil, fmt.Errorf("invalid chip-select pin %q", cfg.Pins.CS)
		}
		var rst gpio.PinOut
		if cfg.Pins.Reset != "" {
			p := gpioreg.ByName(cfg.Pins.Reset)
			if p == nil {
				return nil, nil, nil, fmt.Errorf("invalid reset pin %q", cfg.Pins.Reset)
			}
			rst = p
		}
		p, err := spireg.Open(cfg.SPI.Port)
		if err != nil {
			return nil, nil, nil, err
		}
		return p, cs, rst, nil
	}
}

// rpioDev maps the configured port name to a go-rpio SPI controller.
func rpioDev(port string) (rpio.SpiDev, error) {
	switch port {
	case "", "0":
		return rpio.Spi0, nil
	case "1":
		return rpio.Spi1, nil
	default:
		return rpio.Spi0, fmt.Errorf("invalid rpio SPI port %q", port)
	}
}

// applyFlags overrides cfg with the flags that were set on the command line,
// keyed by flag name. "-rst none" disables the reset line.
func applyFlags(cfg *probeconfig.Config, set map[string]string) error {
	for name, v := range set {
		switch name {
		case "spi":
			cfg.SPI.Port = v
		case "cs":
			cfg.Pins.CS = v
		case "rst":
			if v == "none" {
				v = ""
			}
			cfg.Pins.Reset = v
		case "hz":
			hz, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid -hz %q", v)
			}
			cfg.SPI.Frequency = hz
		case "backend":
			cfg.Backend = probeconfig.Backend(v)
		case "color":
			cfg.Color = probeconfig.Color(v)
		}
	}
	return nil
}

// logFlags returns the log flags: bare messages, timestamped when verbose.
func logFlags(verbose bool) int {
	if verbose {
		return log.Lmicroseconds
	}
	return 0
}

// parseGPIO accepts "GPIO7" or "7".
func parseGPIO(name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(name), "GPIO"))
	if err != nil || n < 0 || n > 53 {
		return 0, fmt.Errorf("invalid GPIO %q", name)
	}
	return n, nil
}

// useColor decides if the verdict is highlighted on f.
func useColor(mode probeconfig.Color, f *os.File) bool {
	switch mode {
	case probeconfig.ColorAlways:
		return true
	case probeconfig.ColorNever:
		return false
	default:
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}

// render prints the report followed by the verdict line. With colors, the
// verdict is prefixed by a green or red block.
func render(w io.Writer, r *bgt60tr.Report, colors bool) error {
	if _, err := r.WriteTo(w); err != nil {
		return err
	}
	if colors {
		c := green
		if !r.Valid() {
			c = red
		}
		if _, err := fmt.Fprintf(w, "%s\033[0m %s\n", ansi256.Default.Block(c), r.Verdict()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "test complete")
	return err
}

func mainImpl() error {
	cfgPath := flag.String("config", "", "YAML file describing the wiring")
	flag.String("spi", "", "SPI port to use")
	flag.String("cs", "", "chip-select GPIO")
	flag.String("rst", "", "reset GPIO; \"none\" to skip the reset")
	flag.Int64("hz", 0, "SPI clock in Hz")
	flag.String("backend", "", "periph or rpio")
	flag.String("color", "", "auto, always or never")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	log.SetFlags(logFlags(*verbose))
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	cfg := probeconfig.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = probeconfig.Load(*cfgPath); err != nil {
			return err
		}
		log.Printf("loaded %s", *cfgPath)
	}
	set := map[string]string{}
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = f.Value.String()
	})
	if err := applyFlags(cfg, set); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	p, cs, rst, err := open(cfg)
	if err != nil {
		return err
	}
	defer p.Close()
	log.Printf("using %s, CS=%s, RST=%v", p, cs, rst)

	d, err := bgt60tr.NewSPI(p, cs, rst, cfg.Opts())
	if err != nil {
		return err
	}
	defer d.Halt()

	r, err := d.Probe()
	if err != nil {
		return err
	}
	log.Printf("probe done: %s", r)

	colors := useColor(cfg.Color, os.Stdout)
	var w io.Writer = colorable.NewNonColorable(os.Stdout)
	if colors {
		w = colorable.NewColorableStdout()
	}
	if err := render(w, r, colors); err != nil {
		return err
	}
	return r.Err()
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "bgt60tr-probe: %s.\n", err)
		os.Exit(1)
	}
}
