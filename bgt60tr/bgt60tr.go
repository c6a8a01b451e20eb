// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bgt60tr

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Opts holds the bus and timing parameters of the device.
type Opts struct {
	// Frequency is the SPI clock, up to MaxFrequency. Long jumper wires on a
	// breadboard usually don't cope with more than a few MHz.
	Frequency physic.Frequency
	// CSSetup is the time between asserting chip-select and the first clock
	// edge.
	CSSetup time.Duration
	// ResetPulse is both the length of the reset pulse and the time the chip
	// is given to come out of reset.
	ResetPulse time.Duration
}

// DefaultOpts are conservative settings that work on a breadboard.
var DefaultOpts = Opts{
	Frequency:  1 * physic.MegaHertz,
	CSSetup:    10 * time.Microsecond,
	ResetPulse: time.Millisecond,
}

// MaxFrequency is the fastest SPI clock the chip accepts.
const MaxFrequency = 50 * physic.MegaHertz

// ErrNoResetPin is returned by Reset when the device was created without a
// reset line.
var ErrNoResetPin = errors.New("bgt60tr: no reset pin")

// Dev is a handle to a BGT60TRxx radar chip.
type Dev struct {
	c    spi.Conn
	cs   gpio.PinOut
	rst  gpio.PinOut
	opts Opts

	mu sync.Mutex
}

// NewSPI returns a device connected on the SPI port p.
//
// cs is the chip-select line and rst the reset line. When cs is nil the SPI
// controller drives its own chip-select. When rst is nil, Reset is
// unavailable and Probe skips the hardware reset. opts may be nil, in which
// case DefaultOpts are used.
func NewSPI(p spi.Port, cs, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Frequency <= 0 || o.Frequency > MaxFrequency {
		return nil, fmt.Errorf("bgt60tr: invalid frequency %s", o.Frequency)
	}
	mode := spi.Mode0
	if cs != nil {
		mode |= spi.NoCS
	}
	c, err := p.Connect(o.Frequency, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("bgt60tr: %w", err)
	}
	d := &Dev{c: c, cs: cs, rst: rst, opts: o}

	// Both lines idle high.
	eh := errorHandler{d: d}
	eh.csOut(gpio.High)
	eh.rstOut(gpio.High)
	if eh.err != nil {
		return nil, fmt.Errorf("bgt60tr: %w", eh.err)
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("BGT60TR{%s}", d.c)
}

// Halt releases chip-select.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cs == nil {
		return nil
	}
	return d.cs.Out(gpio.High)
}

// Reset pulses the reset line low and waits for the chip to come back.
func (d *Dev) Reset() error {
	if d.rst == nil {
		return ErrNoResetPin
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reset()
}

func (d *Dev) reset() error {
	eh := errorHandler{d: d}
	eh.csOut(gpio.High)
	eh.rstOut(gpio.High)
	eh.sleep(d.opts.ResetPulse)
	eh.rstOut(gpio.Low)
	eh.sleep(d.opts.ResetPulse)
	eh.rstOut(gpio.High)
	eh.sleep(d.opts.ResetPulse)
	if eh.err != nil {
		return fmt.Errorf("bgt60tr: reset: %w", eh.err)
	}
	return nil
}

// SoftReset resets the blocks selected by mode through the MAIN register.
func (d *Dev) SoftReset(mode ResetMode) error {
	if mode == 0 || mode&^resetMask != 0 {
		return fmt.Errorf("bgt60tr: invalid reset mode 0x%x", uint32(mode))
	}
	_, err := d.Tx(WriteCommand(RegMain, uint32(mode)))
	return err
}

// Tx clocks out one command and returns what the chip sent back.
func (d *Dev) Tx(cmd Command) (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tx(cmd)
}

func (d *Dev) tx(cmd Command) (Frame, error) {
	w := cmd.Bytes()
	var r Frame
	eh := errorHandler{d: d}
	eh.transfer(w[:], r[:])
	if eh.err != nil {
		return Frame{}, fmt.Errorf("bgt60tr: %s: %w", cmd, eh.err)
	}
	return r, nil
}

// ReadRegister returns the 24 bit content of reg.
func (d *Dev) ReadRegister(reg Register) (uint32, error) {
	if reg > MaxRegister {
		return 0, fmt.Errorf("bgt60tr: invalid register 0x%02X", byte(reg))
	}
	f, err := d.Tx(ReadCommand(reg))
	if err != nil {
		return 0, err
	}
	return f.Payload(), nil
}

// WriteRegister sets reg to data. data must fit in 24 bits.
func (d *Dev) WriteRegister(reg Register, data uint32) error {
	if reg > MaxRegister {
		return fmt.Errorf("bgt60tr: invalid register 0x%02X", byte(reg))
	}
	if data&^dataMask != 0 {
		return fmt.Errorf("bgt60tr: value 0x%X for %s exceeds 24 bits", data, reg)
	}
	_, err := d.Tx(WriteCommand(reg, data))
	return err
}

// ChipID reads the identification register.
//
// It doesn't check the value; use ChipID.Valid for that.
func (d *Dev) ChipID() (ChipID, error) {
	v, err := d.ReadRegister(RegChipID)
	return ChipID(v), err
}

var _ conn.Resource = &Dev{}
