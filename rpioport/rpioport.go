// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rpioport

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// go-rpio entry points used once the port is open.
var (
	spiMode     = rpio.SpiMode
	spiSpeed    = rpio.SpiSpeed
	spiExchange = rpio.SpiExchange
	spiEnd      = rpio.SpiEnd
	rpioClose   = rpio.Close
)

// Port is a SPI controller opened through go-rpio.
type Port struct {
	mu        sync.Mutex
	dev       rpio.SpiDev
	chip      uint8
	limit     physic.Frequency
	connected bool
	closed    bool
}

// Open maps the GPIO memory, enables the SPI controller dev and selects the
// hardware chip-select line chip (0 or 1).
func Open(dev rpio.SpiDev, chip uint8) (*Port, error) {
	if chip > 1 {
		return nil, fmt.Errorf("rpioport: invalid chip select %d", chip)
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpioport: %w", err)
	}
	if err := rpio.SpiBegin(dev); err != nil {
		_ = rpio.Close()
		return nil, fmt.Errorf("rpioport: %w", err)
	}
	rpio.SpiChipSelect(chip)
	return &Port{dev: dev, chip: chip}, nil
}

func (p *Port) String() string {
	return fmt.Sprintf("rpio/SPI%d.%d", p.dev, p.chip)
}

// LimitSpeed implements spi.Port.
func (p *Port) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return errors.New("rpioport: invalid speed")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limit = f
	return nil
}

// Connect implements spi.Port.
//
// spi.NoCS is accepted but the controller still toggles its own chip-select
// line; wire the device to a different GPIO.
func (p *Port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errors.New("rpioport: port closed")
	}
	if p.connected {
		return nil, errors.New("rpioport: Connect cannot be called twice")
	}
	if bits != 8 {
		return nil, fmt.Errorf("rpioport: invalid bits %d; only 8 bits words are supported", bits)
	}
	pol, pha, err := modeBits(mode)
	if err != nil {
		return nil, err
	}
	hz, err := speed(f, p.limit)
	if err != nil {
		return nil, err
	}
	spiMode(pol, pha)
	spiSpeed(hz)
	p.connected = true
	return &Conn{p: p, f: physic.Frequency(hz) * physic.Hertz}, nil
}

// Close disables the SPI controller and unmaps the GPIO memory.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	spiEnd(p.dev)
	return rpioClose()
}

// Conn is a connection on a Port.
type Conn struct {
	p *Port
	f physic.Frequency
}

func (c *Conn) String() string {
	return fmt.Sprintf("%s@%s", c.p, c.f)
}

// Duplex implements conn.Conn.
func (c *Conn) Duplex() conn.Duplex {
	return conn.Full
}

// Tx implements conn.Conn.
func (c *Conn) Tx(w, r []byte) error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.p.closed {
		return errors.New("rpioport: port closed")
	}
	buf := exchangeBuf(w, r)
	spiExchange(buf)
	copy(r, buf)
	return nil
}

// TxPackets implements spi.Conn.
//
// The controller releases chip-select between packets so KeepCS is ignored.
func (c *Conn) TxPackets(pkts []spi.Packet) error {
	for i := range pkts {
		if pkts[i].BitsPerWord != 0 && pkts[i].BitsPerWord != 8 {
			return fmt.Errorf("rpioport: invalid bits per word %d", pkts[i].BitsPerWord)
		}
		if err := c.Tx(pkts[i].W, pkts[i].R); err != nil {
			return err
		}
	}
	return nil
}

// modeBits returns the clock polarity and phase for mode.
func modeBits(mode spi.Mode) (uint8, uint8, error) {
	if mode&spi.HalfDuplex != 0 {
		return 0, 0, errors.New("rpioport: half duplex is not supported")
	}
	if mode&spi.LSBFirst != 0 {
		return 0, 0, errors.New("rpioport: LSB first is not supported")
	}
	m := mode &^ spi.NoCS
	switch m {
	case spi.Mode0:
		return 0, 0, nil
	case spi.Mode1:
		return 0, 1, nil
	case spi.Mode2:
		return 1, 0, nil
	case spi.Mode3:
		return 1, 1, nil
	default:
		return 0, 0, fmt.Errorf("rpioport: invalid mode 0x%x", int(mode))
	}
}

// speed returns the clock in Hz, capped by limit when it is set.
func speed(f, limit physic.Frequency) (int, error) {
	if f <= 0 {
		return 0, fmt.Errorf("rpioport: invalid frequency %s", f)
	}
	if limit > 0 && f > limit {
		f = limit
	}
	hz := int(f / physic.Hertz)
	if hz == 0 {
		return 0, fmt.Errorf("rpioport: frequency %s below 1Hz", f)
	}
	return hz, nil
}

// exchangeBuf returns a buffer large enough for both w and r holding a copy
// of w, as rpio.SpiExchange works in place.
func exchangeBuf(w, r []byte) []byte {
	n := len(w)
	if len(r) > n {
		n = len(r)
	}
	buf := make([]byte, n)
	copy(buf, w)
	return buf
}

// OutPin is a GPIO line driven as an output through go-rpio.
type OutPin struct {
	mu  sync.Mutex
	n   int
	out bool
}

// Pin returns the BCM GPIO line n. The line is switched to output on the
// first call to Out, so it can be requested before the Port is opened.
func Pin(n int) *OutPin {
	return &OutPin{n: n}
}

func (p *OutPin) String() string {
	return p.Name()
}

// Name implements pin.Pin.
func (p *OutPin) Name() string {
	return "GPIO" + strconv.Itoa(p.n)
}

// Number implements pin.Pin.
func (p *OutPin) Number() int {
	return p.n
}

// Function implements pin.Pin.
func (p *OutPin) Function() string {
	return "Out"
}

// Halt implements conn.Resource.
func (p *OutPin) Halt() error {
	return nil
}

// Out implements gpio.PinOut.
func (p *OutPin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	rp := rpio.Pin(p.n)
	if !p.out {
		rp.Output()
		p.out = true
	}
	if l == gpio.High {
		rp.High()
	} else {
		rp.Low()
	}
	return nil
}

// PWM implements gpio.PinOut.
func (p *OutPin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("rpioport: PWM is not supported")
}

var _ spi.PortCloser = &Port{}
var _ spi.Conn = &Conn{}
var _ gpio.PinOut = &OutPin{}
