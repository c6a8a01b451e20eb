// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bgt60tr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidChipID is reported when the identification register reads back
// all zeros or all ones.
var ErrInvalidChipID = errors.New("bgt60tr: invalid chip id, device absent or miswired")

// Causes lists what usually makes the identification read fail.
var Causes = []string{
	"no device connected",
	"wrong chip-select or reset pin",
	"device not powered",
	"MOSI, MISO or SCLK miswired",
}

// Report is the outcome of Probe.
type Report struct {
	// Reset is true when the hardware reset was performed before the read.
	Reset    bool
	Command  Command
	Response Frame
	ID       ChipID
}

// Probe resets the chip, reads its identification register once and
// decodes it.
//
// An error is only returned when the bus or a pin failed. A chip that
// doesn't answer still yields a Report; check Report.Valid.
func (d *Dev) Probe() (*Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := &Report{Command: ReadCommand(RegChipID)}
	if d.rst != nil {
		if err := d.reset(); err != nil {
			return nil, err
		}
		r.Reset = true
	}
	f, err := d.tx(r.Command)
	if err != nil {
		return nil, err
	}
	r.Response = f
	r.ID = ChipID(f.Payload())
	return r, nil
}

// Valid reports whether a chip answered.
func (r *Report) Valid() bool {
	return r.ID.Valid()
}

// Err returns ErrInvalidChipID when no chip answered, nil otherwise.
func (r *Report) Err() error {
	if r.Valid() {
		return nil
	}
	return ErrInvalidChipID
}

// Verdict returns "VALID" or "INVALID".
func (r *Report) Verdict() string {
	if r.Valid() {
		return "VALID"
	}
	return "INVALID"
}

// WriteTo prints the exchanged bytes, the decoded identifier and the
// verdict. When the identifier is invalid the usual causes are listed.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer
	tx := r.Command.Bytes()
	fmt.Fprintf(&b, "Command: %s\n", r.Command)
	fmt.Fprintf(&b, "TX: %s\n", hexDump(tx[:]))
	fmt.Fprintf(&b, "RX: %s\n", hexDump(r.Response[:]))
	fmt.Fprintf(&b, "Status: 0x%02X\n", r.Response.Status())
	fmt.Fprintf(&b, "Chip ID: 0x%06X\n", uint32(r.ID))
	fmt.Fprintf(&b, "Digital ID: 0x%02X\n", r.ID.DigitalID())
	fmt.Fprintf(&b, "RF ID: 0x%02X\n", r.ID.RFID())
	fmt.Fprintf(&b, "Result: %s\n", r.Verdict())
	if !r.Valid() {
		b.WriteString("Warning: chip id is invalid. Check for:\n")
		for _, c := range Causes {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}
	return b.WriteTo(w)
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: %s", r.ID, r.Verdict())
}

func hexDump(b []byte) string {
	var s bytes.Buffer
	for i, v := range b {
		if i != 0 {
			s.WriteByte(' ')
		}
		fmt.Fprintf(&s, "0x%02X", v)
	}
	return s.String()
}
