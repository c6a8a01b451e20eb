// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bgt60tr

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
)

// fastOpts skips all the delays.
var fastOpts = Opts{Frequency: physic.MegaHertz}

// recordPin logs every level change into a log shared by all pins.
type recordPin struct {
	gpiotest.Pin
	log *[]string
}

func (p *recordPin) Out(l gpio.Level) error {
	*p.log = append(*p.log, p.N+"="+l.String())
	return p.Pin.Out(l)
}

type failPin struct {
	gpiotest.Pin
}

func (p *failPin) Out(gpio.Level) error {
	return errors.New("pin stuck")
}

func newPins() (*recordPin, *recordPin, *[]string) {
	log := &[]string{}
	cs := &recordPin{Pin: gpiotest.Pin{N: "CS", Num: 7}, log: log}
	rst := &recordPin{Pin: gpiotest.Pin{N: "RST", Num: 6}, log: log}
	return cs, rst, log
}

func newPlayback(ops ...conntest.IO) *spitest.Playback {
	return &spitest.Playback{Playback: conntest.Playback{Ops: ops, DontPanic: true}}
}

func TestNewSPI(t *testing.T) {
	pb := newPlayback()
	cs, rst, log := newPins()
	d, err := NewSPI(pb, cs, rst, &fastOpts)
	if err != nil {
		t.Fatal(err)
	}
	if s := d.String(); s != "BGT60TR{playback}" {
		t.Errorf("String() = %q", s)
	}
	if diff := cmp.Diff([]string{"CS=High", "RST=High"}, *log); diff != "" {
		t.Errorf("pin sequence (-want +got):\n%s", diff)
	}
	if err := d.Halt(); err != nil {
		t.Error(err)
	}
	if cs.Read() != gpio.High {
		t.Error("CS not released by Halt()")
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestNewSPIErrors(t *testing.T) {
	if _, err := NewSPI(newPlayback(), nil, nil, &Opts{}); err == nil {
		t.Error("expected error for zero frequency")
	}
	if _, err := NewSPI(newPlayback(), nil, nil, &Opts{Frequency: MaxFrequency + physic.Hertz}); err == nil {
		t.Error("expected error above the maximum frequency")
	}
	if _, err := NewSPI(newPlayback(), nil, nil, &Opts{Frequency: MaxFrequency}); err != nil {
		t.Errorf("maximum frequency rejected: %v", err)
	}
	if _, err := NewSPI(newPlayback(), &failPin{}, nil, &fastOpts); err == nil {
		t.Error("expected error from chip-select pin")
	}
}

func TestNewSPIDefaults(t *testing.T) {
	d, err := NewSPI(newPlayback(), nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultOpts, d.opts); diff != "" {
		t.Errorf("opts (-want +got):\n%s", diff)
	}
	if err := d.Halt(); err != nil {
		t.Error(err)
	}
	if err := d.Reset(); err != ErrNoResetPin {
		t.Errorf("Reset() = %v, want %v", err, ErrNoResetPin)
	}
}

func TestReadRegister(t *testing.T) {
	pb := newPlayback(
		conntest.IO{W: []byte{0x02, 0x00, 0x00, 0x00}, R: []byte{0x10, 0x00, 0x01, 0x02}},
		conntest.IO{W: []byte{0x0c, 0x00, 0x00, 0x00}, R: []byte{0x00, 0xab, 0xcd, 0xef}},
	)
	cs, rst, log := newPins()
	d, err := NewSPI(pb, cs, rst, &fastOpts)
	if err != nil {
		t.Fatal(err)
	}
	*log = nil
	v, err := d.ReadRegister(RegADC0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x000102 {
		t.Errorf("ReadRegister(ADC0) = 0x%06x", v)
	}
	v, err = d.ReadRegister(RegSFCTL)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xabcdef {
		t.Errorf("ReadRegister(SFCTL) = 0x%06x", v)
	}
	want := []string{"CS=Low", "CS=High", "CS=Low", "CS=High"}
	if diff := cmp.Diff(want, *log); diff != "" {
		t.Errorf("pin sequence (-want +got):\n%s", diff)
	}
	if _, err := d.ReadRegister(0x80); err == nil {
		t.Error("expected error for register 0x80")
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestWriteRegister(t *testing.T) {
	pb := newPlayback(
		conntest.IO{W: []byte{0x03, 0x12, 0x34, 0x56}, R: make([]byte, 4)},
		conntest.IO{W: []byte{0x01, 0x00, 0x00, 0x0e}, R: make([]byte, 4)},
	)
	d, err := NewSPI(pb, nil, nil, &fastOpts)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WriteRegister(RegADC0, 0x123456); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteRegister(RegADC0, 0x1000000); err == nil {
		t.Error("expected error for a 25 bit value")
	}
	if err := d.WriteRegister(0xff, 0); err == nil {
		t.Error("expected error for register 0xff")
	}
	if err := d.SoftReset(ResetSoftware | ResetFSM | ResetFIFO); err != nil {
		t.Fatal(err)
	}
	if err := d.SoftReset(0); err == nil {
		t.Error("expected error for empty reset mode")
	}
	if err := d.SoftReset(1); err == nil {
		t.Error("expected error for frame start bit")
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestTxError(t *testing.T) {
	pb := newPlayback(conntest.IO{W: []byte{0x04, 0x00, 0x00, 0x00}, R: make([]byte, 4)})
	cs, rst, _ := newPins()
	d, err := NewSPI(pb, cs, rst, &fastOpts)
	if err != nil {
		t.Fatal(err)
	}
	// The playback expects a CHIP_ID read.
	if _, err := d.ReadRegister(RegMain); err == nil {
		t.Fatal("expected error")
	} else if !strings.HasPrefix(err.Error(), "bgt60tr: read MAIN: ") {
		t.Errorf("unexpected error %q", err)
	}
	if cs.Read() != gpio.High {
		t.Error("CS left asserted after failed exchange")
	}
}

func TestReset(t *testing.T) {
	cs, rst, log := newPins()
	d, err := NewSPI(newPlayback(), cs, rst, &fastOpts)
	if err != nil {
		t.Fatal(err)
	}
	*log = nil
	if err := d.Reset(); err != nil {
		t.Fatal(err)
	}
	want := []string{"CS=High", "RST=High", "RST=Low", "RST=High"}
	if diff := cmp.Diff(want, *log); diff != "" {
		t.Errorf("pin sequence (-want +got):\n%s", diff)
	}

	d.rst = &failPin{}
	if err := d.Reset(); err == nil {
		t.Error("expected error from reset pin")
	}
}

func TestProbe(t *testing.T) {
	var tests = []struct {
		name  string
		rx    []byte
		id    ChipID
		valid bool
	}{
		{"valid", []byte{0x00, 0x01, 0x02, 0x03}, 0x010203, true},
		{"status ignored", []byte{0xff, 0x01, 0x02, 0x03}, 0x010203, true},
		{"pulled down", []byte{0x00, 0x00, 0x00, 0x00}, 0, false},
		{"floating", []byte{0xff, 0xff, 0xff, 0xff}, 0xffffff, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pb := newPlayback(conntest.IO{W: []byte{0x04, 0x00, 0x00, 0x00}, R: tc.rx})
			cs, rst, log := newPins()
			d, err := NewSPI(pb, cs, rst, &fastOpts)
			if err != nil {
				t.Fatal(err)
			}
			*log = nil
			r, err := d.Probe()
			if err != nil {
				t.Fatal(err)
			}
			if r.ID != tc.id {
				t.Errorf("ID = 0x%06x, want 0x%06x", uint32(r.ID), uint32(tc.id))
			}
			if r.Valid() != tc.valid {
				t.Errorf("Valid() = %t, want %t", r.Valid(), tc.valid)
			}
			if tc.valid && r.Err() != nil {
				t.Errorf("Err() = %v", r.Err())
			}
			if !tc.valid && r.Err() != ErrInvalidChipID {
				t.Errorf("Err() = %v, want %v", r.Err(), ErrInvalidChipID)
			}
			if !r.Reset {
				t.Error("Reset = false")
			}
			want := []string{"CS=High", "RST=High", "RST=Low", "RST=High", "CS=Low", "CS=High"}
			if diff := cmp.Diff(want, *log); diff != "" {
				t.Errorf("pin sequence (-want +got):\n%s", diff)
			}
			if err := pb.Close(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestProbeNoResetPin(t *testing.T) {
	pb := newPlayback(conntest.IO{W: []byte{0x04, 0x00, 0x00, 0x00}, R: []byte{0x00, 0x03, 0x07, 0x00}})
	d, err := NewSPI(pb, nil, nil, &fastOpts)
	if err != nil {
		t.Fatal(err)
	}
	r, err := d.Probe()
	if err != nil {
		t.Fatal(err)
	}
	if r.Reset {
		t.Error("Reset = true without a reset pin")
	}
	if r.ID.DigitalID() != 0x03 || r.ID.RFID() != 0x07 {
		t.Errorf("unexpected id %s", r.ID)
	}
}

func TestProbeTransportError(t *testing.T) {
	pb := newPlayback()
	d, err := NewSPI(pb, nil, nil, &fastOpts)
	if err != nil {
		t.Fatal(err)
	}
	if r, err := d.Probe(); err == nil {
		t.Errorf("expected error, got report %s", r)
	}
}

func TestReportWriteTo(t *testing.T) {
	r := &Report{
		Command:  ReadCommand(RegChipID),
		Response: Frame{0x00, 0x01, 0x02, 0x03},
		ID:       0x010203,
	}
	var b bytes.Buffer
	if _, err := r.WriteTo(&b); err != nil {
		t.Fatal(err)
	}
	want := `Command: read CHIP_ID
TX: 0x04 0x00 0x00 0x00
RX: 0x00 0x01 0x02 0x03
Status: 0x00
Chip ID: 0x010203
Digital ID: 0x01
RF ID: 0x02
Result: VALID
`
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("WriteTo() (-want +got):\n%s", diff)
	}
	if s := r.String(); s != "0x010203 (digital 0x01, RF 0x02): VALID" {
		t.Errorf("String() = %q", s)
	}

	b.Reset()
	r = &Report{Command: ReadCommand(RegChipID)}
	n, err := r.WriteTo(&b)
	if err != nil {
		t.Fatal(err)
	}
	if int(n) != b.Len() {
		t.Errorf("WriteTo() = %d, wrote %d", n, b.Len())
	}
	out := b.String()
	if !strings.Contains(out, "Result: INVALID\n") {
		t.Errorf("missing verdict:\n%s", out)
	}
	for _, c := range Causes {
		if !strings.Contains(out, "  - "+c+"\n") {
			t.Errorf("missing cause %q:\n%s", c, out)
		}
	}
}
