// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bgt60tr

import "fmt"

// Register is a 7 bit register address.
type Register byte

// MaxRegister is the highest address that fits in a command word.
const MaxRegister Register = 0x7f

// Registers of the BGT60TR13C. Only the main control and status block is
// listed here.
const (
	RegMain     Register = 0x00
	RegADC0     Register = 0x01
	RegChipID   Register = 0x02
	RegStat1    Register = 0x03
	RegPACR1    Register = 0x04
	RegPACR2    Register = 0x05
	RegSFCTL    Register = 0x06
	RegSADCCtrl Register = 0x07
)

// ResetMode selects which block of the chip SoftReset resets. Modes can be
// OR'ed together.
type ResetMode uint32

// Reset bits of RegMain.
const (
	// ResetSoftware resets all registers to their default values.
	ResetSoftware ResetMode = 1 << 1
	// ResetFSM resets the frame state machine.
	ResetFSM ResetMode = 1 << 2
	// ResetFIFO empties the sample FIFO.
	ResetFIFO ResetMode = 1 << 3

	resetMask = ResetSoftware | ResetFSM | ResetFIFO
)

var registerNames = map[Register]string{
	RegMain:     "MAIN",
	RegADC0:     "ADC0",
	RegChipID:   "CHIP_ID",
	RegStat1:    "STAT1",
	RegPACR1:    "PACR1",
	RegPACR2:    "PACR2",
	RegSFCTL:    "SFCTL",
	RegSADCCtrl: "SADC_CTRL",
}

func (r Register) String() string {
	if n, ok := registerNames[r]; ok {
		return n
	}
	return fmt.Sprintf("REG_0x%02X", byte(r))
}
