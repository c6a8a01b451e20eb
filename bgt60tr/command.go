// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bgt60tr

import (
	"encoding/binary"
	"fmt"
)

const (
	addrShift        = 25
	writeBit  uint32 = 1 << 24
	dataMask  uint32 = 0x00ffffff
)

// Command is the 32 bit word clocked out to the chip for a register access.
//
// Bits 31-25 hold the register address, bit 24 is set for a write and bits
// 23-0 hold the data to write. On a read the data bits are zero.
type Command uint32

// ReadCommand returns the command word that reads reg.
func ReadCommand(reg Register) Command {
	return Command(uint32(reg&MaxRegister) << addrShift)
}

// WriteCommand returns the command word that writes the low 24 bits of data
// into reg.
func WriteCommand(reg Register, data uint32) Command {
	return Command(uint32(reg&MaxRegister)<<addrShift | writeBit | data&dataMask)
}

// Register returns the register address carried by the command.
func (c Command) Register() Register {
	return Register(uint32(c) >> addrShift)
}

// IsWrite reports whether the command writes the register.
func (c Command) IsWrite() bool {
	return uint32(c)&writeBit != 0
}

// Data returns the 24 bit data field.
func (c Command) Data() uint32 {
	return uint32(c) & dataMask
}

// Bytes returns the command as sent on the wire, most significant byte
// first.
func (c Command) Bytes() [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(c))
	return b
}

func (c Command) String() string {
	if c.IsWrite() {
		return fmt.Sprintf("write %s=0x%06X", c.Register(), c.Data())
	}
	return fmt.Sprintf("read %s", c.Register())
}

// Frame is the 4 bytes shifted in while a Command is shifted out.
type Frame [4]byte

// Status returns the global status byte the chip sends while it receives the
// register address. It is not part of the register value.
func (f Frame) Status() byte {
	return f[0]
}

// Payload returns the 24 bit register value carried by bytes 1 to 3.
func (f Frame) Payload() uint32 {
	return (uint32(f[1])<<16 | uint32(f[2])<<8 | uint32(f[3])) & dataMask
}

// ChipID is the 24 bit content of RegChipID.
type ChipID uint32

const (
	// Values read when nothing drives MISO. A missing or unpowered chip
	// leaves the line either pulled down or floating high.
	chipIDNone     ChipID = 0x000000
	chipIDFloating ChipID = 0xffffff
)

// DigitalID returns bits 23-16 of the identifier.
func (c ChipID) DigitalID() byte {
	return byte(c >> 16)
}

// RFID returns bits 15-8 of the identifier.
func (c ChipID) RFID() byte {
	return byte(c >> 8)
}

// Valid returns false if the identifier is one of the values read back when
// no chip answers.
func (c ChipID) Valid() bool {
	c &= ChipID(dataMask)
	return c != chipIDNone && c != chipIDFloating
}

func (c ChipID) String() string {
	return fmt.Sprintf("0x%06X (digital 0x%02X, RF 0x%02X)", uint32(c)&dataMask, c.DigitalID(), c.RFID())
}
