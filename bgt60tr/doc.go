// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bgt60tr talks to the Infineon BGT60TRxx family of 60GHz radar
// front-ends (BGT60TR13C, BGT60UTR11AIP) over SPI.
//
// Every register access is a single 32 bit full-duplex frame. The first 7
// bits carry the register address, the next bit selects write (1) or read
// (0) and the remaining 24 bits carry the data. The chip shifts out its
// global status byte while the address is clocked in, so the register value
// comes back in the last three bytes of the frame.
//
// The driver can drive chip-select and reset from arbitrary GPIO lines. This
// matches boards where the radar shield is wired to plain GPIOs instead of
// the SPI controller's CE lines.
//
// # Datasheet
//
// https://www.infineon.com/dgdl/Infineon-BGT60TR13C-DataSheet-v01_00-EN.pdf
package bgt60tr
