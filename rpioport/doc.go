// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rpioport exposes the Raspberry Pi SPI controller and GPIO lines as
// driven by github.com/stianeikeland/go-rpio as periph.io spi.Port and
// gpio.PinOut.
//
// This lets the drivers in this repository run on systems where the spidev
// kernel driver is not loaded, as go-rpio accesses the BCM2835 registers
// directly through /dev/gpiomem.
//
// Only one Port may be open at a time since go-rpio keeps global state.
package rpioport
