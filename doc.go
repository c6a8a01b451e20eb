// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for device drivers.
//
// bgt60tr holds the Infineon BGT60TRxx radar front-end driver. rpioport lets
// the drivers run on top of go-rpio instead of periph.io/x/host. vitals
// turns the radar's slow-time signal into heart and breathing rates and
// sigplot draws the filtered signals.
package devices
