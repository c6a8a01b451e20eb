//go:build examples
// +build examples

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bgt60tr_test

import (
	"fmt"
	"log"
	"os"

	"github.com/cradlewave/devices/bgt60tr"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Example probes a BGT60TR13C with chip-select on GPIO7 and reset on GPIO6.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	p, err := spireg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	cs := gpioreg.ByName("GPIO7")
	rst := gpioreg.ByName("GPIO6")
	if cs == nil || rst == nil {
		log.Fatal("failed to find GPIO7 or GPIO6")
	}
	dev, err := bgt60tr.NewSPI(p, cs, rst, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	r, err := dev.Probe()
	if err != nil {
		log.Fatal(err)
	}
	if _, err := r.WriteTo(os.Stdout); err != nil {
		log.Fatal(err)
	}
	fmt.Println("test complete")
}
