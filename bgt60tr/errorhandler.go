// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bgt60tr

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// errorHandler chains pin and bus operations and stops at the first error.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil || eh.d.rst == nil {
		return
	}
	eh.err = eh.d.rst.Out(l)
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.err != nil || eh.d.cs == nil {
		return
	}
	eh.err = eh.d.cs.Out(l)
}

func (eh *errorHandler) cTx(w, r []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.c.Tx(w, r)
}

func (eh *errorHandler) sleep(t time.Duration) {
	if eh.err != nil || t <= 0 {
		return
	}
	time.Sleep(t)
}

// transfer runs one chip-select framed exchange. The chip-select line is
// released even if the exchange failed.
func (eh *errorHandler) transfer(w, r []byte) {
	if eh.err != nil {
		return
	}
	eh.csOut(gpio.Low)
	eh.sleep(eh.d.opts.CSSetup)
	eh.cTx(w, r)
	if eh.d.cs != nil {
		if err := eh.d.cs.Out(gpio.High); eh.err == nil {
			eh.err = err
		}
	}
}
