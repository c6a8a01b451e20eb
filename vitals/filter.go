// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vitals

import (
	"fmt"
	"math"
)

// biquad is one second order IIR section, normalized so a0 is 1.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// butterworth returns a second order Butterworth low-pass or high-pass
// section with cutoff fc, designed with the bilinear transform.
func butterworth(highPass bool, fs, fc float64) biquad {
	w0 := 2 * math.Pi * fc / fs
	cosw := math.Cos(w0)
	// Q is 1/sqrt(2), so alpha = sin(w0)/(2Q) = sin(w0)/sqrt(2).
	alpha := math.Sin(w0) / math.Sqrt2
	a0 := 1 + alpha
	var q biquad
	if highPass {
		q = biquad{b0: (1 + cosw) / 2, b1: -(1 + cosw), b2: (1 + cosw) / 2}
	} else {
		q = biquad{b0: (1 - cosw) / 2, b1: 1 - cosw, b2: (1 - cosw) / 2}
	}
	q.b0 /= a0
	q.b1 /= a0
	q.b2 /= a0
	q.a1 = -2 * cosw / a0
	q.a2 = (1 - alpha) / a0
	return q
}

// Filter is a cascade of second order sections. The zero value passes the
// signal through.
type Filter []biquad

// HighPass returns a Butterworth high-pass of 2*sections order.
func HighPass(fs, fc float64, sections int) (Filter, error) {
	if err := checkCutoff(fs, fc); err != nil {
		return nil, err
	}
	f := make(Filter, sections)
	for i := range f {
		f[i] = butterworth(true, fs, fc)
	}
	return f, nil
}

// LowPass returns a Butterworth low-pass of 2*sections order.
func LowPass(fs, fc float64, sections int) (Filter, error) {
	if err := checkCutoff(fs, fc); err != nil {
		return nil, err
	}
	f := make(Filter, sections)
	for i := range f {
		f[i] = butterworth(false, fs, fc)
	}
	return f, nil
}

// BandPass returns a high-pass at lo cascaded with a low-pass at hi.
func BandPass(fs, lo, hi float64, sections int) (Filter, error) {
	if lo >= hi {
		return nil, fmt.Errorf("vitals: invalid band %g-%gHz", lo, hi)
	}
	h, err := HighPass(fs, lo, sections)
	if err != nil {
		return nil, err
	}
	l, err := LowPass(fs, hi, sections)
	if err != nil {
		return nil, err
	}
	return append(h, l...), nil
}

func checkCutoff(fs, fc float64) error {
	if fs <= 0 {
		return fmt.Errorf("vitals: invalid sample rate %gHz", fs)
	}
	if fc <= 0 || fc >= fs/2 {
		return fmt.Errorf("vitals: cutoff %gHz must be between 0 and %gHz", fc, fs/2)
	}
	return nil
}

// Apply runs the cascade over x starting from a zero state and returns the
// filtered copy.
func (f Filter) Apply(x []float64) []float64 {
	y := append([]float64(nil), x...)
	for _, q := range f {
		var x1, x2, y1, y2 float64
		for i, v := range y {
			out := q.b0*v + q.b1*x1 + q.b2*x2 - q.a1*y1 - q.a2*y2
			x2, x1 = x1, v
			y2, y1 = y1, out
			y[i] = out
		}
	}
	return y
}
