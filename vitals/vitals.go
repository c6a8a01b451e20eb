// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vitals

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Band is a frequency range in Hz.
type Band struct {
	Low, High float64
}

// Contains reports whether f is within the band, edges included.
func (b Band) Contains(f float64) bool {
	return f >= b.Low && f <= b.High
}

// Opts configures a Processor.
type Opts struct {
	// SampleRate is the radar frame rate in Hz.
	SampleRate float64
	// HeartCutoff and BreathCutoff are the moving target indicator high-pass
	// cutoffs of each path.
	HeartCutoff  float64
	BreathCutoff float64
	// HeartBand and BreathBand are the band-pass ranges.
	HeartBand  Band
	BreathBand Band
	// HeartSmoothing and BreathSmoothing are the sliding average widths in
	// samples.
	HeartSmoothing  int
	BreathSmoothing int
	// PeakHeight is the minimum height of a breathing peak, after filtering.
	PeakHeight float64
}

// DefaultOpts matches a BGT60TR13C streaming frames at 15Hz.
var DefaultOpts = Opts{
	SampleRate:      15,
	HeartCutoff:     0.3,
	BreathCutoff:    0.07,
	HeartBand:       Band{0.8, 2.5},
	BreathBand:      Band{0.07, 0.4},
	HeartSmoothing:  5,
	BreathSmoothing: 3,
	PeakHeight:      1.5,
}

const (
	// minFilterSamples is the shortest signal that is band-pass filtered;
	// shorter ones are passed through.
	minFilterSamples = 20
	// minRateSamples is the shortest signal a rate is estimated on.
	minRateSamples = 60
	// minFFTSize is the smallest FFT length, signals are zero padded to it.
	minFFTSize = 512
	// topPeaks is how many Doppler cells are averaged by FramePeak.
	topPeaks = 10
)

// Processor turns a slow-time radar signal into heart and breathing rates.
//
// It is stateless past construction and safe for concurrent use.
type Processor struct {
	opts       Opts
	mtiHeart   Filter
	mtiBreath  Filter
	heartBand  Filter
	breathBand Filter
}

// New returns a Processor. opts may be nil, in which case DefaultOpts are
// used.
func New(opts *Opts) (*Processor, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.HeartSmoothing < 1 || o.BreathSmoothing < 1 {
		return nil, errors.New("vitals: smoothing width must be at least 1")
	}
	p := &Processor{opts: o}
	var err error
	if p.mtiHeart, err = HighPass(o.SampleRate, o.HeartCutoff, 1); err != nil {
		return nil, err
	}
	if p.mtiBreath, err = HighPass(o.SampleRate, o.BreathCutoff, 1); err != nil {
		return nil, err
	}
	if p.heartBand, err = BandPass(o.SampleRate, o.HeartBand.Low, o.HeartBand.High, 2); err != nil {
		return nil, fmt.Errorf("vitals: heart band: %w", err)
	}
	if p.breathBand, err = BandPass(o.SampleRate, o.BreathBand.Low, o.BreathBand.High, 2); err != nil {
		return nil, fmt.Errorf("vitals: breath band: %w", err)
	}
	return p, nil
}

// Opts returns the settings in use.
func (p *Processor) Opts() Opts {
	return p.opts
}

// Result holds every stage of the pipeline.
type Result struct {
	MTIHeart     []float64
	MTIBreath    []float64
	HeartSignal  []float64
	BreathSignal []float64
	// HeartRate and BreathingRate are in beats and breaths per minute; 0
	// means no estimate.
	HeartRate     float64
	BreathingRate float64
}

// Process runs both paths on raw.
func (p *Processor) Process(raw []float64) *Result {
	r := &Result{
		MTIHeart:  p.mti(p.mtiHeart, raw),
		MTIBreath: p.mti(p.mtiBreath, raw),
	}
	r.HeartSignal = p.bandPass(p.heartBand, SlidingAverage(r.MTIHeart, p.opts.HeartSmoothing))
	r.BreathSignal = p.bandPass(p.breathBand, SlidingAverage(r.MTIBreath, p.opts.BreathSmoothing))
	r.HeartRate = p.HeartRate(r.HeartSignal)
	r.BreathingRate = p.BreathingRate(r.BreathSignal)
	return r
}

func (p *Processor) mti(f Filter, x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	y := append([]float64(nil), x...)
	floats.AddConst(-stat.Mean(y, nil), y)
	return f.Apply(y)
}

func (p *Processor) bandPass(f Filter, x []float64) []float64 {
	if len(x) < minFilterSamples {
		return append([]float64(nil), x...)
	}
	return f.Apply(x)
}

// HeartRate returns the strongest frequency of x within the heart band, in
// beats per minute.
//
// x is detrended, normalized, Hann windowed and zero padded to at least four
// times its length. It returns 0 when x is too short or when the peak is
// less than twice the band average.
func (p *Processor) HeartRate(x []float64) float64 {
	n := len(x)
	if n < minRateSamples {
		return 0
	}
	s := append([]float64(nil), x...)
	floats.AddConst(-stat.Mean(s, nil), s)
	if sd := stat.StdDev(s, nil); sd > 0 {
		floats.Scale(1/sd, s)
	}
	window.Hann(s)

	size := max(minFFTSize, 4*n)
	padded := make([]float64, size)
	copy(padded, s)
	fft := fourier.NewFFT(size)
	coeff := fft.Coefficients(nil, padded)

	var mags []float64
	peak, peakFreq := 0.0, 0.0
	for i, c := range coeff {
		f := fft.Freq(i) * p.opts.SampleRate
		if !p.opts.HeartBand.Contains(f) {
			continue
		}
		m := cmplx.Abs(c)
		mags = append(mags, m)
		if m > peak {
			peak, peakFreq = m, f
		}
	}
	if len(mags) == 0 || peak == 0 || peak < 2*stat.Mean(mags, nil) {
		return 0
	}
	return peakFreq * 60
}

// BreathingRate counts the peaks of x at least PeakHeight high and scales
// the count to breaths per minute. It returns 0 when x is too short.
func (p *Processor) BreathingRate(x []float64) float64 {
	n := len(x)
	if n < minRateSamples {
		return 0
	}
	seconds := float64(n) / p.opts.SampleRate
	return float64(CountPeaks(x, p.opts.PeakHeight)) / seconds * 60
}

// CountPeaks returns the number of local maxima of x at least height high.
// A flat top counts once and the end points never count.
func CountPeaks(x []float64, height float64) int {
	count := 0
	for i := 1; i < len(x)-1; i++ {
		if x[i] < height || x[i] <= x[i-1] {
			continue
		}
		// Walk over a plateau.
		j := i
		for j < len(x)-1 && x[j+1] == x[i] {
			j++
		}
		if j < len(x)-1 && x[j+1] < x[i] {
			count++
		}
		i = j
	}
	return count
}

// SlidingAverage returns the moving average of x over width samples,
// centered and the same length as x. Samples outside x count as 0.
func SlidingAverage(x []float64, width int) []float64 {
	if width <= 1 || len(x) == 0 {
		return append([]float64(nil), x...)
	}
	out := make([]float64, len(x))
	half := (width - 1) / 2
	for i := range x {
		sum := 0.0
		for k := 0; k < width; k++ {
			if j := i + k - half; j >= 0 && j < len(x) {
				sum += x[j]
			}
		}
		out[i] = sum / float64(width)
	}
	return out
}

// LinearToDB converts a magnitude to dB. Zero maps to -200dB.
func LinearToDB(v float64) float64 {
	return 20 * math.Log10(math.Abs(v)+1e-10)
}

// FramePeak reduces one Doppler map, in dB, to a single slow-time sample:
// the negated mean of its strongest cells.
func FramePeak(db []float64) float64 {
	if len(db) == 0 {
		return 0
	}
	s := append([]float64(nil), db...)
	sort.Sort(sort.Reverse(sort.Float64Slice(s)))
	if len(s) > topPeaks {
		s = s[:topPeaks]
	}
	return -stat.Mean(s, nil)
}
