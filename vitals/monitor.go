// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package vitals

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
)

// Monitor keeps the most recent samples of a stream and runs the Processor
// over them on demand.
type Monitor struct {
	p    *Processor
	size int

	mu      sync.Mutex
	samples deque.Deque[float64]
}

// NewMonitor returns a Monitor keeping d worth of samples.
func NewMonitor(p *Processor, d time.Duration) *Monitor {
	size := int(d.Seconds() * p.opts.SampleRate)
	if size < 1 {
		size = 1
	}
	m := &Monitor{p: p, size: size}
	return m
}

// Size is the number of samples retained.
func (m *Monitor) Size() int {
	return m.size
}

// SampleRate is the rate samples are expected at, in Hz.
func (m *Monitor) SampleRate() float64 {
	return m.p.opts.SampleRate
}

// Add appends v, dropping the oldest sample once the window is full.
func (m *Monitor) Add(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.samples.Len() == m.size {
		m.samples.PopFront()
	}
	m.samples.PushBack(v)
}

// Len returns the number of samples held.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.samples.Len()
}

// Full reports whether the window is filled.
func (m *Monitor) Full() bool {
	return m.Len() == m.size
}

// Samples returns a copy of the window, oldest first.
func (m *Monitor) Samples() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, m.samples.Len())
	for i := range out {
		out[i] = m.samples.At(i)
	}
	return out
}

// Process runs the Processor over the current window.
func (m *Monitor) Process() *Result {
	return m.p.Process(m.Samples())
}
