// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package vitals estimates heart and breathing rate from the slow-time
// signal of a 60GHz FMCW radar pointed at a person.
//
// The input is one value per radar frame, typically the negated peak of the
// frame's Doppler map in dB (see FramePeak). The processing chain is:
//
//	DC removal and high-pass (moving target indicator)
//	sliding average to remove impulse noise
//	Butterworth band-pass on the heart (0.8-2.5Hz) or breathing (0.07-0.4Hz) band
//	rate estimate: FFT peak for the heart, peak counting for breathing
//
// Nothing in here touches hardware, so it can be fed from a recording.
package vitals
