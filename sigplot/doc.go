// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sigplot renders sampled signals as stacked line charts.
//
// The charts can be saved as PNG or sent to any display.Drawer, such as an
// e-paper or OLED panel attached to the same board as the radar.
package sigplot
