// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// vitals estimates heart and breathing rate from a recorded radar stream.
//
// The input has one radar frame per line. A line holding a single number is
// used as the slow-time sample as is; a line holding several numbers is
// taken as the frame's Doppler map in dB and reduced with vitals.FramePeak.
// Blank lines and lines starting with # are skipped.
//
// A new estimate is printed every time a full window of new frames has been
// read. With -png, the filtered signals of the last window are plotted.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cradlewave/devices/sigplot"
	"github.com/cradlewave/devices/vitals"
)

// parseLine returns the sample of one line, and false for a line to skip.
func parseLine(line string) (float64, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return 0, false, nil
	}
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	cells := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid sample %q", f)
		}
		cells = append(cells, v)
	}
	if len(cells) == 1 {
		return cells[0], true, nil
	}
	return vitals.FramePeak(cells), true, nil
}

// run feeds r into m and prints an estimate to w each time m has received a
// full window of new samples. It returns the last estimate, or nil when the
// window was never filled.
func run(r io.Reader, w io.Writer, m *vitals.Monitor) (*vitals.Result, error) {
	var last *vitals.Result
	s := bufio.NewScanner(r)
	n := 0
	for line := 1; s.Scan(); line++ {
		v, ok, err := parseLine(s.Text())
		if err != nil {
			return last, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		m.Add(v)
		if n++; n%m.Size() != 0 {
			continue
		}
		last = m.Process()
		if _, err := fmt.Fprintf(w, "%6.1fs heart rate: %5.1f bpm, breathing rate: %5.1f/min\n",
			float64(n)/m.SampleRate(), last.HeartRate, last.BreathingRate); err != nil {
			return last, err
		}
	}
	return last, s.Err()
}

func traces(r *vitals.Result) []sigplot.Trace {
	return []sigplot.Trace{
		{Title: fmt.Sprintf("Heart %.1f bpm", r.HeartRate), Samples: r.HeartSignal},
		{Title: fmt.Sprintf("Breathing %.1f/min", r.BreathingRate), Samples: r.BreathSignal},
	}
}

func mainImpl() error {
	rate := flag.Float64("rate", vitals.DefaultOpts.SampleRate, "radar frame rate in Hz")
	window := flag.Duration("window", 10*time.Second, "analysis window")
	pngPath := flag.String("png", "", "write a plot of the last window to this file")
	width := flag.Int("width", sigplot.DefaultOpts.Width, "plot width")
	height := flag.Int("height", sigplot.DefaultOpts.Height, "plot height")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	log.SetFlags(0)
	if *verbose {
		log.SetFlags(log.Lmicroseconds)
	} else {
		log.SetOutput(io.Discard)
	}

	var in io.Reader = os.Stdin
	switch flag.NArg() {
	case 0:
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	default:
		return errors.New("too many arguments, try -help")
	}

	o := vitals.DefaultOpts
	o.SampleRate = *rate
	p, err := vitals.New(&o)
	if err != nil {
		return err
	}
	m := vitals.NewMonitor(p, *window)
	log.Printf("window of %d frames at %gHz", m.Size(), *rate)

	last, err := run(in, os.Stdout, m)
	if err != nil {
		return err
	}
	if last == nil {
		return fmt.Errorf("need at least %d frames", m.Size())
	}
	if *pngPath == "" {
		return nil
	}
	f, err := os.Create(*pngPath)
	if err != nil {
		return err
	}
	po := sigplot.DefaultOpts
	po.Width, po.Height = *width, *height
	if err := sigplot.EncodePNG(f, traces(last), &po); err != nil {
		f.Close()
		return err
	}
	log.Printf("wrote %s", *pngPath)
	return f.Close()
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "vitals: %s.\n", err)
		os.Exit(1)
	}
}
