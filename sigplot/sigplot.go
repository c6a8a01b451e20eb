// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sigplot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
)

// Trace is one signal, drawn in its own panel.
type Trace struct {
	Title   string
	Samples []float64
}

// Opts controls the chart layout.
type Opts struct {
	Width, Height int
	// FontSize is the title size in points.
	FontSize   float64
	Background color.Color
	Foreground color.Color
}

// DefaultOpts draws black on white, which also suits monochrome panels.
var DefaultOpts = Opts{
	Width:      640,
	Height:     480,
	FontSize:   12,
	Background: color.White,
	Foreground: color.Black,
}

const margin = 4

var (
	fontOnce sync.Once
	goFont   *truetype.Font
	fontErr  error
)

func newFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		goFont, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("sigplot: %w", fontErr)
	}
	return truetype.NewFace(goFont, &truetype.Options{Size: size}), nil
}

// Render draws traces one above the other. opts may be nil, in which case
// DefaultOpts are used.
func Render(traces []Trace, opts *Opts) (image.Image, error) {
	dc, err := render(traces, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// EncodePNG renders traces and writes them to w as PNG.
func EncodePNG(w io.Writer, traces []Trace, opts *Opts) error {
	dc, err := render(traces, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// Draw renders traces at the size of d and displays them.
func Draw(d display.Drawer, traces []Trace) error {
	o := DefaultOpts
	b := d.Bounds()
	o.Width, o.Height = b.Dx(), b.Dy()
	img, err := Render(traces, &o)
	if err != nil {
		return err
	}
	return d.Draw(b, img, image.Point{})
}

func render(traces []Trace, opts *Opts) (*gg.Context, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if len(traces) == 0 {
		return nil, errors.New("sigplot: nothing to draw")
	}
	ph := o.Height / len(traces)
	if o.Width < 32 || ph < int(o.FontSize)+4*margin {
		return nil, fmt.Errorf("sigplot: %dx%d is too small for %d traces", o.Width, o.Height, len(traces))
	}
	face, err := newFace(o.FontSize)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(o.Width, o.Height)
	dc.SetColor(o.Background)
	dc.Clear()
	dc.SetColor(o.Foreground)
	dc.SetFontFace(face)
	dc.SetLineWidth(1)
	for i, t := range traces {
		top := float64(i * ph)
		panel(dc, t, margin, top, float64(o.Width-margin), top+float64(ph)-margin, o.FontSize)
	}
	return dc, nil
}

// panel draws one trace inside the box (x0, y0)-(x1, y1).
func panel(dc *gg.Context, t Trace, x0, y0, x1, y1, fontSize float64) {
	dc.DrawStringAnchored(t.Title, x0, y0+margin, 0, 1)
	y0 += fontSize + 2*margin
	dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
	dc.Stroke()
	if len(t.Samples) == 0 {
		return
	}
	lo, hi := t.Samples[0], t.Samples[0]
	for _, v := range t.Samples {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
		lo -= 0.5
	}
	w, h := x1-x0-2*margin, y1-y0-2*margin
	step := 0.0
	if len(t.Samples) > 1 {
		step = w / float64(len(t.Samples)-1)
	}
	for i, v := range t.Samples {
		x := x0 + margin + float64(i)*step
		y := y1 - margin - (v-lo)/span*h
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	if len(t.Samples) == 1 {
		dc.LineTo(x1-margin, y1-margin-(t.Samples[0]-lo)/span*h)
	}
	dc.Stroke()
}
