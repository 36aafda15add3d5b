// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package chart renders a series of MS5611 readings to an image.
//
// Pressure is drawn in blue against the left scale and temperature in red
// against the right scale, both over the time covered by the series.
package chart

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/GermanBionicSystems/barometer/ms5611"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// Opts represents the options available to draw a chart.
type Opts struct {
	Width  int
	Height int
	Title  string
	// FontSize is in points.
	FontSize float64

	_ struct{}
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Width:    800,
	Height:   400,
	FontSize: 12,
}

// Series is a time ordered list of readings.
type Series struct {
	times    []time.Time
	readings []ms5611.Reading
}

// Add appends a reading taken at t.
func (s *Series) Add(t time.Time, r ms5611.Reading) {
	s.times = append(s.times, t)
	s.readings = append(s.readings, r)
}

// Len returns the number of readings in the series.
func (s *Series) Len() int {
	return len(s.readings)
}

// Draw renders the series.
func (s *Series) Draw(o *Opts) (image.Image, error) {
	dc, err := s.draw(o)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG renders the series and encodes it as PNG to w.
func (s *Series) WritePNG(w io.Writer, o *Opts) error {
	dc, err := s.draw(o)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

const margin = 60

var loadFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

func (s *Series) draw(o *Opts) (*gg.Context, error) {
	if o == nil {
		o = &DefaultOpts
	}
	if len(s.readings) == 0 {
		return nil, errors.New("chart: empty series")
	}
	if o.Width <= 2*margin || o.Height <= 2*margin {
		return nil, fmt.Errorf("chart: %dx%d is too small", o.Width, o.Height)
	}
	f, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}
	size := o.FontSize
	if size <= 0 {
		size = DefaultOpts.FontSize
	}

	dc := gg.NewContext(o.Width, o.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size}))

	left, top := float64(margin), float64(margin)
	right, bottom := float64(o.Width-margin), float64(o.Height-margin)

	// Frame.
	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(1)
	dc.DrawRectangle(left, top, right-left, bottom-top)
	dc.Stroke()

	start, end := s.times[0], s.times[len(s.times)-1]
	span := end.Sub(start)
	x := func(i int) float64 {
		if span <= 0 {
			return (left + right) / 2
		}
		return left + (right-left)*float64(s.times[i].Sub(start))/float64(span)
	}

	pLo, pHi := s.bounds(func(r ms5611.Reading) int32 { return r.Pressure })
	tLo, tHi := s.bounds(func(r ms5611.Reading) int32 { return r.Temperature })
	s.plot(dc, x, top, bottom, pLo, pHi, func(r ms5611.Reading) int32 { return r.Pressure })
	dc.SetRGB(0.1, 0.3, 0.9)
	dc.Stroke()
	s.plot(dc, x, top, bottom, tLo, tHi, func(r ms5611.Reading) int32 { return r.Temperature })
	dc.SetRGB(0.9, 0.2, 0.1)
	dc.Stroke()

	// Scales, in mbar and °C.
	dc.SetRGB(0.1, 0.3, 0.9)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", float64(pHi)/100), left-4, top, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", float64(pLo)/100), left-4, bottom, 1, 0.5)
	dc.DrawStringAnchored("mbar", left-4, top-size, 1, 0.5)
	dc.SetRGB(0.9, 0.2, 0.1)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", float64(tHi)/100), right+4, top, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", float64(tLo)/100), right+4, bottom, 0, 0.5)
	dc.DrawStringAnchored("°C", right+4, top-size, 0, 0.5)

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(start.Format(time.DateTime), left, bottom+size+4, 0, 0.5)
	dc.DrawStringAnchored(end.Format(time.DateTime), right, bottom+size+4, 1, 0.5)
	if o.Title != "" {
		dc.DrawStringAnchored(o.Title, float64(o.Width)/2, top/2, 0.5, 0.5)
	}
	return dc, nil
}

func (s *Series) bounds(v func(ms5611.Reading) int32) (lo, hi int32) {
	lo, hi = v(s.readings[0]), v(s.readings[0])
	for _, r := range s.readings[1:] {
		lo = min(lo, v(r))
		hi = max(hi, v(r))
	}
	return lo, hi
}

// plot adds the path of one quantity to dc. A flat quantity is drawn through
// the middle of the plot area.
func (s *Series) plot(dc *gg.Context, x func(int) float64, top, bottom float64, lo, hi int32, v func(ms5611.Reading) int32) {
	y := func(n int32) float64 {
		if hi == lo {
			return (top + bottom) / 2
		}
		return bottom - (bottom-top)*float64(n-lo)/float64(hi-lo)
	}
	dc.SetLineWidth(2)
	if len(s.readings) == 1 {
		dc.DrawCircle(x(0), y(v(s.readings[0])), 3)
		return
	}
	for i, r := range s.readings {
		if i == 0 {
			dc.MoveTo(x(i), y(v(r)))
		} else {
			dc.LineTo(x(i), y(v(r)))
		}
	}
}
