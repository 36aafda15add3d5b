// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package trend draws the recent history of a measurement on the terminal as
// a single line of coloured cells using ANSI 256 colour codes.
//
// The oldest sample is on the left. Each cell is coloured from blue for the
// lowest sample shown to red for the highest one.
package trend

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Opts represents the options available for a Strip.
type Opts struct {
	// Width is the number of samples shown.
	Width int
	// Unit is printed after the range of the samples shown.
	Unit    string
	Palette *ansi256.Palette

	_ struct{}
}

// Strip is a line of the terminal showing the last samples pushed.
type Strip struct {
	w       io.Writer
	width   int
	unit    string
	palette ansi256.Palette

	samples []float64
	buf     bytes.Buffer
}

// New returns a Strip that draws on stderr, leaving stdout to the data.
func New(opts *Opts) (*Strip, error) {
	return NewWriter(colorable.NewColorableStderr(), opts)
}

// NewWriter returns a Strip that draws on w.
func NewWriter(w io.Writer, opts *Opts) (*Strip, error) {
	if opts.Width <= 0 {
		return nil, errors.New("trend: width must be positive")
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Strip{
		w:       w,
		width:   opts.Width,
		unit:    opts.Unit,
		palette: *p,
		samples: make([]float64, 0, opts.Width),
	}, nil
}

func (s *Strip) String() string {
	return fmt.Sprintf("trend.Strip{%d}", s.width)
}

// Push adds a sample, dropping the oldest one when the strip is full, and
// redraws the line.
func (s *Strip) Push(v float64) error {
	if len(s.samples) == s.width {
		copy(s.samples, s.samples[1:])
		s.samples = s.samples[:s.width-1]
	}
	s.samples = append(s.samples, v)
	return s.refresh()
}

// Halt resets the terminal colours and ends the line.
func (s *Strip) Halt() error {
	_, err := s.w.Write([]byte("\033[0m\n"))
	return err
}

func (s *Strip) refresh() error {
	lo, hi := s.samples[0], s.samples[0]
	for _, v := range s.samples {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	s.buf.Reset()
	_, _ = s.buf.WriteString("\r\033[0m")
	for _, v := range s.samples {
		_, _ = io.WriteString(&s.buf, s.palette.Block(shade(v, lo, hi)))
	}
	// Keep the line length constant while the strip fills up.
	for range s.width - len(s.samples) {
		_ = s.buf.WriteByte(' ')
	}
	fmt.Fprintf(&s.buf, "\033[0m %.2f..%.2f%s ", lo, hi, s.unit)
	_, err := s.buf.WriteTo(s.w)
	return err
}

// shade maps v in [lo, hi] from blue to red. A flat series is drawn in the
// middle colour.
func shade(v, lo, hi float64) color.NRGBA {
	t := 0.5
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	return color.NRGBA{R: uint8(255 * t), G: 32, B: uint8(255 * (1 - t)), A: 255}
}
