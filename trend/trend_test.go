// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trend

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/maruel/ansi256"
)

func TestStrip(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewWriter(&buf, &Opts{Width: 3, Unit: "mbar"})
	if err != nil {
		t.Fatal(err)
	}
	blue := ansi256.Default.Block(color.NRGBA{G: 32, B: 255, A: 255})
	red := ansi256.Default.Block(color.NRGBA{R: 255, G: 32, A: 255})
	mid := ansi256.Default.Block(shade(0, 0, 0))

	if err := s.Push(1000); err != nil {
		t.Fatal(err)
	}
	if want := "\r\033[0m" + mid + "  \033[0m 1000.00..1000.00mbar "; buf.String() != want {
		t.Errorf("got %q, expected %q", buf.String(), want)
	}
	for _, v := range []float64{1001, 1002, 1003} {
		buf.Reset()
		if err := s.Push(v); err != nil {
			t.Fatal(err)
		}
	}
	// 1000 scrolled out.
	if !strings.HasPrefix(buf.String(), "\r\033[0m"+blue) || !strings.Contains(buf.String(), red+"\033[0m 1001.00..1003.00mbar") {
		t.Errorf("unexpected line %q", buf.String())
	}
	buf.Reset()
	if err := s.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\033[0m\n" {
		t.Errorf("Halt wrote %q", buf.String())
	}
}

func TestNewWriter(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, &Opts{}); err == nil {
		t.Error("expected an error for a zero width")
	}
}

func TestShade(t *testing.T) {
	var tests = []struct {
		v, lo, hi float64
		want      color.NRGBA
	}{
		{v: 0, lo: 0, hi: 10, want: color.NRGBA{G: 32, B: 255, A: 255}},
		{v: 10, lo: 0, hi: 10, want: color.NRGBA{R: 255, G: 32, A: 255}},
		{v: 5, lo: 5, hi: 5, want: color.NRGBA{R: 127, G: 32, B: 127, A: 255}},
	}
	for _, test := range tests {
		if got := shade(test.v, test.lo, test.hi); got != test.want {
			t.Errorf("shade(%g, %g, %g) = %v, expected %v", test.v, test.lo, test.hi, got, test.want)
		}
	}
}
