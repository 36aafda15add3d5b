// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ms5611

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// playback is a Bus that replays one conntest.IO per transaction. W is the
// concatenation of every phase's W and R the concatenation of every phase's R.
type playback struct {
	Ops   []conntest.IO
	Count int
	// Fail maps a transaction index to the error it returns.
	Fail map[int]error
	// ConfigureErr is returned by Configure.
	ConfigureErr error

	Phases     [][]Phase
	Frequency  physic.Frequency
	Mode       spi.Mode
	Bits       int
	Configured int
	Closed     bool
}

func (p *playback) Configure(f physic.Frequency, mode spi.Mode, bits int) error {
	p.Configured++
	p.Frequency, p.Mode, p.Bits = f, mode, bits
	return p.ConfigureErr
}

func (p *playback) Transact(phases []Phase) error {
	if err, ok := p.Fail[p.Count]; ok {
		p.Count++
		return err
	}
	if p.Count >= len(p.Ops) {
		return fmt.Errorf("playback: unexpected transaction %d", p.Count)
	}
	io := p.Ops[p.Count]
	var w []byte
	n := 0
	for _, ph := range phases {
		w = append(w, ph.W...)
		n += len(ph.R)
	}
	if !bytes.Equal(w, io.W) {
		return fmt.Errorf("playback: transaction %d wrote %#v, expected %#v", p.Count, w, io.W)
	}
	if n != len(io.R) {
		return fmt.Errorf("playback: transaction %d reads %d bytes, expected %d", p.Count, n, len(io.R))
	}
	off := 0
	for _, ph := range phases {
		off += copy(ph.R, io.R[off:])
	}
	p.Phases = append(p.Phases, phases)
	p.Count++
	return nil
}

func (p *playback) Close() error {
	p.Closed = true
	return nil
}

// done reports an error if some operations were not played back.
func (p *playback) done() error {
	if p.Count != len(p.Ops) {
		return fmt.Errorf("playback: %d of %d operations played", p.Count, len(p.Ops))
	}
	return nil
}

// refCal is the datasheet example coefficients with a valid CRC.
var refCal = Calibration{0x0a5c, 40127, 36924, 23317, 23282, 33464, 28312, 0x005d}

var errInjected = errors.New("injected bus failure")

func resetOps(during, after byte) []conntest.IO {
	return []conntest.IO{{W: []byte{cmdReset}, R: []byte{during, after}}}
}

func promOps(cal Calibration) []conntest.IO {
	ops := make([]conntest.IO, 0, len(cal))
	for i, w := range cal {
		ops = append(ops, conntest.IO{W: []byte{cmdReadPROM + byte(2*i)}, R: []byte{byte(w >> 8), byte(w)}})
	}
	return ops
}

func initOps(cal Calibration) []conntest.IO {
	return append(resetOps(0x00, 0xff), promOps(cal)...)
}

func convertOp(cmd byte, code uint32) conntest.IO {
	return conntest.IO{W: []byte{cmd, cmdReadADC}, R: []byte{byte(code >> 16), byte(code >> 8), byte(code)}}
}

func readOp(code uint32) conntest.IO {
	return conntest.IO{W: []byte{cmdReadADC}, R: []byte{byte(code >> 16), byte(code >> 8), byte(code)}}
}

func join(ops ...[]conntest.IO) []conntest.IO {
	var out []conntest.IO
	for _, o := range ops {
		out = append(out, o...)
	}
	return out
}

// getDev returns a Ready device on a playback bus with the initialization
// already played; ops are what the test itself is expected to play.
func getDev(t *testing.T, ops ...conntest.IO) (*Dev, *playback) {
	t.Helper()
	pb := &playback{Ops: append(initOps(refCal), ops...)}
	o := DefaultOpts
	o.Verbosity = 0
	dev, err := New(pb, &o)
	if err != nil {
		t.Fatal(err)
	}
	// Only keep the test's own phases.
	pb.Phases = nil
	return dev, pb
}
