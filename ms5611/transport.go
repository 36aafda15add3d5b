// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ms5611

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Phase is one half-duplex step of a transaction.
//
// W is written, then len(R) bytes are read into R. Delay is waited before the
// phase starts. KeepCS keeps the device selected after the phase when the
// transport has to split the transaction, e.g. around a Delay.
type Phase struct {
	W      []byte
	R      []byte
	Delay  time.Duration
	KeepCS bool
}

// Bus is the transport used by Dev.
//
// Transact must run the phases in order with no other transaction
// interleaved, and fail as a whole if any phase fails.
type Bus interface {
	Configure(f physic.Frequency, mode spi.Mode, bits int) error
	Transact(p []Phase) error
	Close() error
}

// NewSPIBus returns a Bus on top of a periph.io SPI port.
//
// The port still belongs to the caller, Close does not close it.
func NewSPIBus(p spi.Port) Bus {
	return &spiBus{p: p}
}

type spiBus struct {
	mu     sync.Mutex
	p      spi.Port
	c      spi.Conn
	closer io.Closer // set when the port was opened by Open
}

func (s *spiBus) Configure(f physic.Frequency, mode spi.Mode, bits int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return errors.New("spi port already configured")
	}
	c, err := s.p.Connect(f, mode, bits)
	if err != nil {
		return err
	}
	s.c = c
	return nil
}

func (s *spiBus) Transact(p []Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return errors.New("spi port not configured")
	}
	runs := splitRuns(p)
	if len(runs) == 1 && runs[0].delay == 0 {
		if err := s.c.Tx(runs[0].w, runs[0].r); err != nil {
			return err
		}
		runs[0].scatter()
		return nil
	}
	for i := range runs {
		r := &runs[i]
		if r.delay > 0 {
			time.Sleep(r.delay)
		}
		pkt := []spi.Packet{{W: r.w, R: r.r, KeepCS: r.keepCS && i != len(runs)-1}}
		if err := s.c.TxPackets(pkt); err != nil {
			return fmt.Errorf("phase %d: %w", r.first, err)
		}
		r.scatter()
	}
	return nil
}

func (s *spiBus) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// run is a set of consecutive phases with no delay between them, flattened
// into a single full-duplex transfer.
type run struct {
	first  int
	delay  time.Duration
	keepCS bool
	w, r   []byte
	phases []Phase
}

// scatter copies the bytes read back into the phases' R buffers.
func (r *run) scatter() {
	off := 0
	for _, ph := range r.phases {
		off += len(ph.W)
		off += copy(ph.R, r.r[off:])
	}
}

// splitRuns cuts p at every phase that has a Delay. Bytes are clocked out as
// zeros while reading.
func splitRuns(p []Phase) []run {
	var runs []run
	for i, ph := range p {
		if i == 0 || ph.Delay > 0 {
			runs = append(runs, run{first: i, delay: ph.Delay})
		}
		r := &runs[len(runs)-1]
		r.w = append(r.w, ph.W...)
		r.w = append(r.w, make([]byte, len(ph.R))...)
		r.keepCS = ph.KeepCS
		r.phases = append(r.phases, ph)
	}
	for i := range runs {
		runs[i].r = make([]byte, len(runs[i].w))
	}
	return runs
}

var _ Bus = &spiBus{}
