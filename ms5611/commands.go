// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ms5611

import (
	"fmt"
	"time"
)

const (
	cmdReset     byte = 0x1e
	cmdReadADC   byte = 0x00
	cmdReadPROM  byte = 0xa0 // + 2*word
	cmdConvertD1 byte = 0x50 // pressure
	cmdConvertD2 byte = 0x40 // temperature

	// The datasheet gives 2.8ms for the PROM reload.
	resetDelay = 3 * time.Millisecond
	// Conversion time at OSR256, doubled for every step.
	baseConversionTime = 600 * time.Microsecond

	maxFrequencyHz = 20_000_000
)

// Kind is the physical quantity a conversion measures.
type Kind uint8

const (
	KindTemperature Kind = iota // D2
	KindPressure                // D1
)

func (k Kind) String() string {
	switch k {
	case KindTemperature:
		return "Temperature"
	case KindPressure:
		return "Pressure"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) base() (byte, error) {
	switch k {
	case KindTemperature:
		return cmdConvertD2, nil
	case KindPressure:
		return cmdConvertD1, nil
	default:
		return 0, &ProtocolError{Op: "convert", Msg: fmt.Sprintf("invalid kind %d", uint8(k))}
	}
}

// Oversampling is the ADC oversampling ratio. Its value is the bits or'ed
// into the convert command.
//
// Higher ratio means lower noise and a longer conversion, from 0.6ms at
// OSR256 to 9.6ms at OSR4096.
type Oversampling uint8

const (
	OSR256  Oversampling = 0
	OSR512  Oversampling = 2
	OSR1024 Oversampling = 4
	OSR2048 Oversampling = 6
	OSR4096 Oversampling = 8
)

// Oversamplings lists every supported ratio, from the fastest to the most
// precise.
var Oversamplings = []Oversampling{OSR256, OSR512, OSR1024, OSR2048, OSR4096}

func (o Oversampling) String() string {
	switch o {
	case OSR256:
		return "OSR256"
	case OSR512:
		return "OSR512"
	case OSR1024:
		return "OSR1024"
	case OSR2048:
		return "OSR2048"
	case OSR4096:
		return "OSR4096"
	default:
		return fmt.Sprintf("Oversampling(%d)", uint8(o))
	}
}

// ConversionTime returns how long a conversion at this ratio takes before its
// result can be read.
func (o Oversampling) ConversionTime() time.Duration {
	return baseConversionTime << (o >> 1)
}

// Command returns the convert command byte for a kind and an oversampling
// ratio.
func Command(k Kind, o Oversampling) (byte, error) {
	base, err := k.base()
	if err != nil {
		return 0, err
	}
	if o&^0x0e != 0 || o > OSR4096 {
		return 0, &ProtocolError{Op: "convert", Msg: fmt.Sprintf("invalid oversampling %s", o)}
	}
	cmd := base | byte(o)
	if err := validConvert(cmd); err != nil {
		return 0, err
	}
	return cmd, nil
}

// validConvert accepts exactly 0x40, 0x42, 0x44, 0x46, 0x48, 0x50, 0x52,
// 0x54, 0x56 and 0x58.
func validConvert(cmd byte) error {
	if cmd&0xe1 != 0x40 || cmd&0x0e > 0x08 {
		return &ProtocolError{Op: "convert", Msg: fmt.Sprintf("invalid command 0x%02x", cmd)}
	}
	return nil
}

// conversionTime returns the settle time of a valid convert command.
func conversionTime(cmd byte) time.Duration {
	return Oversampling(cmd & 0x0e).ConversionTime()
}

// kindOf returns the kind of a valid convert command.
func kindOf(cmd byte) Kind {
	if cmd&0xf0 == cmdConvertD1 {
		return KindPressure
	}
	return KindTemperature
}
