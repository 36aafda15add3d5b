// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ms5611

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by every bus operation on a Dev whose
// initialization failed. The error returned wraps both ErrNotReady and the
// error that stopped the initialization.
var ErrNotReady = errors.New("ms5611: device not ready")

// ConfigError is returned when the options are rejected before the bus is
// touched.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "ms5611: invalid configuration: " + e.Msg
}

// TransportError wraps a failure of the underlying bus: opening the port,
// configuring it or transferring data.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ms5611: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is returned when the device answers something the protocol
// does not allow, or when a command byte is not part of the command set.
type ProtocolError struct {
	Op  string
	Msg string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("ms5611: %s: %s", e.Op, e.Msg)
}

// CalibrationError is returned when the CRC stored in the PROM does not
// match the calibration words.
type CalibrationError struct {
	Stored     byte
	Calculated byte
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("ms5611: calibration CRC mismatch: stored 0x%x, calculated 0x%x", e.Stored, e.Calculated)
}

// RangeError is returned when the first order temperature falls outside the
// -40°C..85°C operating range of the part. Temperature is in 0.01°C.
type RangeError struct {
	Temperature int32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("ms5611: temperature %.2f°C out of range", float64(e.Temperature)/100)
}

// StaleDataError is returned when the ADC result is zero, which the device
// reports when no conversion was performed since the last read.
type StaleDataError struct{}

func (e *StaleDataError) Error() string {
	return "ms5611: no conversion result available"
}

// ErrRawOverflow is returned by Compensate when a raw ADC code does not fit
// in 24 bits. Codes read from the device always do.
var ErrRawOverflow = errors.New("ms5611: raw ADC code exceeds 24 bits")
