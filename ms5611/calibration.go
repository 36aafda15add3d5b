// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ms5611

import (
	"fmt"
	"strings"

	"github.com/GermanBionicSystems/barometer/common"
)

// Calibration is the content of the device PROM.
//
// Word 0 is factory data not used by the compensation. Words 1 to 6 are the
// coefficients C1 to C6. The low nibble of word 7 is the CRC-4 over the
// eight words.
type Calibration [8]uint16

// CRC returns the CRC-4 calculated over the words, ignoring the stored one.
func (c *Calibration) CRC() byte {
	return common.CRC4(*c)
}

// Validate returns a *CalibrationError when the stored CRC does not match
// the words.
func (c *Calibration) Validate() error {
	stored := byte(c[7] & 0x000f)
	if calculated := c.CRC(); calculated != stored {
		return &CalibrationError{Stored: stored, Calculated: calculated}
	}
	return nil
}

func (c *Calibration) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, w := range c {
		if i != 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "C%d: %d", i, w)
	}
	b.WriteString("}")
	return b.String()
}
