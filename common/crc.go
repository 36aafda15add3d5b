// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, the CRC4 protecting the PROM of MEAS/TE pressure sensors.
package common

// CRC4 calculates the 4-bit CRC of the eight 16-bit PROM words found in
// MEAS/TE Connectivity pressure sensors (MS5611, MS5607, MS5803...) and
// returns it in the low nibble of the result.
//
// The low byte of word 7 holds the stored CRC and is treated as zero during
// the calculation, per application note AN520. The words are not modified.
func CRC4(words [8]uint16) byte {
	words[7] &= 0xff00
	var rem uint16
	for i := range 16 {
		if i%2 == 1 {
			rem ^= words[i>>1] & 0x00ff
		} else {
			rem ^= words[i>>1] >> 8
		}
		for range 8 {
			if rem&0x8000 != 0 {
				rem = (rem << 1) ^ 0x3000
			} else {
				rem <<= 1
			}
		}
	}
	return byte(rem >> 12)
}
