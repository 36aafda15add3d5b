// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ms5611

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

const (
	// Operating range of the part, in 0.01°C.
	minTemperature = -4000
	maxTemperature = 8500

	maxRaw = 1<<24 - 1
)

// Reading is a compensated measurement.
type Reading struct {
	Temperature int32 // 0.01°C
	Pressure    int32 // 0.01mbar, i.e. Pa
}

// Env stores the reading into e. Humidity is left untouched.
func (r Reading) Env(e *physic.Env) {
	e.Temperature = physic.Temperature(r.Temperature)*10*physic.MilliCelsius + physic.ZeroCelsius
	e.Pressure = physic.Pressure(r.Pressure) * physic.Pascal
}

func (r Reading) String() string {
	return fmt.Sprintf("%.2f°C %.2fmbar", float64(r.Temperature)/100, float64(r.Pressure)/100)
}

// Compensate converts raw D2 (temperature) and D1 (pressure) codes into a
// Reading using the coefficients in cal, following the datasheet's integer
// algorithm including the second order temperature compensation.
//
// cal must carry a valid CRC. A first order temperature outside -40°C..85°C
// is reported with a *RangeError.
func Compensate(rawTemp, rawPres uint32, cal *Calibration) (Reading, error) {
	if rawTemp > maxRaw || rawPres > maxRaw {
		return Reading{}, fmt.Errorf("%w: temperature 0x%x, pressure 0x%x", ErrRawOverflow, rawTemp, rawPres)
	}
	if err := cal.Validate(); err != nil {
		return Reading{}, err
	}

	c1 := int64(cal[1])
	c2 := int64(cal[2])
	c3 := int64(cal[3])
	c4 := int64(cal[4])
	c5 := int64(cal[5])
	c6 := int64(cal[6])
	d1 := int64(rawPres)
	d2 := int64(rawTemp)

	dT := d2 - c5*(1<<8)
	temp := 2000 + dT*c6/(1<<23)
	if temp < minTemperature || temp > maxTemperature {
		return Reading{}, &RangeError{Temperature: int32(temp)}
	}

	t2, off2, sens2 := secondOrder(temp, dT)

	off := c2*(1<<16) + c4*dT/(1<<7) - off2
	sens := c1*(1<<15) + c3*dT/(1<<8) - sens2
	p := (d1*sens/(1<<21) - off) / (1 << 15)

	return Reading{Temperature: int32(temp - t2), Pressure: int32(p)}, nil
}

// secondOrder returns the low temperature corrections T2, OFF2 and SENS2.
// They are all zero at 20°C and above.
func secondOrder(temp, dT int64) (t2, off2, sens2 int64) {
	lo := temp - 2000
	if lo >= 0 {
		return 0, 0, 0
	}
	t2 = dT * dT / (1 << 31)
	off2 = 5 * lo * lo / 2
	sens2 = off2 / 2
	if vlo := temp + 1500; vlo < 0 {
		off2 += 7 * vlo * vlo
		sens2 += 11 * vlo * vlo / 2
	}
	return t2, off2, sens2
}
