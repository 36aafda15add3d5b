// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ms5611

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestCompensateDatasheet(t *testing.T) {
	// Datasheet example: D1=9085466, D2=8569150, 20.07°C, 1000.09mbar.
	r, err := Compensate(8569150, 9085466, &refCal)
	if err != nil {
		t.Fatal(err)
	}
	if r.Temperature != 2007 || r.Pressure != 100009 {
		t.Errorf("got %s (%d, %d), expected 20.07°C 1000.09mbar", r, r.Temperature, r.Pressure)
	}
}

func TestCompensate(t *testing.T) {
	var tests = []struct {
		name             string
		rawTemp, rawPres uint32
		temp, pres       int32
	}{
		{name: "reference temperature", rawTemp: 8566784, rawPres: 9085466, temp: 2000, pres: 99993},
		{name: "just below 20C", rawTemp: 8566485, rawPres: 9085466, temp: 1999, pres: 99991},
		{name: "cool", rawTemp: 8266784, rawPres: 9085466, temp: 947, pres: 97955},
		{name: "cool low pressure", rawTemp: 8166784, rawPres: 8500000, temp: 576, pres: 86362},
		{name: "-15C", rawTemp: 7529761, rawPres: 9085466, temp: -2000, pres: 92172},
		{name: "very cold", rawTemp: 7500084, rawPres: 9085466, temp: -2129, pres: 91911},
		{name: "-20C", rawTemp: 7381615, rawPres: 9085466, temp: -2654, pres: 90748},
		{name: "-40C", rawTemp: 6789032, rawPres: 9085466, temp: -5471, pres: 82041},
		{name: "85C", rawTemp: 10492680, rawPres: 9085466, temp: 8500, pres: 112495},
		{name: "zero pressure code", rawTemp: 8569150, rawPres: 0, temp: 2007, pres: -73861},
	}
	for _, test := range tests {
		r, err := Compensate(test.rawTemp, test.rawPres, &refCal)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if r.Temperature != test.temp || r.Pressure != test.pres {
			t.Errorf("%s: got (%d, %d), expected (%d, %d)", test.name, r.Temperature, r.Pressure, test.temp, test.pres)
		}
	}
}

func TestCompensateRange(t *testing.T) {
	var tests = []struct {
		rawTemp uint32
		temp    int32
	}{
		{rawTemp: 1000, temp: -26909},
		{rawTemp: 0xffffff, temp: 29710},
	}
	for _, test := range tests {
		_, err := Compensate(test.rawTemp, 9085466, &refCal)
		var re *RangeError
		if !errors.As(err, &re) {
			t.Errorf("0x%x: expected *RangeError, got %v", test.rawTemp, err)
			continue
		}
		if re.Temperature != test.temp {
			t.Errorf("0x%x: temperature %d, expected %d", test.rawTemp, re.Temperature, test.temp)
		}
	}
}

func TestCompensateContract(t *testing.T) {
	if _, err := Compensate(1<<24, 9085466, &refCal); !errors.Is(err, ErrRawOverflow) {
		t.Errorf("expected ErrRawOverflow, got %v", err)
	}
	if _, err := Compensate(8569150, 1<<24, &refCal); !errors.Is(err, ErrRawOverflow) {
		t.Errorf("expected ErrRawOverflow, got %v", err)
	}
	bad := refCal
	bad[6]++
	var ce *CalibrationError
	if _, err := Compensate(8569150, 9085466, &bad); !errors.As(err, &ce) {
		t.Errorf("expected *CalibrationError, got %v", err)
	}
}

func TestSecondOrder(t *testing.T) {
	var tests = []struct {
		name            string
		temp, dT        int64
		t2, off2, sens2 int64
	}{
		// At and above 20°C there is no correction at all.
		{name: "20C", temp: 2000, dT: 0},
		{name: "20.07C", temp: 2007, dT: 2366},
		{name: "85C", temp: 8500, dT: 1925896},
		{name: "19.99C", temp: 1999, dT: -299, t2: 0, off2: 2, sens2: 1},
		// At -15°C exactly the very low temperature terms are still zero.
		{name: "-15C", temp: -1500, dT: -1037023, t2: 500, off2: 30625000, sens2: 15312500},
		{name: "-16C", temp: -1600, dT: -1066700, t2: 529, off2: 32470000, sens2: 16255000},
		{name: "-20C", temp: -2000, dT: -1185169, t2: 654, off2: 41750000, sens2: 21375000},
		{name: "-40C", temp: -4000, dT: -1777752, t2: 1471, off2: 133750000, sens2: 79375000},
	}
	for _, test := range tests {
		t2, off2, sens2 := secondOrder(test.temp, test.dT)
		if t2 != test.t2 || off2 != test.off2 || sens2 != test.sens2 {
			t.Errorf("%s: got (%d, %d, %d), expected (%d, %d, %d)", test.name, t2, off2, sens2, test.t2, test.off2, test.sens2)
		}
	}
}

func TestReadingEnv(t *testing.T) {
	e := physic.Env{Humidity: 10 * physic.PercentRH}
	Reading{Temperature: -2129, Pressure: 91911}.Env(&e)
	if expected := physic.ZeroCelsius - 21290*physic.MilliCelsius; e.Temperature != expected {
		t.Errorf("temperature %s != %s", e.Temperature, expected)
	}
	if expected := 91911 * physic.Pascal; e.Pressure != expected {
		t.Errorf("pressure %s != %s", e.Pressure, expected)
	}
	if e.Humidity != 10*physic.PercentRH {
		t.Errorf("humidity modified: %s", e.Humidity)
	}
	if s := (Reading{Temperature: 2007, Pressure: 100009}).String(); s != "20.07°C 1000.09mbar" {
		t.Errorf("String() = %q", s)
	}
}
