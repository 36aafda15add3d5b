// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/GermanBionicSystems/barometer/chart"
	"github.com/GermanBionicSystems/barometer/ms5611"
	"github.com/GermanBionicSystems/barometer/trend"
)

// seaLevelPressure is the standard atmosphere at sea level, in mbar.
const seaLevelPressure = 1013.25

// sensor is the part of *ms5611.Dev used by the logger.
type sensor interface {
	Trigger(k ms5611.Kind, o ms5611.Oversampling) error
	Read() (uint32, error)
	Compensate(rawTemp, rawPres uint32) (ms5611.Reading, error)
}

type logger struct {
	dev      sensor
	w        io.Writer
	osr      ms5611.Oversampling
	seaLevel float64
	sleep    func(time.Duration)

	// Optional.
	strip  *trend.Strip
	series *chart.Series
}

const header = "date, time, adc_temp_dec, adc_temp_hex, adc_pres_dec, adc_pres_hex, temp_c, pres_mbar, alt_m\n"

// run writes the CSV header then one row per interval, on an absolute
// schedule so the rows do not drift. Errors of a single sample are logged and
// the next sample is still taken. count 0 means until ctx is done.
func (l *logger) run(ctx context.Context, interval time.Duration, count int) error {
	if _, err := io.WriteString(l.w, header); err != nil {
		return err
	}
	next := time.Now()
	for i := 0; count == 0 || i < count; i++ {
		next = next.Add(interval)
		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
		if err := l.sample(next); err != nil {
			log.Print(err)
		}
	}
	return nil
}

// sample takes one temperature and pressure pair and writes its row.
func (l *logger) sample(now time.Time) error {
	rawTemp, err := l.measure(ms5611.KindTemperature)
	if err != nil {
		return err
	}
	rawPres, err := l.measure(ms5611.KindPressure)
	if err != nil {
		return err
	}
	r, err := l.dev.Compensate(rawTemp, rawPres)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(l.w, l.row(now, rawTemp, rawPres, r)); err != nil {
		return err
	}
	if l.series != nil {
		l.series.Add(now, r)
	}
	if l.strip != nil {
		return l.strip.Push(float64(r.Pressure) / 100)
	}
	return nil
}

func (l *logger) measure(k ms5611.Kind) (uint32, error) {
	if err := l.dev.Trigger(k, l.osr); err != nil {
		return 0, fmt.Errorf("start convert error (%s): %w", k, err)
	}
	l.sleep(l.osr.ConversionTime())
	v, err := l.dev.Read()
	if err != nil {
		return 0, fmt.Errorf("read adc error (%s): %w", k, err)
	}
	return v, nil
}

func (l *logger) row(now time.Time, rawTemp, rawPres uint32, r ms5611.Reading) string {
	t := float64(r.Temperature) / 100
	p := float64(r.Pressure) / 100
	return fmt.Sprintf("%s, %d, %08x, %d, %08x, %.2f, %.2f, %.2f\n",
		now.Format("2006-01-02, 15:04:05"), rawTemp, rawTemp, rawPres, rawPres,
		t, p, altitude(p, t, l.seaLevel))
}

// altitude approximates the height in meters above the level where the
// pressure is p0, from the pressure p in mbar and the temperature t in °C.
func altitude(p, t, p0 float64) float64 {
	return (math.Pow(p0/p, 1/5.257) - 1) * (t + 273.15) / 0.0065
}
