// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ms5611log logs MS5611 readings as CSV on stdout.
//
// Each row holds the local date and time, both raw ADC codes in decimal and
// hexadecimal, the compensated temperature in °C, the pressure in mbar and the
// altitude in meters derived from it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/GermanBionicSystems/barometer/chart"
	"github.com/GermanBionicSystems/barometer/ms5611"
	"github.com/GermanBionicSystems/barometer/trend"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func mainImpl() error {
	hz := 20 * physic.MegaHertz
	spiID := flag.String("spi", "", "SPI port to use")
	flag.Var(&hz, "hz", "SPI port speed")
	osr := flag.Int("osr", 4096, "oversampling ratio: 256, 512, 1024, 2048 or 4096")
	interval := flag.Duration("i", time.Second, "log interval")
	count := flag.Int("n", 0, "number of samples to log, 0 to run until interrupted")
	dump := flag.Bool("d", false, "dump calibration parameters")
	verbose := flag.Int("v", 1, "verbosity: 0 silent, 1 errors, 2 protocol debug")
	width := flag.Int("trend", 0, "width of the pressure trend strip drawn on stderr, 0 to disable")
	pngPath := flag.String("png", "", "write a chart of the logged readings to this PNG file on exit")
	sea := flag.Float64("sea", seaLevelPressure, "sea level pressure in mbar used for the altitude")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *interval <= 0 {
		return errors.New("-i must be positive")
	}
	if *sea <= 0 {
		return errors.New("-sea must be positive")
	}
	o, err := parseOversampling(*osr)
	if err != nil {
		return err
	}

	log.SetFlags(0)
	log.SetPrefix("ms5611log: ")
	if _, err := host.Init(); err != nil {
		return err
	}
	d := ms5611.Open(&ms5611.Opts{
		Port:         *spiID,
		Frequency:    hz,
		Oversampling: o,
		Verbosity:    *verbose,
	})
	defer d.Close()
	if !d.Ready() {
		return d.Err()
	}
	if *dump {
		d.DumpCalibration()
	}

	l := &logger{dev: d, w: os.Stdout, osr: o, seaLevel: *sea, sleep: time.Sleep}
	if *width > 0 {
		if l.strip, err = trend.New(&trend.Opts{Width: *width, Unit: "mbar"}); err != nil {
			return err
		}
		defer l.strip.Halt()
	}
	if *pngPath != "" {
		l.series = &chart.Series{}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := l.run(ctx, *interval, *count); err != nil {
		return err
	}
	if l.series != nil && l.series.Len() != 0 {
		return writeChart(*pngPath, l.series, d.String())
	}
	return nil
}

func writeChart(path string, s *chart.Series, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	o := chart.DefaultOpts
	o.Title = title
	if err := s.WritePNG(f, &o); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func parseOversampling(ratio int) (ms5611.Oversampling, error) {
	for _, o := range ms5611.Oversamplings {
		if 256<<(o>>1) == ratio {
			return o, nil
		}
	}
	return 0, fmt.Errorf("-osr %d: must be one of 256, 512, 1024, 2048 or 4096", ratio)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ms5611log: %s.\n", err)
		os.Exit(1)
	}
}
