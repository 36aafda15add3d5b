// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ms5611

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// State is the initialization state of a Dev.
type State int

const (
	StateUninitialized State = iota
	StateBusOpen
	StateConfigured
	StateReset
	StateCalibrationLoaded
	StateReady
	// StateFailed is terminal. A new Dev must be created to retry.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateBusOpen:
		return "BusOpen"
	case StateConfigured:
		return "Configured"
	case StateReset:
		return "Reset"
	case StateCalibrationLoaded:
		return "CalibrationLoaded"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Opts holds the configuration options for the device.
type Opts struct {
	// Port is the spireg name of the SPI port used by Open, e.g.
	// "/dev/spidev0.0" or "SPI0.0". Empty selects the first port.
	Port string
	// Frequency is the SPI clock, up to 20MHz.
	Frequency physic.Frequency
	// Oversampling is used by Sense and SenseContinuous.
	Oversampling Oversampling
	// Verbosity: 0 logs nothing, 1 logs errors, 2 adds protocol debugging.
	Verbosity int
	// Logf receives the log lines. Defaults to log.Printf.
	Logf func(format string, v ...any)
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	Frequency:    physic.MegaHertz,
	Oversampling: OSR4096,
	Verbosity:    1,
}

func (o *Opts) validate() error {
	if o.Frequency <= 0 || o.Frequency > maxFrequencyHz*physic.Hertz {
		return &ConfigError{Msg: fmt.Sprintf("SPI clock %s not in (0, 20MHz]", o.Frequency)}
	}
	if _, err := Command(KindTemperature, o.Oversampling); err != nil {
		return &ConfigError{Msg: fmt.Sprintf("oversampling %s", o.Oversampling)}
	}
	return nil
}

// RawConversion is an ADC result as read from the device.
type RawConversion struct {
	Kind         Kind
	Oversampling Oversampling
	Code         uint32 // 24 bits, never zero
}

// Dev is a handle to an initialized MS5611.
type Dev struct {
	opts Opts
	name string

	mu    sync.Mutex
	b     Bus
	state State
	err   error
	cal   Calibration
	stop  chan struct{}
	wg    sync.WaitGroup
}

var errClosed = errors.New("ms5611: closed")

// Open opens the SPI port named by o.Port through spireg and initializes the
// device on it. host.Init() must have been called.
//
// Open always returns a Dev. Use Ready to know if the initialization
// succeeded and Err to know why it did not. The port is closed on failure.
func Open(o *Opts) *Dev {
	d := newDev(o)
	if err := d.opts.validate(); err != nil {
		_ = d.fail(err)
		return d
	}
	p, err := spireg.Open(d.opts.Port)
	if err != nil {
		_ = d.fail(&TransportError{Op: fmt.Sprintf("opening SPI port %q", d.opts.Port), Err: err})
		return d
	}
	d.name = p.String()
	b := &spiBus{p: p, closer: p}
	if err := d.open(b); err != nil {
		_ = b.Close()
		d.b = nil
	}
	return d
}

// NewSPI initializes the device on a SPI port. The port stays owned by the
// caller.
//
// Like New, it returns a non-nil Dev in StateFailed on error.
func NewSPI(p spi.Port, o *Opts) (*Dev, error) {
	d := newDev(o)
	d.name = p.String()
	return d, d.open(NewSPIBus(p))
}

// New initializes the device through b: configure the bus, reset the chip,
// load and verify the calibration PROM. The Opts can be nil.
//
// On error the returned Dev is not nil but stays in StateFailed for its
// whole lifetime.
func New(b Bus, o *Opts) (*Dev, error) {
	d := newDev(o)
	return d, d.open(b)
}

func newDev(o *Opts) *Dev {
	if o == nil {
		o = &DefaultOpts
	}
	d := &Dev{opts: *o}
	if d.opts.Logf == nil {
		d.opts.Logf = log.Printf
	}
	return d
}

func (d *Dev) open(b Bus) error {
	if err := d.opts.validate(); err != nil {
		return d.fail(err)
	}
	d.b = b
	d.state = StateBusOpen
	return d.init()
}

func (d *Dev) init() error {
	d.debugf("init %s at %s", d, d.opts.Frequency)
	if err := d.b.Configure(d.opts.Frequency, spi.Mode0, 8); err != nil {
		return d.fail(&TransportError{Op: "configuring SPI", Err: err})
	}
	d.state = StateConfigured
	if err := d.reset(); err != nil {
		return d.fail(err)
	}
	d.state = StateReset
	cal, err := d.readCalibration()
	if err != nil {
		return d.fail(err)
	}
	d.cal = cal
	d.state = StateCalibrationLoaded
	if err := cal.Validate(); err != nil {
		return d.fail(err)
	}
	d.state = StateReady
	return nil
}

// fail parks the Dev in StateFailed and returns err.
func (d *Dev) fail(err error) error {
	d.state = StateFailed
	d.err = err
	d.logf("%v", err)
	return err
}

func (d *Dev) String() string {
	if d.name == "" {
		return "MS5611"
	}
	return "MS5611{" + d.name + "}"
}

// Ready reports whether the initialization completed.
func (d *Dev) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateReady
}

// State returns the current initialization state.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err returns the error that stopped the initialization, if any.
func (d *Dev) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Dev) ready() error {
	if d.state == StateReady {
		return nil
	}
	if d.err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, d.err)
	}
	return ErrNotReady
}

// Trigger starts a conversion. The result can be read with Read once
// o.ConversionTime() elapsed.
func (d *Dev) Trigger(k Kind, o Oversampling) error {
	cmd, err := Command(k, o)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startConvert(cmd)
}

// Read returns the result of the last conversion. A *StaleDataError is
// returned when no conversion was started since the previous Read.
func (d *Dev) Read() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readADC()
}

// Convert starts a conversion, waits for it and reads its result in a single
// bus transaction. It blocks for o.ConversionTime().
func (d *Dev) Convert(k Kind, o Oversampling) (RawConversion, error) {
	cmd, err := Command(k, o)
	if err != nil {
		return RawConversion{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.convert(cmd)
	if err != nil {
		return RawConversion{}, err
	}
	return RawConversion{Kind: k, Oversampling: o, Code: v}, nil
}

// Compensate converts a pair of raw codes with the device calibration.
func (d *Dev) Compensate(rawTemp, rawPres uint32) (Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready(); err != nil {
		return Reading{}, err
	}
	return d.compensate(rawTemp, rawPres)
}

func (d *Dev) compensate(rawTemp, rawPres uint32) (Reading, error) {
	r, err := Compensate(rawTemp, rawPres, &d.cal)
	if err != nil {
		d.logf("%v", err)
		return r, err
	}
	d.debugf("D2=%d D1=%d: %s", rawTemp, rawPres, r)
	return r, nil
}

// Calibration returns the PROM content as read during initialization or
// the last ReadCalibration.
func (d *Dev) Calibration() Calibration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cal
}

// DumpCalibration logs the PROM content, one word per line.
func (d *Dev) DumpCalibration() {
	cal := d.Calibration()
	for i, w := range cal {
		d.logf("prom[%d] = %d", i, w)
	}
}

// ReadCalibration reads the PROM again. The current calibration is kept if
// the read fails or its CRC does not match.
func (d *Dev) ReadCalibration() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready(); err != nil {
		return err
	}
	cal, err := d.readCalibration()
	if err != nil {
		return err
	}
	if err := cal.Validate(); err != nil {
		return err
	}
	d.cal = cal
	return nil
}

// Reset resets the chip and reloads the calibration. Any failure is
// terminal for this Dev.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.reset(); err != nil {
		return d.fail(err)
	}
	cal, err := d.readCalibration()
	if err != nil {
		return d.fail(err)
	}
	d.cal = cal
	if err := cal.Validate(); err != nil {
		return d.fail(err)
	}
	return nil
}

// Sense implements physic.SenseEnv. It converts the temperature then the
// pressure at Opts.Oversampling. Humidity is always 0.
func (d *Dev) Sense(e *physic.Env) error {
	e.Temperature = 0
	e.Pressure = 0
	e.Humidity = 0
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready(); err != nil {
		return err
	}
	o := byte(d.opts.Oversampling)
	rawTemp, err := d.convert(cmdConvertD2 | o)
	if err != nil {
		return err
	}
	rawPres, err := d.convert(cmdConvertD1 | o)
	if err != nil {
		return err
	}
	r, err := d.compensate(rawTemp, rawPres)
	if err != nil {
		return err
	}
	r.Env(e)
	return nil
}

// SenseContinuous implements physic.SenseEnv. Measurements that fail are
// logged and skipped. Call Halt to stop.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ready(); err != nil {
		return nil, err
	}
	if d.stop != nil {
		return nil, errors.New("ms5611: SenseContinuous already running")
	}
	if m := 2 * d.opts.Oversampling.ConversionTime(); interval < m {
		return nil, fmt.Errorf("ms5611: interval %s is shorter than a measurement (%s)", interval, m)
	}
	d.stop = make(chan struct{})
	ch := make(chan physic.Env, 16)
	d.wg.Add(1)
	go d.senseContinuous(interval, ch, d.stop)
	return ch, nil
}

func (d *Dev) senseContinuous(interval time.Duration, ch chan<- physic.Env, stop <-chan struct{}) {
	defer d.wg.Done()
	defer close(ch)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			var e physic.Env
			if err := d.Sense(&e); err != nil {
				// compensate already logged range errors.
				if re := (*RangeError)(nil); !errors.As(err, &re) {
					d.logf("%v", err)
				}
				continue
			}
			select {
			case ch <- e:
			case <-stop:
				return
			}
		}
	}
}

// Precision implements physic.SenseEnv. It is the resolution of the
// compensated output, 0.01°C and 0.01mbar.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
	e.Pressure = physic.Pascal
	e.Humidity = 0
}

// Halt stops a SenseContinuous in progress. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	if d.stop == nil {
		d.mu.Unlock()
		return nil
	}
	close(d.stop)
	d.stop = nil
	d.mu.Unlock()
	d.wg.Wait()
	return nil
}

// Close halts the device and releases the bus when it was opened by Open.
// The Dev cannot be used afterward.
func (d *Dev) Close() error {
	_ = d.Halt()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.b == nil {
		return nil
	}
	err := d.b.Close()
	d.b = nil
	d.state = StateUninitialized
	d.err = errClosed
	return err
}

func (d *Dev) reset() error {
	// The chip holds SDO low while it reloads the PROM and releases it when
	// done.
	var during, after [1]byte
	p := []Phase{
		{W: []byte{cmdReset}},
		{R: during[:], KeepCS: true},
		{Delay: resetDelay, R: after[:]},
	}
	d.debugf("reset")
	if err := d.b.Transact(p); err != nil {
		return &TransportError{Op: "reset", Err: err}
	}
	if during[0] != 0x00 || after[0] != 0xff {
		return &ProtocolError{Op: "reset", Msg: fmt.Sprintf("unexpected handshake 0x%02x, 0x%02x", during[0], after[0])}
	}
	return nil
}

func (d *Dev) readCalibration() (Calibration, error) {
	var cal Calibration
	for i := range cal {
		var buf [2]byte
		p := []Phase{{W: []byte{cmdReadPROM + byte(2*i)}}, {R: buf[:]}}
		if err := d.b.Transact(p); err != nil {
			return Calibration{}, &TransportError{Op: fmt.Sprintf("reading PROM word %d", i), Err: err}
		}
		cal[i] = binary.BigEndian.Uint16(buf[:])
	}
	d.debugf("calibration %s", &cal)
	return cal, nil
}

func (d *Dev) startConvert(cmd byte) error {
	if err := validConvert(cmd); err != nil {
		return err
	}
	if err := d.ready(); err != nil {
		return err
	}
	d.debugf("convert 0x%02x", cmd)
	if err := d.b.Transact([]Phase{{W: []byte{cmd}}}); err != nil {
		return &TransportError{Op: "starting conversion", Err: err}
	}
	return nil
}

func (d *Dev) readADC() (uint32, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	var buf [3]byte
	if err := d.b.Transact([]Phase{{W: []byte{cmdReadADC}}, {R: buf[:]}}); err != nil {
		return 0, &TransportError{Op: "reading ADC", Err: err}
	}
	return adcCode(buf)
}

func (d *Dev) convert(cmd byte) (uint32, error) {
	if err := validConvert(cmd); err != nil {
		return 0, err
	}
	if err := d.ready(); err != nil {
		return 0, err
	}
	var buf [3]byte
	p := []Phase{
		{W: []byte{cmd}, KeepCS: true},
		{Delay: conversionTime(cmd), W: []byte{cmdReadADC}},
		{R: buf[:]},
	}
	d.debugf("convert %s 0x%02x, wait %s", kindOf(cmd), cmd, p[1].Delay)
	if err := d.b.Transact(p); err != nil {
		return 0, &TransportError{Op: "converting", Err: err}
	}
	return adcCode(buf)
}

func adcCode(buf [3]byte) (uint32, error) {
	v := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
	if v == 0 {
		return 0, &StaleDataError{}
	}
	return v, nil
}

func (d *Dev) logf(format string, v ...any) {
	if d.opts.Verbosity > 0 {
		d.opts.Logf(format, v...)
	}
}

func (d *Dev) debugf(format string, v ...any) {
	if d.opts.Verbosity > 1 {
		d.opts.Logf(format, v...)
	}
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
