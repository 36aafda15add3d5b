// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package barometer is a container for the MS5611 barometric sensor driver
// and the tools built on it.
//
// The driver is in ms5611. trend and chart display the readings and
// cmd/ms5611log logs them as CSV.
package barometer
