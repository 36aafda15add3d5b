// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ms5611 controls a MEAS/TE MS5611-01BA barometric pressure sensor
// over SPI.
//
// The device returns raw 24-bit ADC codes for temperature (D2) and pressure
// (D1). They are turned into temperature in hundredths of a degree Celsius
// and pressure in hundredths of a millibar using the six factory calibration
// coefficients stored in the device PROM, including the second order
// correction applied below 20°C.
//
// The ms5611.Dev type implements physic.SenseEnv. Humidity is never set.
//
// A Dev is a single session with one device. Calls are serialized but their
// order is up to the caller: trigger a conversion, wait for it, read it.
//
// # Datasheet
//
// https://www.te.com/commerce/DocumentDelivery/DDEController?Action=showdoc&DocId=Data+Sheet%7FMS5611-01BA03%7FB3%7Fpdf%7FEnglish%7FENG_DS_MS5611-01BA03_B3.pdf
//
// # Application note AN520 (C code example, CRC-4)
//
// https://www.te.com/commerce/DocumentDelivery/DDEController?Action=srchrtrv&DocNm=AN520&DocType=SS&DocLang=EN
package ms5611
