// Package dimen implements dimensions, units and glue.
//
/*
BSD License

Copyright (c) 2017–21, Norbert Pillmayer (norbert@pillmayer.com)

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.  */
package dimen

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Dimen is a dimension type.
// Values are in scaled points, 65536sp = 1pt (as in TeX).
type Dimen int64

// Some pre-defined dimensions
const (
	Zero Dimen = 0
	SP   Dimen = 1     // scaled point = PT / 65536
	PT   Dimen = 65536 // printers point 1/72.27 inch
)

// MaxDimen is the largest dimension allowed, 2^30-1 sp (≈16383.99998pt).
const MaxDimen Dimen = 1<<30 - 1

// Unit is a unit of measure, expressed as a ratio num/den of printers points.
type Unit struct {
	Name     string
	Num, Den int64
}

// Units known to TeX, in the proportions TeX uses.
var (
	UnitPT = Unit{"pt", 1, 1}
	UnitPC = Unit{"pc", 12, 1}
	UnitIN = Unit{"in", 7227, 100}
	UnitBP = Unit{"bp", 7227, 7200}
	UnitCM = Unit{"cm", 7227, 254}
	UnitMM = Unit{"mm", 7227, 2540}
	UnitDD = Unit{"dd", 1238, 1157}
	UnitCC = Unit{"cc", 14856, 1157}
	UnitSP = Unit{"sp", 1, 65536}
)

var physicalUnits = []Unit{UnitPT, UnitPC, UnitIN, UnitBP, UnitCM, UnitMM, UnitDD, UnitCC, UnitSP}

// PhysicalUnit returns the unit for a unit keyword (pt, in, …).
func PhysicalUnit(name string) (Unit, bool) {
	name = strings.ToLower(name)
	for _, u := range physicalUnits {
		if u.Name == name {
			return u, true
		}
	}
	return Unit{}, false
}

// Scale converts a number of units into a dimension. whole is the integer
// part, frac the fractional part in 1/65536ths.
func (u Unit) Scale(whole int64, frac int64) Dimen {
	if u.Name == "sp" {
		return Dimen(whole)
	}
	sp := whole*int64(PT) + frac
	return Dimen(sp * u.Num / u.Den)
}

// Stringer implementation. Output format follows TeX, e.g. "12.0pt".
func (d Dimen) String() string {
	return FormatScaled(int64(d)) + "pt"
}

// Points returns a dimension in printers points.
func (d Dimen) Points() float64 {
	return float64(d) / float64(PT)
}

// FormatScaled prints a scaled value (16-bit fraction) with the minimal
// number of decimal digits needed to reproduce it.
func FormatScaled(s int64) string {
	var b strings.Builder
	if s < 0 {
		b.WriteByte('-')
		s = -s
	}
	unity := int64(PT)
	b.WriteString(strconv.FormatInt(s/unity, 10))
	b.WriteByte('.')
	s = 10*(s%unity) + 5
	delta := int64(10)
	for {
		if delta > unity {
			s = s + 0x8000 - 50000 // round the last digit
		}
		b.WriteByte(byte('0' + s/unity))
		s = 10 * (s % unity)
		delta *= 10
		if s <= delta {
			break
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------

var dimenPattern = regexp.MustCompile(`^([+\-]?[0-9]*)(\.[0-9]+)?([a-zA-Z]{2})$`)

// ParseDimen parses a string to return a dimension, e.g. "12pt" or "1.5in".
// Syntax is a TeX dimension without spaces and without "true".
func ParseDimen(s string) (Dimen, error) {
	s = strings.TrimSpace(s)
	if s == "0" {
		return Zero, nil
	}
	d := dimenPattern.FindStringSubmatch(s)
	if len(d) < 4 || d[1] == "" && d[2] == "" {
		return 0, errors.New("format error parsing dimension")
	}
	unit, ok := PhysicalUnit(d[3])
	if !ok {
		return 0, errors.New("format error parsing dimension: unknown unit " + d[3])
	}
	neg := strings.HasPrefix(d[1], "-")
	w := strings.TrimLeft(d[1], "+-")
	var whole int64
	if w != "" {
		n, err := strconv.ParseInt(w, 10, 64)
		if err != nil {
			return 0, errors.New("format error parsing dimension")
		}
		whole = n
	}
	var frac int64
	if d[2] != "" {
		frac = RoundDecimals(d[2][1:])
	}
	dim := unit.Scale(whole, frac)
	if neg {
		dim = -dim
	}
	return dim, nil
}

// RoundDecimals converts a string of decimal digits (the part after the
// decimal point) into a fraction of 65536, rounded the way TeX does it.
func RoundDecimals(digits string) int64 {
	if len(digits) > 17 {
		digits = digits[:17]
	}
	var a int64
	for k := len(digits) - 1; k >= 0; k-- {
		a = (a + int64(digits[k]-'0')*(2*65536)) / 10
	}
	return (a + 1) / 2
}

// ---------------------------------------------------------------------------

// Min returns the smaller of two dimensions.
func Min(a, b Dimen) Dimen {
	if a < b {
		return a
	}
	return b
}

// Max returns the greater of two dimensions.
func Max(a, b Dimen) Dimen {
	if a > b {
		return a
	}
	return b
}
