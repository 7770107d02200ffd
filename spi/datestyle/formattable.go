/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package datestyle

import (
	"bytes"
	"strings"
)

// ValueKind is the temporal type a FieldPattern describes.
type ValueKind int

const (
	Date ValueKind = iota
	Time
	Timetz
	Timestamp
	Timestamptz
)

func (k ValueKind) String() string {
	switch k {
	case Date:
		return "date"
	case Time:
		return "time"
	case Timetz:
		return "timetz"
	case Timestamp:
		return "timestamp"
	case Timestamptz:
		return "timestamptz"
	}
	return "unknown"
}

// FieldOrder is the order of the date fields inside the text.
type FieldOrder int

const (
	YMD FieldOrder = iota
	DMY
	MDY
)

const (
	timeLayout         = "15:04:05"
	timeFractionLayout = "15:04:05.999999"

	// "HH:MM:SS" and "YYYY-MM-DD HH:MM:SS" / "Dow Mon DD HH:MM:SS"
	timeSecondsEnd      = 8
	timestampSecondsEnd = 19

	// Offset layouts after normalization to +-HHMM or +-HHMMSS
	OffsetLayout        = "-0700"
	OffsetSecondsLayout = "-070000"
)

// FieldPattern describes how the fields of a temporal value appear in
// the server's text output. Patterns are immutable.
type FieldPattern struct {
	Kind      ValueKind
	Variant   GrammarVariant
	Separator byte
	Order     FieldOrder
	Textual   bool
	Offset    bool

	layout         string
	fractionLayout string
	secondsEnd     int
}

// Layout returns the Go time layout for the pattern, optionally with
// fractional seconds, followed by the given offset layout.
func (p FieldPattern) Layout(
	withFraction bool, offsetLayout string,
) string {

	layout := p.layout
	if withFraction {
		layout = p.fractionLayout
	}
	if p.Offset {
		layout += offsetLayout
	}
	return layout
}

// HasFraction checks for a fractional seconds component by looking for
// a literal dot at or after the position where the seconds field ends.
func (p FieldPattern) HasFraction(
	data []byte,
) bool {

	if p.secondsEnd == 0 || len(data) <= p.secondsEnd {
		return false
	}
	return bytes.IndexByte(data[p.secondsEnd:], '.') >= 0
}

// SecondsEnd is the offset at which the seconds field ends in well-formed
// text; a zone offset, if any, can only start at or after it.
func (p FieldPattern) SecondsEnd() int {
	return p.secondsEnd
}

// YearDigits returns the number of digits of the year field, as far as
// it can be located in the text.
func (p FieldPattern) YearDigits(
	data []byte,
) int {

	switch p.Kind {
	case Time, Timetz:
		return 0
	}

	if p.Textual {
		fields := bytes.Fields(data)
		if len(fields) > 4 {
			return len(fields[4])
		}
		return 0
	}

	datePart := bytes.SplitN(data, []byte(" "), 2)[0]
	maxDigits := 0
	for _, field := range bytes.Split(datePart, []byte{p.Separator}) {
		if len(field) > maxDigits {
			maxDigits = len(field)
		}
	}
	return maxDigits
}

// LookupPattern maps a value kind and grammar variant to its pattern.
// The second return value is false for combinations which cannot be
// decoded reliably, which is timestamptz in any style but ISO.
func LookupPattern(
	kind ValueKind, variant GrammarVariant,
) (FieldPattern, bool) {

	switch kind {
	case Time, Timetz:
		return FieldPattern{
			Kind:           kind,
			Variant:        variant,
			Separator:      ':',
			Order:          YMD,
			Offset:         kind == Timetz,
			layout:         timeLayout,
			fractionLayout: timeFractionLayout,
			secondsEnd:     timeSecondsEnd,
		}, true

	case Date:
		separator, order, layout := dateLayout(variant)
		return FieldPattern{
			Kind:           kind,
			Variant:        variant,
			Separator:      separator,
			Order:          order,
			layout:         layout,
			fractionLayout: layout,
		}, true

	case Timestamp, Timestamptz:
		if kind == Timestamptz && variant != ISO {
			return FieldPattern{Kind: kind, Variant: variant}, false
		}

		separator, order, layout := dateLayout(variant)
		pattern := FieldPattern{
			Kind:       kind,
			Variant:    variant,
			Separator:  separator,
			Order:      order,
			Offset:     kind == Timestamptz,
			secondsEnd: timestampSecondsEnd,
		}

		switch variant {
		case PostgresWithDayFirst:
			pattern.Textual = true
			pattern.layout = "Mon 02 Jan 15:04:05 2006"
		case PostgresWithMonthFirst:
			pattern.Textual = true
			pattern.layout = "Mon Jan 02 15:04:05 2006"
		default:
			pattern.layout = layout + " " + timeLayout
		}
		pattern.fractionLayout = strings.Replace(pattern.layout, timeLayout, timeFractionLayout, 1)
		return pattern, true
	}
	return FieldPattern{Kind: kind, Variant: variant}, false
}

func dateLayout(
	variant GrammarVariant,
) (byte, FieldOrder, string) {

	switch variant {
	case German:
		return '.', DMY, "02.01.2006"
	case SQLWithDayFirst:
		return '/', DMY, "02/01/2006"
	case SQLWithMonthFirst:
		return '/', MDY, "01/02/2006"
	case PostgresWithDayFirst:
		return '-', DMY, "02-01-2006"
	case PostgresWithMonthFirst:
		return '-', MDY, "01-02-2006"
	default:
		return '-', YMD, "2006-01-02"
	}
}
