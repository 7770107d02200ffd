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

package temporal

import (
	"bytes"
	"github.com/jackc/pgerrcode"
	"github.com/noctarius/pgtemporal/spi/datestyle"
	"github.com/noctarius/pgtemporal/spi/pgerrors"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"math"
	"regexp"
	"strconv"
	"time"
)

// The server approximates years and months with a fixed number of days
// when it compares intervals; the same approximation is used here.
const (
	daysPerYear  = 365
	daysPerMonth = 30

	nanosPerDay = int64(24 * time.Hour)
)

var intervalPattern = regexp.MustCompile(
	`^\s*` +
		`(?:(?P<years>[-+]?\d+)\s+years?\s*)?` +
		`(?:(?P<months>[-+]?\d+)\s+mons?\s*)?` +
		`(?:(?P<days>[-+]?\d+)\s+days?\s*)?` +
		`(?:(?P<hsign>[-+])?(?P<hours>\d+):(?P<minutes>\d+):(?P<seconds>\d+(?:\.\d+)?))?` +
		`\s*$`,
)

var (
	yearsGroup   = intervalPattern.SubexpIndex("years")
	monthsGroup  = intervalPattern.SubexpIndex("months")
	daysGroup    = intervalPattern.SubexpIndex("days")
	hsignGroup   = intervalPattern.SubexpIndex("hsign")
	hoursGroup   = intervalPattern.SubexpIndex("hours")
	minutesGroup = intervalPattern.SubexpIndex("minutes")
	secondsGroup = intervalPattern.SubexpIndex("seconds")
)

// IntervalParts is an interval split into a signed day count and a
// signed count of microseconds.
type IntervalParts struct {
	Days         int64
	Microseconds int64
}

// Duration builds the Go duration; ok is false if it overflows.
func (p IntervalParts) Duration() (time.Duration, bool) {
	if p.Days > math.MaxInt64/nanosPerDay || p.Days < math.MinInt64/nanosPerDay {
		return 0, false
	}
	if p.Microseconds > math.MaxInt64/nanosPerMicro || p.Microseconds < math.MinInt64/nanosPerMicro {
		return 0, false
	}

	days := p.Days * nanosPerDay
	micros := p.Microseconds * nanosPerMicro
	sum := days + micros
	if (micros > 0 && sum < days) || (micros < 0 && sum > days) {
		return 0, false
	}
	return time.Duration(sum), true
}

// ParseInterval parses the postgres IntervalStyle output, e.g.
// "1 year 2 mons 3 days -04:05:06.5".
func ParseInterval(
	data []byte,
) (IntervalParts, error) {

	match := intervalPattern.FindSubmatch(data)
	if match == nil || !anyGroupMatched(match) {
		return IntervalParts{}, pgerrors.NewDataError(
			pgerrcode.InvalidDatetimeFormat, data, nil, "can't parse interval: %s", pgerrors.SafeText(data),
		)
	}

	overflow := func(err error) (IntervalParts, error) {
		return IntervalParts{}, pgerrors.NewDataError(
			pgerrcode.IntervalFieldOverflow, data, err, "interval out of range: %s", pgerrors.SafeText(data),
		)
	}

	var parts IntervalParts
	for _, field := range []struct {
		group      int
		multiplier int64
	}{
		{yearsGroup, daysPerYear},
		{monthsGroup, daysPerMonth},
		{daysGroup, 1},
	} {
		if len(match[field.group]) == 0 {
			continue
		}
		value, err := strconv.ParseInt(string(match[field.group]), 10, 32)
		if err != nil {
			return overflow(err)
		}
		parts.Days += value * field.multiplier
	}

	if len(match[hoursGroup]) > 0 {
		micros, err := clockMicros(match[hoursGroup], match[minutesGroup], match[secondsGroup])
		if err != nil {
			return overflow(err)
		}
		if bytes.Equal(match[hsignGroup], []byte("-")) {
			micros = -micros
		}
		parts.Microseconds = micros
	}
	return parts, nil
}

func anyGroupMatched(
	match [][]byte,
) bool {

	for _, group := range []int{yearsGroup, monthsGroup, daysGroup, hoursGroup} {
		if len(match[group]) > 0 {
			return true
		}
	}
	return false
}

func clockMicros(
	hours, minutes, seconds []byte,
) (int64, error) {

	h, err := strconv.ParseInt(string(hours), 10, 64)
	if err != nil {
		return 0, err
	}
	m, err := strconv.ParseInt(string(minutes), 10, 64)
	if err != nil {
		return 0, err
	}

	whole, fraction, _ := bytes.Cut(seconds, []byte("."))
	s, err := strconv.ParseInt(string(whole), 10, 64)
	if err != nil {
		return 0, err
	}

	const maxSeconds = math.MaxInt64/microsPerSecond - 1
	if h > maxSeconds/3600 || m > maxSeconds/60 || s > maxSeconds {
		return 0, strconv.ErrRange
	}
	total := h*3600 + m*60 + s
	if total > maxSeconds || total < 0 {
		return 0, strconv.ErrRange
	}
	return total*microsPerSecond + fractionMicros(fraction), nil
}

// fractionMicros converts fractional second digits into microseconds,
// rounding half up on the seventh digit.
func fractionMicros(
	fraction []byte,
) int64 {

	var micros int64
	for i := 0; i < 6; i++ {
		micros *= 10
		if i < len(fraction) {
			micros += int64(fraction[i] - '0')
		}
	}
	if len(fraction) > 6 && fraction[6] >= '5' {
		micros++
	}
	return micros
}

// IntervalDecoder decodes intervals in the postgres IntervalStyle. Any
// other live style is detected at construction and fails on every value.
type IntervalDecoder struct {
	style  string
	decode func(data []byte) (time.Duration, error)
}

func NewIntervalDecoder(
	ctx *sessionparams.Context,
) (*IntervalDecoder, error) {

	decoder := &IntervalDecoder{
		style: sessionparams.DefaultIntervalStyle,
	}
	decoder.decode = decoder.decodePostgres

	if raw, present := datestyle.RawIntervalStyle(ctx); present {
		decoder.style = pgerrors.SafeText(raw)
		if string(raw) != sessionparams.DefaultIntervalStyle {
			decoder.decode = decoder.decodeNotImplemented
		}
	}
	return decoder, nil
}

func (d *IntervalDecoder) OID() uint32 {
	return pgtypes.IntervalOID
}

func (d *IntervalDecoder) Decode(
	data []byte,
) (any, error) {

	return d.DecodeInterval(data)
}

func (d *IntervalDecoder) DecodeInterval(
	data []byte,
) (time.Duration, error) {

	return d.decode(data)
}

func (d *IntervalDecoder) decodePostgres(
	data []byte,
) (time.Duration, error) {

	parts, err := ParseInterval(data)
	if err != nil {
		return 0, err
	}

	duration, ok := parts.Duration()
	if !ok {
		return 0, pgerrors.NewDataError(
			pgerrcode.IntervalFieldOverflow, data, nil,
			"interval out of range: %d days %d microseconds exceed a duration: %s",
			parts.Days, parts.Microseconds, pgerrors.SafeText(data),
		)
	}
	return duration, nil
}

func (d *IntervalDecoder) decodeNotImplemented(
	data []byte,
) (time.Duration, error) {

	return 0, pgerrors.NewNotImplementedError(
		data, "can't parse interval with IntervalStyle %s: %s", d.style, pgerrors.SafeText(data),
	)
}
