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

package main

import (
	"github.com/go-errors/errors"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"time"
)

var (
	timestampLayouts = []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02",
	}
	timestamptzLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
	}
	clockLayout       = "15:04:05.999999999"
	clockOffsetLayout = "15:04:05.999999999Z07:00"
)

// parseInput reads a command line value in Go notation (RFC 3339 like
// timestamps and Go durations) into the native value of the type.
func parseInput(
	oid uint32, text string,
) (any, error) {

	switch oid {
	case pgtypes.DateOID:
		return time.Parse(time.DateOnly, text)

	case pgtypes.TimestampOID:
		return parseFirst(timestampLayouts, text)

	case pgtypes.TimestamptzOID:
		return parseFirst(timestamptzLayouts, text)

	case pgtypes.TimeOID:
		t, err := time.Parse(clockLayout, text)
		if err != nil {
			return nil, err
		}
		return pgtype.Time{Microseconds: sinceMidnight(t).Microseconds(), Valid: true}, nil

	case pgtypes.TimeTZOID:
		t, err := time.Parse(clockOffsetLayout, text)
		if err != nil {
			return nil, err
		}
		_, offset := t.Zone()
		micros := int(sinceMidnight(t).Microseconds() % int64(time.Second/time.Microsecond))
		return pgtypes.NewTimetz(t.Hour(), t.Minute(), t.Second(), micros, offset), nil

	case pgtypes.IntervalOID:
		return time.ParseDuration(text)
	}
	return nil, errors.Errorf("unsupported oid %d", oid)
}

func parseFirst(
	layouts []string, text string,
) (time.Time, error) {

	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func sinceMidnight(
	t time.Time,
) time.Duration {

	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// renderValue converts decoded values into JSON friendly values.
func renderValue(
	value any,
) any {

	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case pgtype.Time:
		midnight := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
		return midnight.Add(time.Duration(v.Microseconds) * time.Microsecond).Format("15:04:05.999999")
	case time.Duration:
		return v.String()
	}
	return value
}
