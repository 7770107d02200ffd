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

package pgtypes

import (
	"database/sql/driver"
	"fmt"
	"github.com/goccy/go-json"
	"strings"
	"time"
)

const timetzJsonFormat = "15:04:05.999999Z07:00"
const timetzJsonSecondsFormat = "15:04:05.999999Z07:00:00"

// Timetz is a time of day with a fixed UTC offset. The clock is stored
// on 1970-01-01 in a fixed zone carrying the offset.
type Timetz struct {
	Time  time.Time
	Valid bool
}

func NewTimetz(
	hour, minute, second, microsecond int, offsetSeconds int,
) Timetz {

	return Timetz{
		Time: time.Date(
			1970, time.January, 1, hour, minute, second,
			microsecond*int(time.Microsecond), time.FixedZone("", offsetSeconds),
		),
		Valid: true,
	}
}

// Offset returns the UTC offset in seconds.
func (ttz Timetz) Offset() int {
	_, offset := ttz.Time.Zone()
	return offset
}

// Equal reports whether both values have the same clock and offset.
func (ttz Timetz) Equal(
	other Timetz,
) bool {

	if ttz.Valid != other.Valid {
		return false
	}
	return ttz.Time.Equal(other.Time) && ttz.Offset() == other.Offset()
}

func (ttz *Timetz) Scan(
	src any,
) error {

	if src == nil {
		*ttz = Timetz{}
		return nil
	}

	switch src := src.(type) {
	case time.Time:
		*ttz = Timetz{Time: src, Valid: true}
		return nil
	case Timetz:
		*ttz = src
		return nil
	}

	return fmt.Errorf("cannot scan %T", src)
}

func (ttz Timetz) Value() (driver.Value, error) {
	if !ttz.Valid {
		return nil, nil
	}

	return ttz.Time, nil
}

func (ttz Timetz) MarshalJSON() ([]byte, error) {
	if !ttz.Valid {
		return []byte("null"), nil
	}

	format := timetzJsonFormat
	if ttz.Offset()%60 != 0 {
		format = timetzJsonSecondsFormat
	}
	return json.Marshal(ttz.Time.Format(format))
}

func (ttz *Timetz) UnmarshalJSON(
	b []byte,
) error {

	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == nil {
		*ttz = Timetz{}
		return nil
	}

	format := timetzJsonFormat
	if !strings.HasSuffix(*s, "Z") && strings.Count(*s, ":") == 4 {
		format = timetzJsonSecondsFormat
	}

	t, err := time.Parse(format, *s)
	if err != nil {
		return err
	}

	_, offset := t.Zone()
	*ttz = Timetz{
		Time: time.Date(
			1970, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone("", offset),
		),
		Valid: true,
	}
	return nil
}
