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
	"fmt"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/noctarius/pgtemporal/spi/datestyle"
	"github.com/noctarius/pgtemporal/spi/pgerrors"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"time"
)

const (
	dateLayout       = "2006-01-02"
	clockLayout      = "15:04:05"
	offsetLayout     = "-07:00"
	offsetSecsLayout = "-07:00:00"
	microsPerSecond  = int64(time.Second / time.Microsecond)
	microsPerDay     = 86400 * microsPerSecond
	nanosPerMicro    = int64(time.Microsecond)
	minEncodableYear = 1
	maxEncodableYear = 9999
)

// Encoder turns a native value into the text sent to the server.
// A nil result without error encodes SQL NULL.
type Encoder interface {
	Encode(value any) ([]byte, error)
	CanEncode(value any) bool
	OID() uint32
}

// The YYYY-MM-DD ordering is understood by the server independent of
// the DateStyle input setting, therefore encoders never consult it.

type DateEncoder struct{}

func NewDateEncoder(
	_ *sessionparams.Context,
) (*DateEncoder, error) {

	return &DateEncoder{}, nil
}

func (e *DateEncoder) OID() uint32 {
	return pgtypes.DateOID
}

func (e *DateEncoder) CanEncode(
	value any,
) bool {

	switch value.(type) {
	case time.Time, *time.Time, pgtype.Date:
		return true
	}
	return false
}

func (e *DateEncoder) Encode(
	value any,
) ([]byte, error) {

	t, valid, err := unwrapTime(value)
	if err != nil || !valid {
		return nil, err
	}
	if err := checkEncodableYear(t); err != nil {
		return nil, err
	}
	return []byte(t.Format(dateLayout)), nil
}

type TimestampEncoder struct{}

func NewTimestampEncoder(
	_ *sessionparams.Context,
) (*TimestampEncoder, error) {

	return &TimestampEncoder{}, nil
}

func (e *TimestampEncoder) OID() uint32 {
	return pgtypes.TimestampOID
}

func (e *TimestampEncoder) CanEncode(
	value any,
) bool {

	switch value.(type) {
	case time.Time, *time.Time, pgtype.Timestamp:
		return true
	}
	return false
}

// Encode writes the wall clock of the value, its location is ignored.
func (e *TimestampEncoder) Encode(
	value any,
) ([]byte, error) {

	t, valid, err := unwrapTime(value)
	if err != nil || !valid {
		return nil, err
	}
	if err := checkEncodableYear(t); err != nil {
		return nil, err
	}
	return appendTimestamp(nil, t), nil
}

type TimestamptzEncoder struct{}

func NewTimestamptzEncoder(
	_ *sessionparams.Context,
) (*TimestamptzEncoder, error) {

	return &TimestamptzEncoder{}, nil
}

func (e *TimestamptzEncoder) OID() uint32 {
	return pgtypes.TimestamptzOID
}

func (e *TimestamptzEncoder) CanEncode(
	value any,
) bool {

	switch value.(type) {
	case time.Time, *time.Time, pgtype.Timestamptz:
		return true
	}
	return false
}

func (e *TimestamptzEncoder) Encode(
	value any,
) ([]byte, error) {

	t, valid, err := unwrapTime(value)
	if err != nil || !valid {
		return nil, err
	}
	if err := checkEncodableYear(t); err != nil {
		return nil, err
	}
	return appendOffset(appendTimestamp(nil, t), t), nil
}

// TimeEncoder encodes a time of day without zone.
type TimeEncoder struct{}

func NewTimeEncoder(
	_ *sessionparams.Context,
) (*TimeEncoder, error) {

	return &TimeEncoder{}, nil
}

func (e *TimeEncoder) OID() uint32 {
	return pgtypes.TimeOID
}

func (e *TimeEncoder) CanEncode(
	value any,
) bool {

	switch value.(type) {
	case pgtype.Time, *pgtype.Time:
		return true
	}
	return false
}

func (e *TimeEncoder) Encode(
	value any,
) ([]byte, error) {

	var tm pgtype.Time
	switch v := value.(type) {
	case pgtype.Time:
		tm = v
	case *pgtype.Time:
		if v == nil {
			return nil, nil
		}
		tm = *v
	default:
		return nil, unsupportedValue(e.OID(), value)
	}

	if !tm.Valid {
		return nil, nil
	}
	if tm.Microseconds < 0 || tm.Microseconds >= microsPerDay {
		return nil, pgerrors.NewDataError(
			pgerrcode.DatetimeFieldOverflow, nil, nil,
			"time of day out of range: %d microseconds", tm.Microseconds,
		)
	}

	seconds := tm.Microseconds / microsPerSecond
	buf := fmt.Appendf(nil, "%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
	return appendFraction(buf, tm.Microseconds%microsPerSecond), nil
}

// TimetzEncoder encodes a time of day with its UTC offset.
type TimetzEncoder struct{}

func NewTimetzEncoder(
	_ *sessionparams.Context,
) (*TimetzEncoder, error) {

	return &TimetzEncoder{}, nil
}

func (e *TimetzEncoder) OID() uint32 {
	return pgtypes.TimeTZOID
}

func (e *TimetzEncoder) CanEncode(
	value any,
) bool {

	switch value.(type) {
	case pgtypes.Timetz, *pgtypes.Timetz:
		return true
	}
	return false
}

func (e *TimetzEncoder) Encode(
	value any,
) ([]byte, error) {

	var ttz pgtypes.Timetz
	switch v := value.(type) {
	case pgtypes.Timetz:
		ttz = v
	case *pgtypes.Timetz:
		if v == nil {
			return nil, nil
		}
		ttz = *v
	default:
		return nil, unsupportedValue(e.OID(), value)
	}

	if !ttz.Valid {
		return nil, nil
	}

	buf := []byte(ttz.Time.Format(clockLayout))
	buf = appendFraction(buf, int64(ttz.Time.Nanosecond())/nanosPerMicro)
	return appendOffset(buf, ttz.Time), nil
}

// IntervalEncoder encodes durations. The output style is chosen from the
// IntervalStyle once, when the encoder is constructed.
type IntervalEncoder struct {
	style datestyle.IntervalStyleMode
}

func NewIntervalEncoder(
	ctx *sessionparams.Context,
) (*IntervalEncoder, error) {

	return &IntervalEncoder{
		style: datestyle.IntervalStyleFromContext(ctx),
	}, nil
}

func (e *IntervalEncoder) OID() uint32 {
	return pgtypes.IntervalOID
}

func (e *IntervalEncoder) Style() datestyle.IntervalStyleMode {
	return e.style
}

func (e *IntervalEncoder) CanEncode(
	value any,
) bool {

	switch value.(type) {
	case time.Duration, *time.Duration:
		return true
	}
	return false
}

func (e *IntervalEncoder) Encode(
	value any,
) ([]byte, error) {

	var d time.Duration
	switch v := value.(type) {
	case time.Duration:
		d = v
	case *time.Duration:
		if v == nil {
			return nil, nil
		}
		d = *v
	default:
		return nil, unsupportedValue(e.OID(), value)
	}

	days, seconds, micros := splitDuration(d)
	if e.style == datestyle.SQLStandard {
		// sql_standard applies the sign of the leading field to unsigned
		// trailing fields, "-1 day 1 second" would read as -1 day -1 second
		return fmt.Appendf(nil, "%+d day %+d second %+d microsecond", days, seconds, micros), nil
	}
	return formatNaturalInterval(days, seconds, micros), nil
}

// splitDuration normalizes a duration into days, seconds (0..86399) and
// microseconds (0..999999); only the day count carries the sign.
func splitDuration(
	d time.Duration,
) (days, seconds, micros int64) {

	total := floorDiv(int64(d), nanosPerMicro)
	days = floorDiv(total, microsPerDay)
	remainder := total - days*microsPerDay
	return days, remainder / microsPerSecond, remainder % microsPerSecond
}

func formatNaturalInterval(
	days, seconds, micros int64,
) []byte {

	var buf []byte
	if days != 0 {
		unit := "days"
		if days == 1 || days == -1 {
			unit = "day"
		}
		buf = fmt.Appendf(buf, "%d %s, ", days, unit)
	}
	buf = fmt.Appendf(buf, "%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
	return appendFraction(buf, micros)
}

func appendTimestamp(
	buf []byte, t time.Time,
) []byte {

	buf = t.AppendFormat(buf, dateLayout+" "+clockLayout)
	return appendFraction(buf, int64(t.Nanosecond())/nanosPerMicro)
}

func appendFraction(
	buf []byte, micros int64,
) []byte {

	if micros == 0 {
		return buf
	}
	return fmt.Appendf(buf, ".%06d", micros)
}

func appendOffset(
	buf []byte, t time.Time,
) []byte {

	_, offset := t.Zone()
	if offset%60 != 0 {
		return t.AppendFormat(buf, offsetSecsLayout)
	}
	return t.AppendFormat(buf, offsetLayout)
}

func unwrapTime(
	value any,
) (time.Time, bool, error) {

	switch v := value.(type) {
	case time.Time:
		return v, true, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, false, nil
		}
		return *v, true, nil
	case pgtype.Date:
		return v.Time, v.Valid && v.InfinityModifier == pgtype.Finite, infinityError(v.InfinityModifier)
	case pgtype.Timestamp:
		return v.Time, v.Valid && v.InfinityModifier == pgtype.Finite, infinityError(v.InfinityModifier)
	case pgtype.Timestamptz:
		return v.Time, v.Valid && v.InfinityModifier == pgtype.Finite, infinityError(v.InfinityModifier)
	}
	return time.Time{}, false, pgerrors.NewDataError(
		pgerrcode.InvalidParameterValue, nil, nil, "cannot encode %T as a date or timestamp", value,
	)
}

func infinityError(
	modifier pgtype.InfinityModifier,
) error {

	if modifier == pgtype.Finite {
		return nil
	}
	return pgerrors.NewDataError(
		pgerrcode.DatetimeFieldOverflow, nil, nil, "infinite values are not supported",
	)
}

func checkEncodableYear(
	t time.Time,
) error {

	if year := t.Year(); year < minEncodableYear || year > maxEncodableYear {
		return pgerrors.NewDataError(
			pgerrcode.DatetimeFieldOverflow, nil, nil, "year %d is out of the supported range 1-9999", year,
		)
	}
	return nil
}

func unsupportedValue(
	oid uint32, value any,
) error {

	name, _ := pgtypes.TypeName(oid)
	return pgerrors.NewDataError(
		pgerrcode.InvalidParameterValue, nil, nil, "cannot encode %T as %s", value, name,
	)
}

func floorDiv(
	a, b int64,
) int64 {

	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
