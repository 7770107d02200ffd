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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/noctarius/pgtemporal/spi/datestyle"
	"github.com/noctarius/pgtemporal/spi/pgerrors"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"time"
)

// Time values are always sent as HH:MM:SS[.ffffff][+-HH[:MM[:SS]]],
// whatever the DateStyle.
var (
	timePattern, _   = datestyle.LookupPattern(datestyle.Time, datestyle.ISO)
	timetzPattern, _ = datestyle.LookupPattern(datestyle.Timetz, datestyle.ISO)
)

type TimeDecoder struct{}

func NewTimeDecoder(
	_ *sessionparams.Context,
) (*TimeDecoder, error) {

	return &TimeDecoder{}, nil
}

func (d *TimeDecoder) OID() uint32 {
	return pgtypes.TimeOID
}

func (d *TimeDecoder) Decode(
	data []byte,
) (any, error) {

	return d.DecodeTime(data)
}

func (d *TimeDecoder) DecodeTime(
	data []byte,
) (pgtype.Time, error) {

	layout := timePattern.Layout(timePattern.HasFraction(data), "")
	t, err := time.Parse(layout, string(data))
	if err != nil {
		return pgtype.Time{}, classifyTimeError(timePattern, data, err)
	}

	micros := int64(t.Hour())*3600*microsPerSecond +
		int64(t.Minute())*60*microsPerSecond +
		int64(t.Second())*microsPerSecond +
		int64(t.Nanosecond())/nanosPerMicro

	return pgtype.Time{Microseconds: micros, Valid: true}, nil
}

type TimetzDecoder struct{}

func NewTimetzDecoder(
	_ *sessionparams.Context,
) (*TimetzDecoder, error) {

	return &TimetzDecoder{}, nil
}

func (d *TimetzDecoder) OID() uint32 {
	return pgtypes.TimeTZOID
}

func (d *TimetzDecoder) Decode(
	data []byte,
) (any, error) {

	return d.DecodeTimetz(data)
}

func (d *TimetzDecoder) DecodeTimetz(
	data []byte,
) (pgtypes.Timetz, error) {

	normalized, offsetLayout := normalizeOffset(data, timetzPattern.SecondsEnd())
	layout := timetzPattern.Layout(timetzPattern.HasFraction(normalized), offsetLayout)
	t, err := time.Parse(layout, string(normalized))
	if err != nil {
		return pgtypes.Timetz{}, classifyTimeError(timetzPattern, data, err)
	}

	_, offset := t.Zone()
	return pgtypes.Timetz{
		Time: time.Date(
			1970, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone("", offset),
		),
		Valid: true,
	}, nil
}

// classifyTimeError reports 24:00:00, which the server accepts and
// emits but which is outside the range of a Go clock, specifically.
func classifyTimeError(
	pattern datestyle.FieldPattern, data []byte, err error,
) error {

	text := pgerrors.SafeText(data)
	if bytes.HasPrefix(data, []byte("24")) {
		return pgerrors.NewDataError(
			pgerrcode.DatetimeFieldOverflow, data, nil, "time 24:00 is not supported: got %s", text,
		)
	}

	return pgerrors.NewDataError(
		pgerrcode.InvalidDatetimeFormat, data, err, "can't parse %s: got %s", pattern.Kind, text,
	)
}
