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
	"time"
)

// Decoder turns text received from the server into a native value.
// Decoders resolve the session grammar once, at construction time, and
// keep using it even if the session configuration changes later on.
type Decoder interface {
	Decode(data []byte) (any, error)
	OID() uint32
}

type DateDecoder struct {
	pattern datestyle.FieldPattern
}

func NewDateDecoder(
	ctx *sessionparams.Context,
) (*DateDecoder, error) {

	variant, err := datestyle.GrammarVariantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	pattern, _ := datestyle.LookupPattern(datestyle.Date, variant)
	return &DateDecoder{
		pattern: pattern,
	}, nil
}

func (d *DateDecoder) OID() uint32 {
	return pgtypes.DateOID
}

func (d *DateDecoder) Variant() datestyle.GrammarVariant {
	return d.pattern.Variant
}

func (d *DateDecoder) Decode(
	data []byte,
) (any, error) {

	return d.DecodeDate(data)
}

// DecodeDate returns the date as midnight UTC.
func (d *DateDecoder) DecodeDate(
	data []byte,
) (time.Time, error) {

	t, err := time.Parse(d.pattern.Layout(false, ""), string(data))
	if err != nil {
		return time.Time{}, classifyDateError(d.pattern, data, err)
	}
	return t, nil
}

type TimestampDecoder struct {
	pattern datestyle.FieldPattern
}

func NewTimestampDecoder(
	ctx *sessionparams.Context,
) (*TimestampDecoder, error) {

	variant, err := datestyle.GrammarVariantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	pattern, _ := datestyle.LookupPattern(datestyle.Timestamp, variant)
	return &TimestampDecoder{
		pattern: pattern,
	}, nil
}

func (d *TimestampDecoder) OID() uint32 {
	return pgtypes.TimestampOID
}

func (d *TimestampDecoder) Variant() datestyle.GrammarVariant {
	return d.pattern.Variant
}

func (d *TimestampDecoder) Decode(
	data []byte,
) (any, error) {

	return d.DecodeTimestamp(data)
}

// DecodeTimestamp returns the timestamp in UTC.
func (d *TimestampDecoder) DecodeTimestamp(
	data []byte,
) (time.Time, error) {

	layout := d.pattern.Layout(d.pattern.HasFraction(data), "")
	t, err := time.Parse(layout, string(data))
	if err != nil {
		return time.Time{}, classifyDateError(d.pattern, data, err)
	}
	return t, nil
}

type TimestamptzDecoder struct {
	pattern   datestyle.FieldPattern
	dateStyle string
	decode    func(data []byte) (time.Time, error)
}

// NewTimestamptzDecoder creates a decoder for timestamptz. Only the ISO
// DateStyle is supported; the other styles do not always print a zone
// which can be parsed, so those decoders fail on every value.
func NewTimestamptzDecoder(
	ctx *sessionparams.Context,
) (*TimestamptzDecoder, error) {

	raw := datestyle.RawDateStyle(ctx)
	variant, err := datestyle.ResolveDateStyle(raw)
	if err != nil {
		return nil, err
	}

	pattern, supported := datestyle.LookupPattern(datestyle.Timestamptz, variant)
	decoder := &TimestamptzDecoder{
		pattern:   pattern,
		dateStyle: pgerrors.SafeText(raw),
	}

	decoder.decode = decoder.decodeISO
	if !supported {
		decoder.decode = decoder.decodeNotImplemented
	}
	return decoder, nil
}

func (d *TimestamptzDecoder) OID() uint32 {
	return pgtypes.TimestamptzOID
}

func (d *TimestamptzDecoder) Variant() datestyle.GrammarVariant {
	return d.pattern.Variant
}

func (d *TimestamptzDecoder) Decode(
	data []byte,
) (any, error) {

	return d.DecodeTimestamptz(data)
}

// DecodeTimestamptz returns the timestamp in a fixed zone with the
// offset sent by the server.
func (d *TimestamptzDecoder) DecodeTimestamptz(
	data []byte,
) (time.Time, error) {

	return d.decode(data)
}

func (d *TimestamptzDecoder) decodeISO(
	data []byte,
) (time.Time, error) {

	normalized, offsetLayout := normalizeOffset(data, d.pattern.SecondsEnd())
	layout := d.pattern.Layout(d.pattern.HasFraction(normalized), offsetLayout)
	t, err := time.Parse(layout, string(normalized))
	if err != nil {
		return time.Time{}, classifyDateError(d.pattern, data, err)
	}
	return inFixedZone(t), nil
}

func (d *TimestamptzDecoder) decodeNotImplemented(
	data []byte,
) (time.Time, error) {

	return time.Time{}, pgerrors.NewNotImplementedError(
		data, "can't parse timestamptz with DateStyle %s: %s", d.dateStyle, pgerrors.SafeText(data),
	)
}

// classifyDateError turns a parse failure into a more specific error if
// the text is valid server output the Go value range cannot represent.
func classifyDateError(
	pattern datestyle.FieldPattern, data []byte, err error,
) error {

	text := pgerrors.SafeText(data)
	if bytes.HasSuffix(data, []byte("BC")) {
		return pgerrors.NewDataError(
			pgerrcode.DatetimeFieldOverflow, data, nil, "BC dates are not supported: got %s", text,
		)
	}

	if pattern.YearDigits(data) > 4 {
		return pgerrors.NewDataError(
			pgerrcode.DatetimeFieldOverflow, data, nil, "dates after year 9999 are not supported: got %s", text,
		)
	}

	return pgerrors.NewDataError(
		pgerrcode.InvalidDatetimeFormat, data, err, "can't parse %s: got %s", pattern.Kind, text,
	)
}

// normalizeOffset rewrites the trailing zone offset into +-HHMM or
// +-HHMMSS and returns the matching layout. The offset can only start
// after the seconds field, searching from there skips date separators.
func normalizeOffset(
	data []byte, from int,
) ([]byte, string) {

	if from > len(data) {
		return data, datestyle.OffsetLayout
	}

	index := bytes.LastIndexAny(data[from:], "+-")
	if index < 0 {
		return data, datestyle.OffsetLayout
	}
	index += from

	digits := bytes.ReplaceAll(data[index+1:], []byte(":"), nil)
	switch len(digits) {
	case 2:
		digits = append(digits, '0', '0')
	case 4:
	case 6:
		return joinOffset(data[:index+1], digits), datestyle.OffsetSecondsLayout
	default:
		return data, datestyle.OffsetLayout
	}
	return joinOffset(data[:index+1], digits), datestyle.OffsetLayout
}

func joinOffset(
	prefix, digits []byte,
) []byte {

	normalized := make([]byte, 0, len(prefix)+len(digits))
	normalized = append(normalized, prefix...)
	return append(normalized, digits...)
}

func inFixedZone(
	t time.Time,
) time.Time {

	_, offset := t.Zone()
	return t.In(time.FixedZone("", offset))
}
