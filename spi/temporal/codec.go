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
	"database/sql/driver"
	"fmt"
	"github.com/go-errors/errors"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"reflect"
	"time"
)

// Codec exposes a temporal encoder / decoder pair to pgx. It only speaks
// the text format, so pgx requests text results for the registered oids
// and the session's DateStyle and IntervalStyle apply.
type Codec struct {
	encoder    Encoder
	decoder    Decoder
	nativeType reflect.Type
}

// NewCodec constructs the encoder and decoder for oid against the
// session context. The grammar is frozen for the codec's lifetime.
func NewCodec(
	oid uint32, ctx *sessionparams.Context,
) (*Codec, error) {

	encoder, err := NewEncoder(oid, ctx)
	if err != nil {
		return nil, err
	}
	decoder, err := NewDecoder(oid, ctx)
	if err != nil {
		return nil, err
	}
	nativeType, _ := NativeType(oid)
	return NewCodecFromAdapters(encoder, decoder, nativeType), nil
}

func NewCodecFromAdapters(
	encoder Encoder, decoder Decoder, nativeType reflect.Type,
) *Codec {

	return &Codec{
		encoder:    encoder,
		decoder:    decoder,
		nativeType: nativeType,
	}
}

// RegisterCodecs registers text codecs for all temporal types on the map,
// replacing pgx's defaults for those oids.
func RegisterCodecs(
	m *pgtype.Map, ctx *sessionparams.Context,
) error {

	for _, oid := range pgtypes.TemporalOIDs {
		codec, err := NewCodec(oid, ctx)
		if err != nil {
			return err
		}
		name, _ := pgtypes.TypeName(oid)
		m.RegisterType(&pgtype.Type{Name: name, OID: oid, Codec: codec})
	}
	return nil
}

func (c *Codec) FormatSupported(
	format int16,
) bool {

	return format == pgtype.TextFormatCode
}

func (c *Codec) PreferredFormat() int16 {
	return pgtype.TextFormatCode
}

func (c *Codec) PlanEncode(
	_ *pgtype.Map, _ uint32, format int16, value any,
) pgtype.EncodePlan {

	if format != pgtype.TextFormatCode || !c.encoder.CanEncode(value) {
		return nil
	}
	return &encodePlanTemporalText{encoder: c.encoder}
}

type encodePlanTemporalText struct {
	encoder Encoder
}

func (p *encodePlanTemporalText) Encode(
	value any, buf []byte,
) (newBuf []byte, err error) {

	encoded, err := p.encoder.Encode(value)
	if err != nil || encoded == nil {
		return nil, err
	}
	return append(buf, encoded...), nil
}

func (c *Codec) PlanScan(
	_ *pgtype.Map, _ uint32, format int16, target any,
) pgtype.ScanPlan {

	if format != pgtype.TextFormatCode {
		return nil
	}

	targetType := reflect.TypeOf(target)
	if targetType == nil || targetType.Kind() != reflect.Pointer {
		return nil
	}

	elementType := targetType.Elem()
	switch {
	case c.nativeType.AssignableTo(elementType):
		return &scanPlanTemporalText{decoder: c.decoder}
	case elementType.Kind() == reflect.Pointer && c.nativeType.AssignableTo(elementType.Elem()):
		return &scanPlanTemporalText{decoder: c.decoder, nullable: true}
	}
	return nil
}

type scanPlanTemporalText struct {
	decoder  Decoder
	nullable bool
}

func (p *scanPlanTemporalText) Scan(
	src []byte, target any,
) error {

	element := reflect.ValueOf(target).Elem()
	if src == nil {
		switch element.Kind() {
		case reflect.Pointer, reflect.Interface:
			element.Set(reflect.Zero(element.Type()))
			return nil
		}
		return fmt.Errorf("cannot scan NULL into %T", target)
	}

	value, err := p.decoder.Decode(src)
	if err != nil {
		return err
	}

	if p.nullable {
		pointer := reflect.New(element.Type().Elem())
		pointer.Elem().Set(reflect.ValueOf(value))
		element.Set(pointer)
		return nil
	}
	element.Set(reflect.ValueOf(value))
	return nil
}

func (c *Codec) DecodeDatabaseSQLValue(
	_ *pgtype.Map, _ uint32, format int16, src []byte,
) (driver.Value, error) {

	if src == nil {
		return nil, nil
	}
	if format != pgtype.TextFormatCode {
		return nil, errors.Errorf("unsupported format code: %d", format)
	}

	value, err := c.decoder.Decode(src)
	if err != nil {
		return nil, err
	}
	if t, ok := value.(time.Time); ok {
		return t, nil
	}
	return string(src), nil
}

func (c *Codec) DecodeValue(
	_ *pgtype.Map, _ uint32, format int16, src []byte,
) (any, error) {

	if src == nil {
		return nil, nil
	}
	if format != pgtype.TextFormatCode {
		return nil, errors.Errorf("unsupported format code: %d", format)
	}
	return c.decoder.Decode(src)
}
