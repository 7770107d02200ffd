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
	"github.com/go-errors/errors"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"reflect"
	"time"
)

type EncoderFactory = func(ctx *sessionparams.Context) (Encoder, error)

type DecoderFactory = func(ctx *sessionparams.Context) (Decoder, error)

type adapterRegistration struct {
	nativeType     reflect.Type
	encoderFactory EncoderFactory
	decoderFactory DecoderFactory
}

var adapterRegistrations = map[uint32]adapterRegistration{
	pgtypes.DateOID: {
		nativeType:     reflect.TypeOf(time.Time{}),
		encoderFactory: encoderFactory(NewDateEncoder),
		decoderFactory: decoderFactory(NewDateDecoder),
	},
	pgtypes.TimeOID: {
		nativeType:     reflect.TypeOf(pgtype.Time{}),
		encoderFactory: encoderFactory(NewTimeEncoder),
		decoderFactory: decoderFactory(NewTimeDecoder),
	},
	pgtypes.TimeTZOID: {
		nativeType:     reflect.TypeOf(pgtypes.Timetz{}),
		encoderFactory: encoderFactory(NewTimetzEncoder),
		decoderFactory: decoderFactory(NewTimetzDecoder),
	},
	pgtypes.TimestampOID: {
		nativeType:     reflect.TypeOf(time.Time{}),
		encoderFactory: encoderFactory(NewTimestampEncoder),
		decoderFactory: decoderFactory(NewTimestampDecoder),
	},
	pgtypes.TimestamptzOID: {
		nativeType:     reflect.TypeOf(time.Time{}),
		encoderFactory: encoderFactory(NewTimestamptzEncoder),
		decoderFactory: decoderFactory(NewTimestamptzDecoder),
	},
	pgtypes.IntervalOID: {
		nativeType:     reflect.TypeOf(time.Duration(0)),
		encoderFactory: encoderFactory(NewIntervalEncoder),
		decoderFactory: decoderFactory(NewIntervalDecoder),
	},
}

// LookupEncoderFactory returns the encoder factory for a temporal oid.
func LookupEncoderFactory(
	oid uint32,
) (EncoderFactory, bool) {

	registration, ok := adapterRegistrations[oid]
	if !ok {
		return nil, false
	}
	return registration.encoderFactory, true
}

// LookupDecoderFactory returns the decoder factory for a temporal oid.
func LookupDecoderFactory(
	oid uint32,
) (DecoderFactory, bool) {

	registration, ok := adapterRegistrations[oid]
	if !ok {
		return nil, false
	}
	return registration.decoderFactory, true
}

// NativeType returns the Go type values of the given oid decode into.
func NativeType(
	oid uint32,
) (reflect.Type, bool) {

	registration, ok := adapterRegistrations[oid]
	if !ok {
		return nil, false
	}
	return registration.nativeType, true
}

// DefaultOID returns the oid a native value is sent as if no explicit
// type is requested. time.Time is sent as timestamptz.
func DefaultOID(
	value any,
) (uint32, bool) {

	switch value.(type) {
	case time.Time, *time.Time, pgtype.Timestamptz:
		return pgtypes.TimestamptzOID, true
	case pgtype.Timestamp:
		return pgtypes.TimestampOID, true
	case pgtype.Date:
		return pgtypes.DateOID, true
	case pgtype.Time, *pgtype.Time:
		return pgtypes.TimeOID, true
	case pgtypes.Timetz, *pgtypes.Timetz:
		return pgtypes.TimeTZOID, true
	case time.Duration, *time.Duration:
		return pgtypes.IntervalOID, true
	}
	return 0, false
}

func NewEncoder(
	oid uint32, ctx *sessionparams.Context,
) (Encoder, error) {

	factory, ok := LookupEncoderFactory(oid)
	if !ok {
		return nil, errors.Errorf("no temporal encoder for oid %d", oid)
	}
	return factory(ctx)
}

func NewDecoder(
	oid uint32, ctx *sessionparams.Context,
) (Decoder, error) {

	factory, ok := LookupDecoderFactory(oid)
	if !ok {
		return nil, errors.Errorf("no temporal decoder for oid %d", oid)
	}
	return factory(ctx)
}

func encoderFactory[E Encoder](
	factory func(ctx *sessionparams.Context) (E, error),
) EncoderFactory {

	return func(ctx *sessionparams.Context) (Encoder, error) {
		encoder, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		return encoder, nil
	}
}

func decoderFactory[D Decoder](
	factory func(ctx *sessionparams.Context) (D, error),
) DecoderFactory {

	return func(ctx *sessionparams.Context) (Decoder, error) {
		decoder, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		return decoder, nil
	}
}
