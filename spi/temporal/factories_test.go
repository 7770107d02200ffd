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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"reflect"
	"testing"
	"time"
)

func Test_Default_OID(
	t *testing.T,
) {

	now := time.Now()
	duration := time.Minute
	tests := []struct {
		value    any
		expected uint32
	}{
		{now, pgtypes.TimestamptzOID},
		{&now, pgtypes.TimestamptzOID},
		{pgtype.Timestamp{}, pgtypes.TimestampOID},
		{pgtype.Date{}, pgtypes.DateOID},
		{pgtype.Time{}, pgtypes.TimeOID},
		{pgtypes.Timetz{}, pgtypes.TimeTZOID},
		{duration, pgtypes.IntervalOID},
		{&duration, pgtypes.IntervalOID},
	}

	for _, test := range tests {
		oid, ok := DefaultOID(test.value)
		require.True(t, ok, "%T", test.value)
		assert.Equal(t, test.expected, oid, "%T", test.value)
	}

	_, ok := DefaultOID("2000-01-01")
	assert.False(t, ok)
}

func Test_Adapter_Registrations_Are_Consistent(
	t *testing.T,
) {

	for _, oid := range pgtypes.TemporalOIDs {
		encoder, err := NewEncoder(oid, nil)
		require.NoError(t, err)
		assert.Equal(t, oid, encoder.OID())

		decoder, err := NewDecoder(oid, nil)
		require.NoError(t, err)
		assert.Equal(t, oid, decoder.OID())

		_, ok := NativeType(oid)
		assert.True(t, ok)
	}
}

func Test_Native_Types(
	t *testing.T,
) {

	nativeType, ok := NativeType(pgtypes.IntervalOID)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(time.Duration(0)), nativeType)

	nativeType, ok = NativeType(pgtypes.TimeTZOID)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(pgtypes.Timetz{}), nativeType)
}

func Test_Unknown_OID(
	t *testing.T,
) {

	_, ok := LookupEncoderFactory(pgtype.TextOID)
	assert.False(t, ok)
	_, ok = LookupDecoderFactory(pgtype.TextOID)
	assert.False(t, ok)
	_, ok = NativeType(pgtype.TextOID)
	assert.False(t, ok)

	_, err := NewEncoder(pgtype.TextOID, nil)
	assert.ErrorContains(t, err, "no temporal encoder for oid 25")
	_, err = NewDecoder(pgtype.TextOID, nil)
	assert.ErrorContains(t, err, "no temporal decoder for oid 25")
	_, err = NewCodec(pgtype.TextOID, nil)
	assert.Error(t, err)
}
