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
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/noctarius/pgtemporal/spi/pgerrors"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func newRegisteredMap(
	t *testing.T, dateStyle string,
) *pgtype.Map {

	m := pgtype.NewMap()
	require.NoError(t, RegisterCodecs(m, dateStyleContext(dateStyle)))
	return m
}

func Test_Codec_Registers_All_Temporal_Types(
	t *testing.T,
) {

	m := newRegisteredMap(t, "ISO, MDY")
	for _, oid := range pgtypes.TemporalOIDs {
		dataType, ok := m.TypeForOID(oid)
		require.True(t, ok)
		codec, ok := dataType.Codec.(*Codec)
		require.True(t, ok, "oid %d not replaced", oid)
		assert.Equal(t, int16(pgtype.TextFormatCode), codec.PreferredFormat())
		assert.True(t, codec.FormatSupported(pgtype.TextFormatCode))
		assert.False(t, codec.FormatSupported(pgtype.BinaryFormatCode))

		name, _ := pgtypes.TypeName(oid)
		assert.Equal(t, name, dataType.Name)
	}
}

func Test_Codec_Scan_Date_With_Session_DateStyle(
	t *testing.T,
) {

	m := newRegisteredMap(t, "SQL, DMY")

	var value time.Time
	require.NoError(t, m.Scan(pgtypes.DateOID, pgtype.TextFormatCode, []byte("02/01/2000"), &value))
	assert.Equal(t, time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC), value)

	var anyValue any
	require.NoError(t, m.Scan(pgtypes.DateOID, pgtype.TextFormatCode, []byte("02/01/2000"), &anyValue))
	assert.Equal(t, time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC), anyValue)
}

func Test_Codec_Scan_Null(
	t *testing.T,
) {

	m := newRegisteredMap(t, "ISO, DMY")

	value := &time.Time{}
	require.NoError(t, m.Scan(pgtypes.TimestampOID, pgtype.TextFormatCode, nil, &value))
	assert.Nil(t, value)

	var duration *time.Duration
	require.NoError(t, m.Scan(pgtypes.IntervalOID, pgtype.TextFormatCode, []byte("1 day"), &duration))
	require.NotNil(t, duration)
	assert.Equal(t, 24*time.Hour, *duration)

	var plain time.Time
	assert.Error(t, m.Scan(pgtypes.DateOID, pgtype.TextFormatCode, nil, &plain))
}

func Test_Codec_Scan_Decoder_Errors(
	t *testing.T,
) {

	m := newRegisteredMap(t, "ISO, DMY")

	var value time.Time
	err := m.Scan(pgtypes.DateOID, pgtype.TextFormatCode, []byte("2000-01-01 BC"), &value)
	require.Error(t, err)
	assert.True(t, pgerrors.IsDataError(err))
	assert.Equal(t, pgerrcode.DatetimeFieldOverflow, pgerrors.SQLState(err))
}

func Test_Codec_Scan_Time_Types(
	t *testing.T,
) {

	m := newRegisteredMap(t, "ISO, DMY")

	var tm pgtype.Time
	require.NoError(t, m.Scan(pgtypes.TimeOID, pgtype.TextFormatCode, []byte("01:02:03.5"), &tm))
	assert.Equal(t, pgtype.Time{Microseconds: 3723500000, Valid: true}, tm)

	var ttz pgtypes.Timetz
	require.NoError(t, m.Scan(pgtypes.TimeTZOID, pgtype.TextFormatCode, []byte("01:02:03+02"), &ttz))
	assert.True(t, pgtypes.NewTimetz(1, 2, 3, 0, 7200).Equal(ttz))
}

func Test_Codec_Encode(
	t *testing.T,
) {

	m := newRegisteredMap(t, "ISO, DMY")

	data, err := m.Encode(pgtypes.IntervalOID, pgtype.TextFormatCode, 36*time.Hour, nil)
	require.NoError(t, err)
	assert.Equal(t, "1 day, 12:00:00", string(data))

	data, err = m.Encode(
		pgtypes.DateOID, pgtype.TextFormatCode, time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC), nil,
	)
	require.NoError(t, err)
	assert.Equal(t, "2000-01-02", string(data))

	var nilTime *time.Time
	data, err = m.Encode(pgtypes.TimestamptzOID, pgtype.TextFormatCode, nilTime, nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func Test_Codec_Encode_Errors_Unwrap(
	t *testing.T,
) {

	m := newRegisteredMap(t, "ISO, DMY")

	_, err := m.Encode(
		pgtypes.DateOID, pgtype.TextFormatCode, time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC), nil,
	)
	require.Error(t, err)
	assert.True(t, pgerrors.IsDataError(err))
}

func Test_Codec_Decode_Value(
	t *testing.T,
) {

	codec, err := NewCodec(pgtypes.TimestamptzOID, dateStyleContext("ISO, MDY"))
	require.NoError(t, err)

	value, err := codec.DecodeValue(nil, pgtypes.TimestamptzOID, pgtype.TextFormatCode, []byte("2000-01-02 03:04:05+00"))
	require.NoError(t, err)
	assert.True(t, time.Date(2000, time.January, 2, 3, 4, 5, 0, time.UTC).Equal(value.(time.Time)))

	value, err = codec.DecodeValue(nil, pgtypes.TimestamptzOID, pgtype.TextFormatCode, nil)
	require.NoError(t, err)
	assert.Nil(t, value)

	_, err = codec.DecodeValue(nil, pgtypes.TimestamptzOID, pgtype.BinaryFormatCode, []byte{0})
	assert.Error(t, err)

	sqlValue, err := codec.DecodeDatabaseSQLValue(
		nil, pgtypes.TimestamptzOID, pgtype.TextFormatCode, []byte("2000-01-02 03:04:05+00"),
	)
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, sqlValue)
}

func Test_Codec_Decode_Database_SQL_Value_Non_Time(
	t *testing.T,
) {

	codec, err := NewCodec(pgtypes.IntervalOID, nil)
	require.NoError(t, err)

	value, err := codec.DecodeDatabaseSQLValue(nil, pgtypes.IntervalOID, pgtype.TextFormatCode, []byte("1 day"))
	require.NoError(t, err)
	assert.Equal(t, "1 day", value)
}
