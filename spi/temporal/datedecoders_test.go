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
	"github.com/noctarius/pgtemporal/spi/datestyle"
	"github.com/noctarius/pgtemporal/spi/pgerrors"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

var allDateStyles = []struct {
	dateStyle string
	variant   datestyle.GrammarVariant
	date      string
	timestamp string
	bc        string
	year10k   string
}{
	{
		"ISO, DMY", datestyle.ISO,
		"2000-01-02", "2000-01-02 03:04:05",
		"0044-03-15 10:00:00 BC", "10000-01-01 00:00:00",
	},
	{
		"German, DMY", datestyle.German,
		"02.01.2000", "02.01.2000 03:04:05",
		"15.03.0044 10:00:00 BC", "01.01.10000 00:00:00",
	},
	{
		"SQL, DMY", datestyle.SQLWithDayFirst,
		"02/01/2000", "02/01/2000 03:04:05",
		"15/03/0044 10:00:00 BC", "01/01/10000 00:00:00",
	},
	{
		"SQL, MDY", datestyle.SQLWithMonthFirst,
		"01/02/2000", "01/02/2000 03:04:05",
		"03/15/0044 10:00:00 BC", "01/01/10000 00:00:00",
	},
	{
		"Postgres, DMY", datestyle.PostgresWithDayFirst,
		"02-01-2000", "Sun 02 Jan 03:04:05 2000",
		"Tue 15 Mar 10:00:00 0044 BC", "Sat 01 Jan 00:00:00 10000",
	},
	{
		"Postgres, MDY", datestyle.PostgresWithMonthFirst,
		"01-02-2000", "Sun Jan 02 03:04:05 2000",
		"Tue Mar 15 10:00:00 0044 BC", "Sat Jan 01 00:00:00 10000",
	},
}

func Test_Date_Decoder_All_DateStyles(
	t *testing.T,
) {

	expected := time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC)
	encoder, err := NewDateEncoder(nil)
	require.NoError(t, err)

	for _, style := range allDateStyles {
		t.Run(style.dateStyle, func(t *testing.T) {
			decoder, err := NewDateDecoder(dateStyleContext(style.dateStyle))
			require.NoError(t, err)
			assert.Equal(t, style.variant, decoder.Variant())

			date, err := decoder.DecodeDate([]byte(style.date))
			require.NoError(t, err)
			assert.True(t, expected.Equal(date))

			data, err := encoder.Encode(date)
			require.NoError(t, err)
			assert.Equal(t, "2000-01-02", string(data))
		})
	}
}

func Test_Date_Decoder_Default_Without_Connection(
	t *testing.T,
) {

	decoder, err := NewDateDecoder(nil)
	require.NoError(t, err)
	assert.Equal(t, datestyle.ISO, decoder.Variant())

	date, err := decoder.Decode([]byte("2020-12-31"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), date)
}

func Test_Date_Decoder_BC(
	t *testing.T,
) {

	for _, style := range allDateStyles {
		t.Run(style.dateStyle, func(t *testing.T) {
			decoder, err := NewDateDecoder(dateStyleContext(style.dateStyle))
			require.NoError(t, err)

			bcDate := style.bc[:len(style.bc)-len(" 10:00:00 BC")] + " BC"
			if style.variant == datestyle.PostgresWithDayFirst || style.variant == datestyle.PostgresWithMonthFirst {
				bcDate = "03-15-0044 BC"
			}

			_, err = decoder.DecodeDate([]byte(bcDate))
			require.Error(t, err)
			assert.True(t, pgerrors.IsDataError(err))
			assert.Contains(t, err.Error(), "BC dates are not supported")
			assert.Contains(t, err.Error(), bcDate)
		})
	}
}

func Test_Date_Decoder_Year_After_9999(
	t *testing.T,
) {

	decoder, err := NewDateDecoder(nil)
	require.NoError(t, err)

	_, err = decoder.DecodeDate([]byte("10000-01-01"))
	require.Error(t, err)
	assert.True(t, pgerrors.IsDataError(err))
	assert.Equal(t, pgerrcode.DatetimeFieldOverflow, pgerrors.SQLState(err))
	assert.Contains(t, err.Error(), "after year 9999")
}

func Test_Date_Decoder_Malformed(
	t *testing.T,
) {

	decoder, err := NewDateDecoder(nil)
	require.NoError(t, err)

	_, err = decoder.DecodeDate([]byte("2000-13-45"))
	require.Error(t, err)
	assert.True(t, pgerrors.IsDataError(err))
	assert.Equal(t, pgerrcode.InvalidDatetimeFormat, pgerrors.SQLState(err))
	assert.NotContains(t, err.Error(), "BC")
	assert.Contains(t, err.Error(), "2000-13-45")

	var parseErr *time.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func Test_Date_Decoder_Unknown_DateStyle(
	t *testing.T,
) {

	_, err := NewDateDecoder(dateStyleContext("Unknown, DMY"))
	require.Error(t, err)
	assert.True(t, pgerrors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "Unknown, DMY")

	_, err = NewTimestampDecoder(dateStyleContext("Unknown, DMY"))
	assert.True(t, pgerrors.IsConfigurationError(err))

	_, err = NewTimestamptzDecoder(dateStyleContext("Unknown, DMY"))
	assert.True(t, pgerrors.IsConfigurationError(err))
}

func Test_Timestamp_Decoder_All_DateStyles(
	t *testing.T,
) {

	for _, style := range allDateStyles {
		t.Run(style.dateStyle, func(t *testing.T) {
			decoder, err := NewTimestampDecoder(dateStyleContext(style.dateStyle))
			require.NoError(t, err)

			timestamp, err := decoder.DecodeTimestamp([]byte(style.timestamp))
			require.NoError(t, err)
			assert.Equal(t, time.Date(2000, time.January, 2, 3, 4, 5, 0, time.UTC), timestamp)

			_, err = decoder.DecodeTimestamp([]byte(style.bc))
			require.Error(t, err)
			assert.True(t, pgerrors.IsDataError(err))
			assert.Contains(t, err.Error(), "BC dates are not supported")

			_, err = decoder.DecodeTimestamp([]byte(style.year10k))
			require.Error(t, err)
			assert.True(t, pgerrors.IsDataError(err))
			assert.Contains(t, err.Error(), "after year 9999")
		})
	}
}

func Test_Timestamp_Decoder_Fractional_Seconds(
	t *testing.T,
) {

	tests := []struct {
		dateStyle string
		data      string
		nanos     int
	}{
		{"ISO, DMY", "2000-01-02 03:04:05", 0},
		{"ISO, DMY", "2000-01-02 03:04:05.5", 500000000},
		{"ISO, DMY", "2000-01-02 03:04:05.123456", 123456000},
		{"ISO, DMY", "2000-01-02 03:04:05.000001", 1000},
		{"German, DMY", "02.01.2000 03:04:05.25", 250000000},
		{"SQL, MDY", "01/02/2000 03:04:05.999999", 999999000},
		{"Postgres, DMY", "Sun 02 Jan 03:04:05.5 2000", 500000000},
		{"Postgres, MDY", "Sun Jan 02 03:04:05.000010 2000", 10000},
	}

	for _, test := range tests {
		t.Run(test.data, func(t *testing.T) {
			decoder, err := NewTimestampDecoder(dateStyleContext(test.dateStyle))
			require.NoError(t, err)

			timestamp, err := decoder.DecodeTimestamp([]byte(test.data))
			require.NoError(t, err)
			assert.Equal(t, time.Date(2000, time.January, 2, 3, 4, 5, test.nanos, time.UTC), timestamp)
		})
	}
}

func Test_Timestamptz_Decoder(
	t *testing.T,
) {

	decoder, err := NewTimestamptzDecoder(nil)
	require.NoError(t, err)

	tests := []struct {
		data   string
		nanos  int
		offset int
	}{
		{"2000-01-02 03:04:05+02", 0, 7200},
		{"2000-01-02 03:04:05.5+02", 500000000, 7200},
		{"2000-01-02 03:04:05-05:30", 0, -19800},
		{"2000-01-02 03:04:05.123456+0530", 123456000, 19800},
		{"2000-01-02 03:04:05+01:02:03", 0, 3723},
		{"2000-01-02 03:04:05+00", 0, 0},
	}

	for _, test := range tests {
		t.Run(test.data, func(t *testing.T) {
			timestamp, err := decoder.DecodeTimestamptz([]byte(test.data))
			require.NoError(t, err)

			expected := time.Date(2000, time.January, 2, 3, 4, 5, test.nanos, time.FixedZone("", test.offset))
			assert.True(t, expected.Equal(timestamp))

			_, offset := timestamp.Zone()
			assert.Equal(t, test.offset, offset)
		})
	}

	_, err = decoder.DecodeTimestamptz([]byte("0044-03-15 10:00:00+00 BC"))
	assert.True(t, pgerrors.IsDataError(err))
	assert.Contains(t, err.Error(), "BC dates are not supported")

	_, err = decoder.DecodeTimestamptz([]byte("10000-01-01 00:00:00+00"))
	assert.True(t, pgerrors.IsDataError(err))
	assert.Contains(t, err.Error(), "after year 9999")
}

func Test_Timestamptz_Decoder_Non_ISO_Not_Implemented(
	t *testing.T,
) {

	for _, style := range allDateStyles {
		if style.variant == datestyle.ISO {
			continue
		}

		t.Run(style.dateStyle, func(t *testing.T) {
			decoder, err := NewTimestamptzDecoder(dateStyleContext(style.dateStyle))
			require.NoError(t, err)

			for _, data := range []string{style.timestamp, "2000-01-02 03:04:05+02", "garbage"} {
				_, err := decoder.Decode([]byte(data))
				require.Error(t, err)
				assert.True(t, pgerrors.IsNotImplemented(err))
				assert.False(t, pgerrors.IsDataError(err))
				assert.Contains(t, err.Error(), style.dateStyle)
				assert.Contains(t, err.Error(), data)
			}
		})
	}
}

func Test_Decoder_Grammar_Is_Frozen(
	t *testing.T,
) {

	provider := &mutableProvider{parameters: map[string]string{sessionparams.DateStyle: "SQL, DMY"}}
	ctx := sessionparams.NewContext(provider)

	decoder, err := NewDateDecoder(ctx)
	require.NoError(t, err)

	provider.set(sessionparams.DateStyle, "ISO, DMY")

	date, err := decoder.DecodeDate([]byte("02/01/2000"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC), date)

	fresh, err := NewDateDecoder(ctx)
	require.NoError(t, err)
	assert.Equal(t, datestyle.ISO, fresh.Variant())
}

func Test_Normalize_Offset(
	t *testing.T,
) {

	tests := []struct {
		data       string
		normalized string
		layout     string
	}{
		{"10:00:00+02", "10:00:00+0200", datestyle.OffsetLayout},
		{"10:00:00-02:30", "10:00:00-0230", datestyle.OffsetLayout},
		{"10:00:00+0230", "10:00:00+0230", datestyle.OffsetLayout},
		{"10:00:00+01:02:03", "10:00:00+010203", datestyle.OffsetSecondsLayout},
		{"10:00:00", "10:00:00", datestyle.OffsetLayout},
	}

	for _, test := range tests {
		data := []byte(test.data)
		normalized, layout := normalizeOffset(data, 8)
		assert.Equal(t, test.normalized, string(normalized))
		assert.Equal(t, test.layout, layout)
		assert.Equal(t, test.data, string(data))
	}
}
