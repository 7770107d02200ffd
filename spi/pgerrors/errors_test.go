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

package pgerrors

import (
	"fmt"
	"github.com/go-errors/errors"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_Error_Kinds_Are_Distinguishable(
	t *testing.T,
) {

	configErr := NewConfigurationError("DateStyle", []byte("XYZ, DMY"), "unexpected DateStyle: %s", "XYZ, DMY")
	dataErr := NewDataError(pgerrcode.DatetimeFieldOverflow, []byte("0044-03-15 BC"), nil, "BC dates are not supported")
	notImplErr := NewNotImplementedError([]byte("foo"), "not implemented")

	assert.True(t, IsConfigurationError(configErr))
	assert.False(t, IsDataError(configErr))
	assert.False(t, IsNotImplemented(configErr))

	assert.True(t, IsDataError(dataErr))
	assert.False(t, IsConfigurationError(dataErr))
	assert.False(t, IsNotImplemented(dataErr))

	assert.True(t, IsNotImplemented(notImplErr))
	assert.False(t, IsDataError(notImplErr))
	assert.False(t, IsConfigurationError(notImplErr))
}

func Test_Error_Kinds_Survive_Wrapping(
	t *testing.T,
) {

	dataErr := NewDataError(pgerrcode.InvalidDatetimeFormat, []byte("foo"), nil, "can't parse")
	wrapped := fmt.Errorf("decoding column: %w", dataErr)
	assert.True(t, IsDataError(wrapped))
	assert.Equal(t, pgerrcode.InvalidDatetimeFormat, SQLState(wrapped))

	stacked := errors.Wrap(dataErr, 0)
	assert.True(t, IsDataError(stacked))
}

func Test_Data_Error_Unwraps_Cause(
	t *testing.T,
) {

	cause := fmt.Errorf("parsing time")
	dataErr := NewDataError(pgerrcode.InvalidDatetimeFormat, []byte("foo"), cause, "can't parse date: %s", "foo")
	assert.ErrorIs(t, dataErr, cause)
	assert.Equal(t, "can't parse date: foo => parsing time", dataErr.Error())
}

func Test_SQLState(
	t *testing.T,
) {

	assert.Equal(t, pgerrcode.InvalidParameterValue, SQLState(NewConfigurationError("DateStyle", nil, "x")))
	assert.Equal(t, pgerrcode.FeatureNotSupported, SQLState(NewNotImplementedError(nil, "x")))
	assert.Equal(t, "", SQLState(fmt.Errorf("plain")))
}

func Test_SafeText_Replaces_Invalid_Bytes(
	t *testing.T,
) {

	assert.Equal(t, "2000-01-01", SafeText([]byte("2000-01-01")))
	assert.Equal(t, "20�0", SafeText([]byte{'2', '0', 0xff, '0'}))
}
