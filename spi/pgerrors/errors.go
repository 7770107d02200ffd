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
	"strings"
)

// ConfigurationError is returned when a session parameter holds a value
// which cannot be mapped to a supported grammar. It is raised when an
// adapter is constructed and is not retryable.
type ConfigurationError struct {
	Code      string
	Parameter string
	Value     string
	Message   string
}

func NewConfigurationError(
	parameter string, value []byte, format string, args ...any,
) *ConfigurationError {

	return &ConfigurationError{
		Code:      pgerrcode.InvalidParameterValue,
		Parameter: parameter,
		Value:     SafeText(value),
		Message:   fmt.Sprintf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func (e *ConfigurationError) SQLState() string {
	return e.Code
}

// DataError is returned when a single value cannot be decoded, either
// because it is malformed or because the Go value cannot represent it.
// The session stays usable.
type DataError struct {
	Code    string
	Data    string
	Message string
	cause   error
}

func NewDataError(
	code string, data []byte, cause error, format string, args ...any,
) *DataError {

	return &DataError{
		Code:    code,
		Data:    SafeText(data),
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

func (e *DataError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s => %s", e.Message, e.cause.Error())
	}
	return e.Message
}

func (e *DataError) SQLState() string {
	return e.Code
}

func (e *DataError) Unwrap() error {
	return e.cause
}

// NotImplementedError signals valid PostgreSQL output which is not
// supported for decoding, e.g. timestamptz values in a non-ISO DateStyle.
type NotImplementedError struct {
	Code    string
	Data    string
	Message string
}

func NewNotImplementedError(
	data []byte, format string, args ...any,
) *NotImplementedError {

	return &NotImplementedError{
		Code:    pgerrcode.FeatureNotSupported,
		Data:    SafeText(data),
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *NotImplementedError) Error() string {
	return e.Message
}

func (e *NotImplementedError) SQLState() string {
	return e.Code
}

func IsConfigurationError(
	err error,
) bool {

	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsDataError(
	err error,
) bool {

	var target *DataError
	return errors.As(err, &target)
}

func IsNotImplemented(
	err error,
) bool {

	var target *NotImplementedError
	return errors.As(err, &target)
}

// SQLState returns the SQLSTATE code attached to err, or an empty string
// if err does not originate from this package.
func SQLState(
	err error,
) string {

	var state interface{ SQLState() string }
	if errors.As(err, &state) {
		return state.SQLState()
	}
	return ""
}

// SafeText renders raw wire bytes for messages, replacing invalid UTF-8.
func SafeText(
	data []byte,
) string {

	return strings.ToValidUTF8(string(data), "�")
}
