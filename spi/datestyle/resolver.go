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

package datestyle

import (
	"bytes"
	"github.com/noctarius/pgtemporal/spi/pgerrors"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"github.com/samber/lo"
)

// GrammarVariant is the classification of a DateStyle session value
// into the textual grammar the server uses for dates and timestamps.
type GrammarVariant int

const (
	ISO GrammarVariant = iota
	German
	SQLWithDayFirst
	SQLWithMonthFirst
	PostgresWithDayFirst
	PostgresWithMonthFirst
)

var grammarVariantNames = map[GrammarVariant]string{
	ISO:                    "ISO",
	German:                 "German",
	SQLWithDayFirst:        "SQL, DMY",
	SQLWithMonthFirst:      "SQL, MDY",
	PostgresWithDayFirst:   "Postgres, DMY",
	PostgresWithMonthFirst: "Postgres, MDY",
}

func (g GrammarVariant) String() string {
	if name, ok := grammarVariantNames[g]; ok {
		return name
	}
	return "unknown"
}

// DayFirst returns true if the day field precedes the month field.
func (g GrammarVariant) DayFirst() bool {
	return lo.Contains([]GrammarVariant{German, SQLWithDayFirst, PostgresWithDayFirst}, g)
}

// IntervalStyleMode selects the interval output grammar used when
// encoding intervals.
type IntervalStyleMode int

const (
	Postgres IntervalStyleMode = iota
	SQLStandard
)

func (m IntervalStyleMode) String() string {
	if m == SQLStandard {
		return "sql_standard"
	}
	return "postgres"
}

// ResolveDateStyle classifies a raw DateStyle value, e.g. "ISO, DMY".
// The leading letter selects the family, the trailing token selects the
// day/month ordering for the SQL and Postgres families. German output is
// always day first. An empty value resolves to the server default.
func ResolveDateStyle(
	raw []byte,
) (GrammarVariant, error) {

	value := bytes.TrimSpace(raw)
	if len(value) == 0 {
		value = []byte(sessionparams.DefaultDateStyle)
	}

	dayFirst := trailingToken(value) == "DMY"
	switch value[0] {
	case 'I':
		return ISO, nil
	case 'G':
		return German, nil
	case 'S':
		return lo.Ternary(dayFirst, SQLWithDayFirst, SQLWithMonthFirst), nil
	case 'P':
		return lo.Ternary(dayFirst, PostgresWithDayFirst, PostgresWithMonthFirst), nil
	}
	return ISO, pgerrors.NewConfigurationError(
		sessionparams.DateStyle, raw, "unexpected DateStyle: %s", pgerrors.SafeText(raw),
	)
}

// ResolveIntervalStyle classifies a raw IntervalStyle value. Only
// sql_standard changes the encoding; every other value (or no value at
// all) encodes in the postgres style.
func ResolveIntervalStyle(
	raw []byte, present bool,
) IntervalStyleMode {

	if present && string(bytes.TrimSpace(raw)) == "sql_standard" {
		return SQLStandard
	}
	return Postgres
}

// RawDateStyle reads the DateStyle from the context, falling back to
// the default if there is no connection or the value is unknown.
func RawDateStyle(
	ctx *sessionparams.Context,
) []byte {

	if value, present := ctx.ParameterStatus(sessionparams.DateStyle); present && len(value) > 0 {
		return value
	}
	return []byte(sessionparams.DefaultDateStyle)
}

// RawIntervalStyle reads the IntervalStyle from the context.
func RawIntervalStyle(
	ctx *sessionparams.Context,
) ([]byte, bool) {

	return ctx.ParameterStatus(sessionparams.IntervalStyle)
}

func GrammarVariantFromContext(
	ctx *sessionparams.Context,
) (GrammarVariant, error) {

	return ResolveDateStyle(RawDateStyle(ctx))
}

func IntervalStyleFromContext(
	ctx *sessionparams.Context,
) IntervalStyleMode {

	return ResolveIntervalStyle(RawIntervalStyle(ctx))
}

func trailingToken(
	value []byte,
) string {

	tokens := bytes.Split(value, []byte(","))
	return string(bytes.TrimSpace(tokens[len(tokens)-1]))
}
