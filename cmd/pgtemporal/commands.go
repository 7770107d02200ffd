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

package main

import (
	"context"
	"fmt"
	"github.com/goccy/go-json"
	"github.com/noctarius/pgtemporal/internal/session"
	"github.com/noctarius/pgtemporal/internal/supporting"
	"github.com/noctarius/pgtemporal/internal/typemanager"
	spiconfig "github.com/noctarius/pgtemporal/spi/config"
	"github.com/noctarius/pgtemporal/spi/datestyle"
	"github.com/noctarius/pgtemporal/spi/pgerrors"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"github.com/noctarius/pgtemporal/spi/temporal"
	"github.com/samber/do"
	"github.com/urfave/cli"
	"io"
	"os"
)

var output io.Writer = os.Stdout

func newInjector() *do.Injector {
	injector := do.New()
	do.ProvideValue(injector, config)

	do.Provide(injector, func(i *do.Injector) (*session.Session, error) {
		options := session.OptionsFromConfig(do.MustInvoke[*spiconfig.Config](i))
		options.Offline = offline
		return session.Open(context.Background(), options)
	})

	do.Provide(injector, func(i *do.Injector) (temporal.TypeManager, error) {
		s, err := do.Invoke[*session.Session](i)
		if err != nil {
			return nil, err
		}
		return typemanager.NewTypeManager(s.Context())
	})
	return injector
}

func withInjector(
	action func(injector *do.Injector) error,
) error {

	injector := newInjector()
	err := action(injector)
	if shutdownErr := injector.Shutdown(); err == nil && shutdownErr != nil {
		return supporting.AdaptError(shutdownErr, 1)
	}
	return err
}

type stylesOutput struct {
	Source           string `json:"source"`
	DateStyle        string `json:"dateStyle"`
	Grammar          string `json:"grammar,omitempty"`
	DayFirst         bool   `json:"dayFirst"`
	IntervalStyle    string `json:"intervalStyle,omitempty"`
	IntervalEncoding string `json:"intervalEncoding"`
	DecodesIntervals bool   `json:"decodesIntervals"`
	Error            string `json:"error,omitempty"`
}

func stylesCommand(*cli.Context) error {
	return withInjector(func(injector *do.Injector) error {
		s, err := do.Invoke[*session.Session](injector)
		if err != nil {
			return supporting.AdaptErrorWithMessage(err, "Session couldn't be opened", 6)
		}
		return writeJSON(describeStyles(s.Context(), s.Connected()))
	})
}

func describeStyles(
	ctx *sessionparams.Context, connected bool,
) stylesOutput {

	styles := stylesOutput{
		Source:           "configuration",
		DateStyle:        string(datestyle.RawDateStyle(ctx)),
		IntervalEncoding: datestyle.IntervalStyleFromContext(ctx).String(),
		DecodesIntervals: true,
	}
	if connected {
		styles.Source = "connection"
	}

	if variant, err := datestyle.GrammarVariantFromContext(ctx); err != nil {
		styles.Error = err.Error()
	} else {
		styles.Grammar = variant.String()
		styles.DayFirst = variant.DayFirst()
	}

	if raw, present := datestyle.RawIntervalStyle(ctx); present {
		styles.IntervalStyle = string(raw)
		styles.DecodesIntervals = string(raw) == sessionparams.DefaultIntervalStyle
	}
	return styles
}

type decodeOutput struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Value    any    `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
	SQLState string `json:"sqlState,omitempty"`
}

func decodeCommand(c *cli.Context) error {
	oid, text, err := typeAndArgument(c)
	if err != nil {
		return err
	}

	return withInjector(func(injector *do.Injector) error {
		tm, err := do.Invoke[temporal.TypeManager](injector)
		if err != nil {
			return supporting.AdaptErrorWithMessage(err, "Session couldn't be opened", 6)
		}

		value, err := tm.Decode(oid, []byte(text))
		out := decodeOutput{Type: typeName, Text: text}
		if err != nil {
			out.Error = err.Error()
			out.SQLState = pgerrors.SQLState(err)
			if writeErr := writeJSON(out); writeErr != nil {
				return writeErr
			}
			return supporting.AdaptError(err, 10)
		}

		out.Value = renderValue(value)
		return writeJSON(out)
	})
}

func encodeCommand(c *cli.Context) error {
	oid, text, err := typeAndArgument(c)
	if err != nil {
		return err
	}

	value, err := parseInput(oid, text)
	if err != nil {
		return supporting.AdaptErrorWithMessage(err, fmt.Sprintf("Value couldn't be read as %s", typeName), 2)
	}

	return withInjector(func(injector *do.Injector) error {
		tm, err := do.Invoke[temporal.TypeManager](injector)
		if err != nil {
			return supporting.AdaptErrorWithMessage(err, "Session couldn't be opened", 6)
		}

		data, err := tm.Encode(oid, value)
		if err != nil {
			return supporting.AdaptError(err, 11)
		}
		_, err = fmt.Fprintln(output, string(data))
		return err
	})
}

type probeOutput struct {
	Column   string `json:"column"`
	Type     string `json:"type"`
	Text     string `json:"text"`
	Value    any    `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
	SQLState string `json:"sqlState,omitempty"`
}

func probeCommand(*cli.Context) error {
	if offline {
		return cli.NewExitError("probe requires a connection, --offline is set", 2)
	}

	return withInjector(func(injector *do.Injector) error {
		s, err := do.Invoke[*session.Session](injector)
		if err != nil {
			return supporting.AdaptErrorWithMessage(err, "Session couldn't be opened", 6)
		}
		if !s.Connected() {
			return cli.NewExitError("probe requires a connection, configure postgresql.connection", 2)
		}

		tm, err := do.Invoke[temporal.TypeManager](injector)
		if err != nil {
			return supporting.AdaptError(err, 6)
		}

		results, err := s.Probe(context.Background(), tm, session.ProbeQuery)
		if err != nil {
			return supporting.AdaptErrorWithMessage(err, "Probe query failed", 7)
		}

		outputs := make([]probeOutput, 0, len(results))
		for _, result := range results {
			out := probeOutput{
				Column:   result.Column,
				Type:     result.Type,
				Text:     result.Text,
				Value:    renderValue(result.Value),
				SQLState: result.SQLState,
			}
			if result.Error != nil {
				out.Error = result.Error.Error()
			}
			outputs = append(outputs, out)
		}
		return writeJSON(struct {
			Styles  stylesOutput  `json:"styles"`
			Columns []probeOutput `json:"columns"`
		}{describeStyles(s.Context(), true), outputs})
	})
}

func typeAndArgument(
	c *cli.Context,
) (uint32, string, error) {

	if typeName == "" {
		return 0, "", cli.NewExitError("--type is required", 2)
	}
	oid, ok := pgtypes.TypeOID(typeName)
	if !ok {
		return 0, "", cli.NewExitError(fmt.Sprintf("unknown temporal type: %s", typeName), 2)
	}
	if c.NArg() != 1 {
		return 0, "", cli.NewExitError("exactly one argument expected", 2)
	}
	return oid, c.Args().First(), nil
}

func writeJSON(
	value any,
) error {

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, string(data))
	return err
}
