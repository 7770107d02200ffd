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

package sessionparams

import (
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	DateStyle     = "DateStyle"
	IntervalStyle = "IntervalStyle"

	DefaultDateStyle     = "ISO, DMY"
	DefaultIntervalStyle = "postgres"
)

// ParameterProvider gives read access to the session parameters reported
// by the server. A parameter which is not tracked, or was not received yet,
// is reported as not present.
type ParameterProvider interface {
	ParameterStatus(name string) ([]byte, bool)
}

// Context is the adapt context handed to encoder and decoder factories.
// A nil Context, or one without a provider, stands for "no connection".
type Context struct {
	provider ParameterProvider
}

func NewContext(
	provider ParameterProvider,
) *Context {

	return &Context{
		provider: provider,
	}
}

func (c *Context) Connected() bool {
	return c != nil && c.provider != nil
}

// ParameterStatus reads the current value of a session parameter.
func (c *Context) ParameterStatus(
	name string,
) ([]byte, bool) {

	if !c.Connected() {
		return nil, false
	}
	return c.provider.ParameterStatus(name)
}

type pgConnProvider struct {
	conn *pgconn.PgConn
}

// FromPgConn adapts a pgx connection. pgconn reports unknown parameters
// as empty strings, which are treated as not present.
func FromPgConn(
	conn *pgconn.PgConn,
) ParameterProvider {

	return &pgConnProvider{
		conn: conn,
	}
}

func (p *pgConnProvider) ParameterStatus(
	name string,
) ([]byte, bool) {

	value := p.conn.ParameterStatus(name)
	if value == "" {
		return nil, false
	}
	return []byte(value), true
}

type staticProvider map[string]string

// Static returns a provider over a fixed snapshot of parameters.
func Static(
	parameters map[string]string,
) ParameterProvider {

	snapshot := make(staticProvider, len(parameters))
	for name, value := range parameters {
		snapshot[name] = value
	}
	return snapshot
}

func (s staticProvider) ParameterStatus(
	name string,
) ([]byte, bool) {

	value, present := s[name]
	if !present {
		return nil, false
	}
	return []byte(value), true
}
