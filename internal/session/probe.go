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

package session

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/pgtemporal/spi/pgerrors"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/noctarius/pgtemporal/spi/temporal"
)

// ProbeQuery selects one sample of every temporal type. Results are
// requested in text format, so the server renders them with the
// session's DateStyle and IntervalStyle.
const ProbeQuery = `SELECT
	'2000-01-02'::date AS date,
	'03:04:05.5'::time AS time,
	'03:04:05+02'::timetz AS timetz,
	'2000-01-02 03:04:05.25'::timestamp AS timestamp,
	'2000-01-02 03:04:05+02'::timestamptz AS timestamptz,
	'1 year 2 mons 3 days 04:05:06.5'::interval AS interval`

type ProbeResult struct {
	Column   string
	OID      uint32
	Type     string
	Text     string
	Value    any
	Error    error
	SQLState string
}

// Probe runs query on the live connection and decodes every column with
// the type manager. Decoding failures are reported per column.
func (s *Session) Probe(
	ctx context.Context, tm temporal.TypeManager, query string,
) ([]ProbeResult, error) {

	if s.conn == nil {
		return nil, errors.Errorf("probing requires a connection")
	}

	result := s.conn.PgConn().ExecParams(ctx, query, nil, nil, nil, nil).Read()
	if result.Err != nil {
		return nil, errors.Wrap(result.Err, 0)
	}
	if len(result.Rows) == 0 {
		return nil, errors.Errorf("probe query returned no rows")
	}

	row := result.Rows[0]
	results := make([]ProbeResult, 0, len(result.FieldDescriptions))
	for i, field := range result.FieldDescriptions {
		typeName, _ := pgtypes.TypeName(field.DataTypeOID)
		probe := ProbeResult{
			Column: field.Name,
			OID:    field.DataTypeOID,
			Type:   typeName,
			Text:   string(row[i]),
		}

		if row[i] != nil {
			value, err := tm.Decode(field.DataTypeOID, row[i])
			probe.Value = value
			probe.Error = err
			probe.SQLState = pgerrors.SQLState(err)
		}
		results = append(results, probe)
	}
	s.logger.Verbosef("Probed %d columns", len(results))
	return results, nil
}
