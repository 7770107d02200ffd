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

package pgtypes

import (
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	DateOID        uint32 = pgtype.DateOID
	TimeOID        uint32 = pgtype.TimeOID
	TimeTZOID      uint32 = 1266
	TimestampOID   uint32 = pgtype.TimestampOID
	TimestamptzOID uint32 = pgtype.TimestamptzOID
	IntervalOID    uint32 = pgtype.IntervalOID
)

var temporalTypeNames = map[uint32]string{
	DateOID:        "date",
	TimeOID:        "time",
	TimeTZOID:      "timetz",
	TimestampOID:   "timestamp",
	TimestamptzOID: "timestamptz",
	IntervalOID:    "interval",
}

// TemporalOIDs lists the temporal types in a stable order.
var TemporalOIDs = []uint32{
	DateOID, TimeOID, TimeTZOID, TimestampOID, TimestamptzOID, IntervalOID,
}

// TypeName returns the PostgreSQL type name of a temporal type.
func TypeName(
	oid uint32,
) (string, bool) {

	name, ok := temporalTypeNames[oid]
	return name, ok
}

// TypeOID returns the oid of a temporal type by its PostgreSQL name.
func TypeOID(
	name string,
) (uint32, bool) {

	for oid, candidate := range temporalTypeNames {
		if candidate == name {
			return oid, true
		}
	}
	return 0, false
}
