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
	"github.com/noctarius/pgtemporal/spi/sessionparams"
)

// TypeManager hands out temporal adapters bound to one session context.
// Adapters are constructed on first use and shared afterwards.
type TypeManager interface {
	// SessionContext returns the context adapters are constructed against.
	SessionContext() *sessionparams.Context
	ResolveEncoder(oid uint32) (Encoder, error)
	ResolveDecoder(oid uint32) (Decoder, error)
	// Encode encodes value as the given oid, oid 0 selects the default
	// type of the value.
	Encode(oid uint32, value any) ([]byte, error)
	Decode(oid uint32, data []byte) (any, error)
	// RegisterCodecs installs codecs backed by the cached adapters.
	RegisterCodecs(m *pgtype.Map) error
	// Reset drops all cached adapters, the next resolution reads the
	// session parameters again.
	Reset()
}
