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

package typemanager

import (
	"github.com/go-errors/errors"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/noctarius/pgtemporal/internal/containers"
	"github.com/noctarius/pgtemporal/internal/supporting/logging"
	"github.com/noctarius/pgtemporal/spi/datestyle"
	"github.com/noctarius/pgtemporal/spi/pgtypes"
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"github.com/noctarius/pgtemporal/spi/temporal"
)

type typeManager struct {
	logger *logging.Logger
	ctx    *sessionparams.Context

	encoders *containers.ConcurrentMap[uint32, temporal.Encoder]
	decoders *containers.ConcurrentMap[uint32, temporal.Decoder]
}

func NewTypeManager(
	ctx *sessionparams.Context,
) (temporal.TypeManager, error) {

	logger, err := logging.NewLogger("TypeManager")
	if err != nil {
		return nil, err
	}

	return &typeManager{
		logger:   logger,
		ctx:      ctx,
		encoders: containers.NewConcurrentMap[uint32, temporal.Encoder](),
		decoders: containers.NewConcurrentMap[uint32, temporal.Decoder](),
	}, nil
}

func (tm *typeManager) SessionContext() *sessionparams.Context {
	return tm.ctx
}

func (tm *typeManager) ResolveEncoder(
	oid uint32,
) (temporal.Encoder, error) {

	encoder, loaded, err := tm.encoders.LoadOrCompute(oid, func() (temporal.Encoder, error) {
		return temporal.NewEncoder(oid, tm.ctx)
	})
	if err != nil {
		return nil, err
	}
	if !loaded {
		tm.logger.Debugf("Constructed encoder for %s", tm.describe(oid))
	}
	return encoder, nil
}

func (tm *typeManager) ResolveDecoder(
	oid uint32,
) (temporal.Decoder, error) {

	decoder, loaded, err := tm.decoders.LoadOrCompute(oid, func() (temporal.Decoder, error) {
		return temporal.NewDecoder(oid, tm.ctx)
	})
	if err != nil {
		return nil, err
	}
	if !loaded {
		tm.logger.Debugf("Constructed decoder for %s", tm.describe(oid))
	}
	return decoder, nil
}

func (tm *typeManager) Encode(
	oid uint32, value any,
) ([]byte, error) {

	if oid == 0 {
		defaultOID, ok := temporal.DefaultOID(value)
		if !ok {
			return nil, errors.Errorf("no temporal type for value of type %T", value)
		}
		oid = defaultOID
	}

	encoder, err := tm.ResolveEncoder(oid)
	if err != nil {
		return nil, err
	}
	return encoder.Encode(value)
}

func (tm *typeManager) Decode(
	oid uint32, data []byte,
) (any, error) {

	decoder, err := tm.ResolveDecoder(oid)
	if err != nil {
		return nil, err
	}

	value, err := decoder.Decode(data)
	if err != nil {
		tm.logger.Verbosef("Failed to decode %s: %s", tm.describe(oid), err)
		return nil, err
	}
	return value, nil
}

func (tm *typeManager) RegisterCodecs(
	m *pgtype.Map,
) error {

	for _, oid := range pgtypes.TemporalOIDs {
		encoder, err := tm.ResolveEncoder(oid)
		if err != nil {
			return err
		}
		decoder, err := tm.ResolveDecoder(oid)
		if err != nil {
			return err
		}

		nativeType, _ := temporal.NativeType(oid)
		name, _ := pgtypes.TypeName(oid)
		m.RegisterType(&pgtype.Type{
			Name:  name,
			OID:   oid,
			Codec: temporal.NewCodecFromAdapters(encoder, decoder, nativeType),
		})
	}
	tm.logger.Verbosef("Registered temporal codecs, DateStyle: %s", datestyle.RawDateStyle(tm.ctx))
	return nil
}

func (tm *typeManager) Reset() {
	tm.encoders.Clear()
	tm.decoders.Clear()
	tm.logger.Debugf("Dropped cached temporal adapters")
}

func (tm *typeManager) describe(
	oid uint32,
) string {

	if name, ok := pgtypes.TypeName(oid); ok {
		return name
	}
	return "unknown type"
}
