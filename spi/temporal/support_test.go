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
	"github.com/noctarius/pgtemporal/spi/sessionparams"
	"sync"
)

func contextWith(
	parameters map[string]string,
) *sessionparams.Context {

	return sessionparams.NewContext(sessionparams.Static(parameters))
}

func dateStyleContext(
	dateStyle string,
) *sessionparams.Context {

	return contextWith(map[string]string{sessionparams.DateStyle: dateStyle})
}

// mutableProvider simulates a connection whose session settings change
// after adapters were constructed.
type mutableProvider struct {
	mutex      sync.RWMutex
	parameters map[string]string
}

func (m *mutableProvider) ParameterStatus(
	name string,
) ([]byte, bool) {

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	value, ok := m.parameters[name]
	return []byte(value), ok
}

func (m *mutableProvider) set(
	name, value string,
) {

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.parameters[name] = value
}
