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

package containers

import (
	"sync"
)

// ConcurrentMap is a typed wrapper around sync.Map, meant for values
// written once and read many times.
type ConcurrentMap[K comparable, V any] struct {
	m *sync.Map
}

func NewConcurrentMap[K comparable, V any]() *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{
		m: &sync.Map{},
	}
}

func (m *ConcurrentMap[K, V]) Load(
	key K,
) (value V, ok bool) {

	v, ok := m.m.Load(key)
	if !ok {
		return value, false
	}
	return v.(V), true
}

func (m *ConcurrentMap[K, V]) Store(
	key K, value V,
) {

	m.m.Store(key, value)
}

func (m *ConcurrentMap[K, V]) LoadOrStore(
	key K, value V,
) (actual V, loaded bool) {

	v, loaded := m.m.LoadOrStore(key, value)
	return v.(V), loaded
}

// LoadOrCompute returns the stored value for key or computes and stores
// it. Concurrent callers may compute in parallel, only the first stored
// value is kept and returned to all of them. Errors are not cached.
func (m *ConcurrentMap[K, V]) LoadOrCompute(
	key K, compute func() (V, error),
) (actual V, loaded bool, err error) {

	if v, ok := m.Load(key); ok {
		return v, true, nil
	}

	value, err := compute()
	if err != nil {
		return actual, false, err
	}
	actual, loaded = m.LoadOrStore(key, value)
	return actual, loaded, nil
}

func (m *ConcurrentMap[K, V]) Delete(
	key K,
) {

	m.m.Delete(key)
}

func (m *ConcurrentMap[K, V]) Clear() {
	m.m.Clear()
}

func (m *ConcurrentMap[K, V]) Range(
	f func(key K, value V) bool,
) {

	m.m.Range(func(key, value any) bool {
		return f(key.(K), value.(V))
	})
}

func (m *ConcurrentMap[K, V]) Len() int {
	length := 0
	m.m.Range(func(_, _ any) bool {
		length++
		return true
	})
	return length
}
