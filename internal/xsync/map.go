// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package xsync

import "sync"

// Map is a generic, concurrency-safe map guarded by a read-write mutex.
// Reads run in parallel and only the insertion of a new key takes the write lock.
type Map[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// NewMap creates and returns a new instance of Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		data: make(map[K]V),
	}
}

// Get retrieves the value associated with the given key.
func (s *Map[K, V]) Get(k K) (V, bool) {
	s.mu.RLock()
	val, ok := s.data[k]
	s.mu.RUnlock()
	return val, ok
}

// GetOrCreate returns the value stored under k, creating it with create when absent.
// create runs at most once per key and under the write lock.
func (s *Map[K, V]) GetOrCreate(k K, create func() V) V {
	if val, ok := s.Get(k); ok {
		return val
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if val, ok := s.data[k]; ok {
		return val
	}
	val := create()
	s.data[k] = val
	return val
}

// Len returns the number of key-value pairs currently stored in the Map.
func (s *Map[K, V]) Len() int {
	s.mu.RLock()
	l := len(s.data)
	s.mu.RUnlock()
	return l
}

// Range calls f for every pair on a snapshot of the map, so f may use the map.
// The iteration order is not guaranteed.
func (s *Map[K, V]) Range(f func(K, V)) {
	s.mu.RLock()
	keys := make([]K, 0, len(s.data))
	values := make([]V, 0, len(s.data))
	for k, v := range s.data {
		keys = append(keys, k)
		values = append(values, v)
	}
	s.mu.RUnlock()

	for i := range keys {
		f(keys[i], values[i])
	}
}
