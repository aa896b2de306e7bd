/*
 * Copyright 2024 caiflower Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package basic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkedHashMap_BasicOps(t *testing.T) {
	type getCase struct {
		key      string
		expected string
		ok       bool
	}

	// 1. Put & Get
	m := NewLinkHashMap[string]()
	m.Put("key1", "value1")
	m.Put("key2", "value2")
	m.Put("key3", "value3")

	getCases := []getCase{
		{"key1", "value1", true},
		{"key2", "value2", true},
		{"key3", "value3", true},
		{"keyX", "", false},
	}
	for _, c := range getCases {
		val, ok := m.Get(c.key)
		assert.Equal(t, c.expected, val, c.key)
		assert.Equal(t, c.ok, ok, c.key)
	}

	// 2. Update value keeps position
	m.Put("key1", "new1")
	val, ok := m.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "new1", val)
	assert.Equal(t, []string{"key1", "key2", "key3"}, m.Keys())
	assert.Equal(t, []string{"new1", "value2", "value3"}, m.Values())

	// 3. Remove keys
	assert.True(t, m.Remove("key2"))
	assert.Equal(t, []string{"key1", "key3"}, m.Keys())
	assert.True(t, m.Remove("key3"))
	assert.Equal(t, []string{"key1"}, m.Keys())
	assert.False(t, m.Remove("keyX"))
	assert.True(t, m.Remove("key1"))
	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Keys())

	// 4. Re-insert after removal appends at the end
	m.Put("a", "1")
	m.Put("b", "2")
	m.Remove("a")
	m.Put("a", "3")
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	assert.True(t, m.Contains("a"))
}

func TestLinkedHashMap_Range(t *testing.T) {
	m := NewLinkHashMap[int]()
	for i, k := range []string{"x", "y", "z"} {
		m.Put(k, i)
	}

	var keys []string
	m.Range(func(key string, value int) bool {
		keys = append(keys, key)
		return key != "y"
	})
	assert.Equal(t, []string{"x", "y"}, keys)
}
