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

package query

import (
	"testing"

	"github.com/caiflower/http-utils/pkg/e"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanParams(t *testing.T) {
	tests := []struct {
		name        string
		boolCast    int
		removeEmpty bool
		expected    map[string]interface{}
	}{
		{
			name:        "bool without remove",
			boolCast:    BooleansAsBool,
			removeEmpty: false,
			expected: map[string]interface{}{
				"whatever": nil, "nope": "", "true": true, "false": false, "zero": 0,
				"array": map[string]interface{}{"value": false},
			},
		},
		{
			name:        "bool",
			boolCast:    BooleansAsBool,
			removeEmpty: true,
			expected: map[string]interface{}{
				"true": true, "false": false, "zero": 0, "array": map[string]interface{}{"value": false},
			},
		},
		{
			name:        "int",
			boolCast:    BooleansAsInt,
			removeEmpty: true,
			expected: map[string]interface{}{
				"true": 1, "false": 0, "zero": 0, "array": map[string]interface{}{"value": 0},
			},
		},
		{
			name:        "int string",
			boolCast:    BooleansAsIntString,
			removeEmpty: true,
			expected: map[string]interface{}{
				"true": "1", "false": "0", "zero": 0, "array": map[string]interface{}{"value": "0"},
			},
		},
		{
			name:        "string",
			boolCast:    BooleansAsString,
			removeEmpty: true,
			expected: map[string]interface{}{
				"true": "true", "false": "false", "zero": 0, "array": map[string]interface{}{"value": "false"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]interface{}{
				"whatever": nil, "nope": "   ", "true": true, "false": false, "zero": 0,
				"array": map[string]interface{}{"value": false},
			}
			cleaned, err := CleanParams(data, tt.boolCast, tt.removeEmpty)
			require.Nil(t, err)
			if diff := cmp.Diff(tt.expected, cleaned); diff != "" {
				t.Errorf("CleanParams() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := CleanParams(map[string]interface{}{"x": true}, 42, true)
	assert.True(t, e.IsErrorCode(err, e.InvalidArgument))

	cleaned, err := CleanParams(map[string]interface{}{"list": []interface{}{" a ", "", nil, true}}, BooleansAsInt, true)
	require.Nil(t, err)
	assert.Equal(t, []interface{}{"a", 1}, cleaned["list"])
}

func TestMerge(t *testing.T) {
	base := "http://localhost/whatever/"
	params := map[string]interface{}{"foo": "bar"}

	assert.Equal(t, base, Merge(base+"?", nil))
	assert.Equal(t, base+"?foo=bar", Merge(base, params))
	assert.Equal(t, base+"?foo=bar", Merge(base+"?foo=nope", params))
	assert.Equal(t, base+"?foo=bar&what=nope", Merge(base+"?what=nope", params))
}

func TestBuild(t *testing.T) {
	data := map[string]interface{}{"foo": "bar", "whatever?": "nope!"}

	assert.Equal(t, "foo=bar&whatever%3F=nope%21", Build(data, DefaultEncoding, "", ""))
	assert.Equal(t, "foo=bar&whatever?=nope!", Build(data, NoEncoding, "", ""))
	assert.Equal(t, "foo=bar, whatever?=nope!", Build(data, NoEncoding, ", ", ""))
	assert.Equal(t, `foo="bar", whatever?="nope!"`, Build(data, NoEncoding, ", ", `"`))

	data["florps"] = []string{"nope", "nope", "nah"}
	assert.Equal(t,
		`florps="nah", florps="nope", florps="nope", foo="bar", whatever?="nope!"`,
		Build(data, NoEncoding, ", ", `"`),
	)

	assert.Equal(t, "", Build(nil, DefaultEncoding, "", ""))
}

func TestBuildSort(t *testing.T) {
	params := map[string]interface{}{"c": 1, "a": 2, "b": []interface{}{3, 1, 2}, "d": 4}
	assert.Equal(t, "a=2&b=1&b=2&b=3&c=1&d=4", Build(params, DefaultEncoding, "", ""))
}

func TestBuildBooleans(t *testing.T) {
	assert.Equal(t, "false=0&true=1", Build(map[string]interface{}{"true": true, "false": false}, DefaultEncoding, "", ""))

	params := map[string]interface{}{
		"foo": []interface{}{true, "true"},
		"bar": []interface{}{false, "false"},
	}
	assert.Equal(t, "bar=0&bar=false&foo=1&foo=true", Build(params, RFC1738, "", ""))
}

func TestBuildEncodings(t *testing.T) {
	params := map[string]interface{}{"foo bar": "baz+"}
	assert.Equal(t, "foo+bar=baz%2B", Build(params, RFC1738, "", ""))
	assert.Equal(t, "foo%20bar=baz%2B", Build(params, RFC3986, "", ""))
	assert.Equal(t, "foo bar=baz+", Build(params, NoEncoding, "", ""))
	assert.Equal(t, "key", Build(map[string]interface{}{"key": nil}, DefaultEncoding, "", ""))
}

func TestParse(t *testing.T) {
	tests := map[string]map[string]interface{}{
		"":                    {},
		"q=a&q=b":             {"q": []interface{}{"a", "b"}},
		"q[0]=a&q[1]=b":       {"q[0]": "a", "q[1]": "b"},
		"q[]=a&q[]=b":         {"q[]": []interface{}{"a", "b"}},
		"q[]=a":               {"q[]": "a"},
		"q.a=a&q.b=b":         {"q.a": "a", "q.b": "b"},
		"q%20a=a%20b":         {"q a": "a b"},
		"a&q":                 {"a": nil, "q": nil},
		"data=abc=":           {"data": "abc="},
		"foo=a&foo=b&µ=c":     {"foo": []interface{}{"a", "b"}, "µ": "c"},
		"0":                   {"0": nil},
		"0=":                  {"0": ""},
		"var=0":               {"var": "0"},
		"a[b][c]=1&a[b][c]=2": {"a[b][c]": []interface{}{"1", "2"}},
		"q=a&q=b&q=c":         {"q": []interface{}{"a", "b", "c"}},
		"?q=a":                {"q": "a"},
		"var=foo+bar":         {"var": "foo bar"},
	}

	for input, expected := range tests {
		if diff := cmp.Diff(expected, Parse(input, DefaultEncoding)); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestParseEncodings(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"foo%20": "bar"}, Parse("foo%20=bar", NoEncoding))
	assert.Equal(t, "foo+bar", Parse("var=foo+bar", RFC3986)["var"])
	assert.Equal(t, "foo bar", Parse("var=foo+bar", RFC1738)["var"])
}

func TestParseAndBuildRoundTrip(t *testing.T) {
	for _, input := range []string{"a=b&c=d", "a&b=1&b=2", "foo=a=b"} {
		assert.Equal(t, input, Build(Parse(input, NoEncoding), NoEncoding, "", ""))
	}
}

func TestRawURLEncode(t *testing.T) {
	encoded, err := RawURLEncode([]interface{}{"a b", []interface{}{"c&d", 1, true, nil}})
	require.Nil(t, err)
	assert.Equal(t, []interface{}{"a%20b", []interface{}{"c%26d", "1", "1", ""}}, encoded)

	encoded, err = RawURLEncode("ü")
	require.Nil(t, err)
	assert.Equal(t, "%C3%BC", encoded)

	_, err = RawURLEncode(struct{}{})
	assert.True(t, e.IsErrorCode(err, e.InvalidArgument))
}
