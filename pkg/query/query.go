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
	"strings"

	"github.com/caiflower/http-utils/pkg/e"
	"github.com/caiflower/http-utils/pkg/tools"
	"github.com/caiflower/http-utils/pkg/uri"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// bool 参数的转换方式
const (
	BooleansAsBool = iota
	BooleansAsInt
	BooleansAsString
	BooleansAsIntString
)

// 编解码方式，DefaultEncoding 在 Build 时等同于 RFC3986，
// 在 Parse 时先将 "+" 替换为空格再按 RFC3986 解码
const (
	NoEncoding      = -1
	DefaultEncoding = 0
	RFC1738         = 1
	RFC3986         = 2
)

// CleanParams 清理参数: 按 boolCast 转换 bool，去掉字符串首尾空白，removeEmpty 时移除空字符串与 nil
func CleanParams(params map[string]interface{}, boolCast int, removeEmpty bool) (map[string]interface{}, error) {
	cleaned := make(map[string]interface{}, len(params))
	for key, value := range params {
		v, keep, err := cleanValue(value, boolCast, removeEmpty)
		if err != nil {
			return nil, err
		}
		if keep {
			cleaned[key] = v
		}
	}
	return cleaned, nil
}

func cleanValue(value interface{}, boolCast int, removeEmpty bool) (interface{}, bool, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		nested, err := CleanParams(v, boolCast, removeEmpty)
		return nested, err == nil, err
	case []interface{}:
		list := make([]interface{}, 0, len(v))
		for _, item := range v {
			cleanedItem, keep, err := cleanValue(item, boolCast, removeEmpty)
			if err != nil {
				return nil, false, err
			}
			if keep {
				list = append(list, cleanedItem)
			}
		}
		return list, true, nil
	case bool:
		switch boolCast {
		case BooleansAsBool:
			return v, true, nil
		case BooleansAsInt:
			if v {
				return 1, true, nil
			}
			return 0, true, nil
		case BooleansAsString:
			if v {
				return "true", true, nil
			}
			return "false", true, nil
		case BooleansAsIntString:
			if v {
				return "1", true, nil
			}
			return "0", true, nil
		default:
			return nil, false, e.NewInvalidArgument("invalid bool cast parameter value: %d", boolCast)
		}
	case string:
		v = strings.TrimSpace(v)
		if removeEmpty && v == "" {
			return nil, false, nil
		}
		return v, true, nil
	case nil:
		return nil, !removeEmpty, nil
	default:
		return v, true, nil
	}
}

func encoder(encoding int) func(string) string {
	switch encoding {
	case DefaultEncoding, RFC3986:
		return uri.RawURLEncode
	case RFC1738:
		return uri.URLEncode
	default:
		return func(s string) string { return s }
	}
}

func decoder(encoding int) func(string) string {
	switch encoding {
	case NoEncoding:
		return func(s string) string { return s }
	case RFC3986:
		return uri.RawURLDecode
	case RFC1738:
		return uri.URLDecode
	default:
		return func(s string) string { return uri.RawURLDecode(strings.ReplaceAll(s, "+", " ")) }
	}
}

// Build 构建 query 字符串，参数按名称的字节序排序，同名参数按值的字符串形式排序。
// delimiter 为空时使用 "&"，enclosure 会包裹每一个值。
func Build(params map[string]interface{}, encoding int, delimiter, enclosure string) string {
	if len(params) == 0 {
		return ""
	}
	if delimiter == "" {
		delimiter = "&"
	}
	encode := encoder(encoding)

	pair := func(key string, value interface{}) string {
		if value == nil {
			return key
		}
		if b, ok := value.(bool); ok {
			value = 0
			if b {
				value = 1
			}
		}
		return key + "=" + enclosure + encode(tools.ToString(value)) + enclosure
	}

	keys := maps.Keys(params)
	slices.Sort(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		name := encode(key)
		values, ok := toList(params[key])
		if !ok {
			pairs = append(pairs, pair(name, params[key]))
			continue
		}

		slices.SortStableFunc(values, func(a, b interface{}) bool {
			return tools.ToString(a) < tools.ToString(b)
		})
		for _, value := range values {
			pairs = append(pairs, pair(name, value))
		}
	}

	return strings.Join(pairs, delimiter)
}

func toList(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return slices.Clone(v), true
	case []string:
		list := make([]interface{}, len(v))
		for i := range v {
			list[i] = v[i]
		}
		return list, true
	case []int:
		list := make([]interface{}, len(v))
		for i := range v {
			list[i] = v[i]
		}
		return list, true
	case []bool:
		list := make([]interface{}, len(v))
		for i := range v {
			list[i] = v[i]
		}
		return list, true
	default:
		return nil, false
	}
}

// Merge 将 query 合并到 requestURI 已有的参数中，同名参数被覆盖
func Merge(requestURI string, query map[string]interface{}) string {
	var current string
	if parts, ok := uri.ParseURL(requestURI); ok {
		current = parts.Query
	}

	params := Parse(current, DefaultEncoding)
	for key, value := range query {
		params[key] = value
	}

	base, _, _ := strings.Cut(requestURI, "?")
	if len(params) > 0 {
		base += "?" + Build(params, DefaultEncoding, "", "")
	}
	return base
}

// Parse 解析 query 字符串，重复的 key 合并为 []interface{}，没有 "=" 的 key 值为 nil
func Parse(query string, encoding int) map[string]interface{} {
	result := make(map[string]interface{})
	query = strings.Trim(query, "?")
	if query == "" {
		return result
	}

	decode := decoder(encoding)
	for _, pair := range strings.Split(query, "&") {
		rawKey, rawValue, hasValue := strings.Cut(pair, "=")
		key := decode(rawKey)

		var value interface{}
		if hasValue {
			value = decode(rawValue)
		}

		existing, ok := result[key]
		if !ok || existing == nil {
			result[key] = value
			continue
		}
		if list, isList := existing.([]interface{}); isList {
			result[key] = append(list, value)
		} else {
			result[key] = []interface{}{existing, value}
		}
	}

	return result
}

// RawURLEncode 递归地对标量或标量切片做 RFC 3986 编码
func RawURLEncode(data interface{}) (interface{}, error) {
	switch v := data.(type) {
	case []interface{}:
		encoded := make([]interface{}, len(v))
		for i, item := range v {
			value, err := RawURLEncode(item)
			if err != nil {
				return nil, err
			}
			encoded[i] = value
		}
		return encoded, nil
	case []string:
		encoded := make([]interface{}, len(v))
		for i, item := range v {
			encoded[i] = uri.RawURLEncode(item)
		}
		return encoded, nil
	case map[string]interface{}:
		encoded := make(map[string]interface{}, len(v))
		for key, item := range v {
			value, err := RawURLEncode(item)
			if err != nil {
				return nil, err
			}
			encoded[key] = value
		}
		return encoded, nil
	}

	if data != nil && !tools.IsScalar(data) {
		return nil, e.NewInvalidArgument("data is neither scalar nor null")
	}
	return uri.RawURLEncode(tools.ToString(data)), nil
}
