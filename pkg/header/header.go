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

package header

import (
	"net/http"
	"sort"
	"strings"

	"github.com/caiflower/http-utils/pkg/basic"
	"github.com/caiflower/http-utils/pkg/e"
	"github.com/caiflower/http-utils/pkg/tools"
)

const SetCookie = "Set-Cookie"

// cutset 与 php trim 的默认字符集一致
const cutset = " \t\n\r\x00\x0B"

var nameReplacer = strings.NewReplacer(" ", "", "\r", "", "\n", "")
var valueReplacer = strings.NewReplacer("\r", "", "\n", "")

// Line 一个有序的头部键值对，Value 可以是标量、nil、[]string 或 []interface{}
type Line struct {
	Name  string
	Value interface{}
}

type Lines []Line

// Normalized 规范化后的头部，保持首次出现的顺序。
// Set-Cookie 单独按 cookie 名保存，同名 cookie 只保留最后一个值。
type Normalized struct {
	headers *basic.LinkedHashMap[string]
	cookies *basic.LinkedHashMap[string]
}

func newNormalized() *Normalized {
	return &Normalized{
		headers: basic.NewLinkHashMap[string](),
		cookies: basic.NewLinkHashMap[string](),
	}
}

// Normalize 将多种形式的头部输入合并为 Name => "v1, v2" 的形式。
// 支持 http.Header、map[string]string、map[string][]string、map[string]interface{}、
// []string 原始行("Name: Value")、[]interface{} 混合输入、Lines 以及 *Normalized。
// map 类型的输入按 key 排序后处理，需要保持顺序时请使用 Lines。
func Normalize(headers ...interface{}) (*Normalized, error) {
	n := newNormalized()
	for _, h := range headers {
		if err := n.add(h); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (n *Normalized) add(headers interface{}) error {
	switch v := headers.(type) {
	case nil:
		return nil
	case *Normalized:
		return n.addLines(v.pairs())
	case Lines:
		return n.addLines(v)
	case []Line:
		return n.addLines(v)
	case Line:
		return n.addLines(Lines{v})
	case http.Header:
		return n.addLines(sortedLines(map[string][]string(v)))
	case map[string][]string:
		return n.addLines(sortedLines(v))
	case map[string]string:
		return n.addLines(sortedLines(v))
	case map[string]interface{}:
		return n.addLines(sortedLines(v))
	case []string:
		for _, raw := range v {
			if line, ok := parseRaw(raw); ok {
				if err := n.put(line.Name, line.Value); err != nil {
					return err
				}
			}
		}
		return nil
	case []interface{}:
		for _, item := range v {
			if raw, ok := item.(string); ok {
				if line, ok := parseRaw(raw); ok {
					if err := n.put(line.Name, line.Value); err != nil {
						return err
					}
				}
				continue
			}
			if !isHeaderContainer(item) {
				continue
			}
			if err := n.add(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return e.NewInvalidArgument("unsupported headers type %T", headers)
	}
}

func isHeaderContainer(item interface{}) bool {
	switch item.(type) {
	case Line, Lines, []Line, *Normalized, http.Header,
		map[string][]string, map[string]string, map[string]interface{}:
		return true
	default:
		return false
	}
}

func (n *Normalized) addLines(lines []Line) error {
	for _, line := range lines {
		if err := n.put(line.Name, line.Value); err != nil {
			return err
		}
	}
	return nil
}

func (n *Normalized) put(name string, value interface{}) error {
	var values []interface{}
	switch v := value.(type) {
	case []interface{}:
		values = v
	case []string:
		values = make([]interface{}, len(v))
		for i := range v {
			values[i] = v[i]
		}
	default:
		values = []interface{}{v}
	}

	trimmed, err := TrimValues(values)
	if err != nil {
		return err
	}

	name = NormalizeName(name)

	if name == SetCookie {
		if !n.headers.Contains(name) {
			n.headers.Put(name, "")
		}
		for _, cookieLine := range trimmed {
			n.cookies.Put(cookieName(cookieLine), cookieLine)
		}
		return nil
	}

	joined := strings.Join(trimmed, ", ")
	existing, ok := n.headers.Get(name)
	if ok && joined == "" {
		return nil
	}
	if existing != "" {
		joined = existing + ", " + joined
	}
	n.headers.Put(name, joined)
	return nil
}

func cookieName(line string) string {
	name, _, _ := strings.Cut(line, "=")
	return strings.Trim(strings.ToLower(name), cutset)
}

// parseRaw 解析 "Name: Value" 形式的原始行，没有冒号的行被忽略
func parseRaw(raw string) (Line, bool) {
	name, value, ok := strings.Cut(raw, ":")
	if !ok {
		return Line{}, false
	}
	return Line{Name: name, Value: value}, true
}

func sortedLines[V any](m map[string]V) Lines {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make(Lines, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, Line{Name: k, Value: m[k]})
	}
	return lines
}

func (n *Normalized) pairs() Lines {
	lines := make(Lines, 0, n.headers.Size())
	n.headers.Range(func(name string, value string) bool {
		if name == SetCookie {
			lines = append(lines, Line{Name: name, Value: n.Cookies()})
		} else {
			lines = append(lines, Line{Name: name, Value: value})
		}
		return true
	})
	return lines
}

// Names 按首次出现的顺序返回头部名称
func (n *Normalized) Names() []string {
	return n.headers.Keys()
}

func (n *Normalized) Len() int {
	return n.headers.Size()
}

func (n *Normalized) Has(name string) bool {
	return n.headers.Contains(NormalizeName(name))
}

// Get 返回合并后的头部值，Set-Cookie 请使用 Cookies
func (n *Normalized) Get(name string) (string, bool) {
	name = NormalizeName(name)
	if name == SetCookie {
		return "", false
	}
	return n.headers.Get(name)
}

// Cookies 按 cookie 首次出现的顺序返回 Set-Cookie 的值
func (n *Normalized) Cookies() []string {
	return n.cookies.Values()
}

// Cookie 按 cookie 名(大小写不敏感)获取 Set-Cookie 的值
func (n *Normalized) Cookie(name string) (string, bool) {
	return n.cookies.Get(strings.Trim(strings.ToLower(name), cutset))
}

// Range 依次回调每一行，每个 Set-Cookie 单独回调一次
func (n *Normalized) Range(fn func(name, value string) bool) {
	n.headers.Range(func(name string, value string) bool {
		if name != SetCookie {
			return fn(name, value)
		}
		for _, cookie := range n.cookies.Values() {
			if !fn(name, cookie) {
				return false
			}
		}
		return true
	})
}

// Lines 返回 "Name: Value" 形式的头部行
func (n *Normalized) Lines() []string {
	lines := make([]string, 0, n.headers.Size()+n.cookies.Size())
	n.Range(func(name, value string) bool {
		lines = append(lines, name+": "+value)
		return true
	})
	return lines
}

func (n *Normalized) HTTPHeader() http.Header {
	h := make(http.Header, n.headers.Size())
	n.Range(func(name, value string) bool {
		h[name] = append(h[name], value)
		return true
	})
	return h
}

// TrimValues 去掉值中的 CR/LF 与首尾空白，只接受标量或 nil
func TrimValues(values []interface{}) ([]string, error) {
	trimmed := make([]string, len(values))
	for i, value := range values {
		if value != nil && !tools.IsScalar(value) {
			return nil, e.NewInvalidArgument("value is expected to be scalar or null")
		}
		trimmed[i] = strings.Trim(valueReplacer.Replace(tools.ToString(value)), cutset)
	}
	return trimmed, nil
}

// NormalizeName 规范化头部名称，例如 "con TENT- lenGTh" -> "Content-Length"
func NormalizeName(name string) string {
	parts := strings.Split(nameReplacer.Replace(name), "-")
	for i, part := range parts {
		part = strings.ToLower(strings.Trim(part, cutset))
		if part != "" && part[0] >= 'a' && part[0] <= 'z' {
			part = string(part[0]-'a'+'A') + part[1:]
		}
		parts[i] = part
	}
	return strings.Join(parts, "-")
}
