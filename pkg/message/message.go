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

package message

import (
	"net/http"
	"strings"

	"github.com/caiflower/http-utils/pkg/basic"
	"github.com/caiflower/http-utils/pkg/header"
	"github.com/caiflower/http-utils/pkg/stream"
)

const DefaultProtocolVersion = "1.1"

var valueReplacer = strings.NewReplacer("\r", "", "\n", "")

// Message http 消息的只读视图，头部名称大小写不敏感
type Message interface {
	ProtocolVersion() string
	// Headers 返回以原始名称为 key 的头部副本
	Headers() http.Header
	// HeaderLines 按首次设置的顺序返回头部
	HeaderLines() header.Lines
	Header(name string) []string
	HeaderLine(name string) string
	HasHeader(name string) bool
	Body() stream.Stream
}

type headerEntry struct {
	name   string
	values []string
}

// message Response、Request 共用的部分，所有修改都返回副本
type message struct {
	protocol string
	headers  *basic.LinkedHashMap[headerEntry]
	body     stream.Stream
}

func newMessage() message {
	return message{
		protocol: DefaultProtocolVersion,
		headers:  basic.NewLinkHashMap[headerEntry](),
		body:     stream.NewStream(""),
	}
}

func (m message) ProtocolVersion() string {
	return m.protocol
}

func (m message) Headers() http.Header {
	h := make(http.Header, m.headers.Size())
	m.headers.Range(func(_ string, entry headerEntry) bool {
		h[entry.name] = append([]string(nil), entry.values...)
		return true
	})
	return h
}

func (m message) HeaderLines() header.Lines {
	lines := make(header.Lines, 0, m.headers.Size())
	m.headers.Range(func(_ string, entry headerEntry) bool {
		lines = append(lines, header.Line{Name: entry.name, Value: append([]string(nil), entry.values...)})
		return true
	})
	return lines
}

func (m message) Header(name string) []string {
	entry, ok := m.headers.Get(strings.ToLower(name))
	if !ok {
		return []string{}
	}
	return append([]string(nil), entry.values...)
}

func (m message) HeaderLine(name string) string {
	return strings.Join(m.Header(name), ", ")
}

func (m message) HasHeader(name string) bool {
	return m.headers.Contains(strings.ToLower(name))
}

func (m message) Body() stream.Stream {
	return m.body
}

func (m message) cloneHeaders() *basic.LinkedHashMap[headerEntry] {
	headers := basic.NewLinkHashMap[headerEntry]()
	m.headers.Range(func(key string, entry headerEntry) bool {
		headers.Put(key, headerEntry{name: entry.name, values: append([]string(nil), entry.values...)})
		return true
	})
	return headers
}

func cleanValues(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		cleaned = append(cleaned, strings.Trim(valueReplacer.Replace(v), " \t"))
	}
	return cleaned
}

// withHeader 替换已有头部的值，已有头部保持原来的位置
func (m message) withHeader(name string, values []string) message {
	clone := m
	clone.headers = m.cloneHeaders()
	clone.headers.Put(strings.ToLower(name), headerEntry{name: name, values: cleanValues(values)})
	return clone
}

func (m message) withAddedHeader(name string, values []string) message {
	clone := m
	clone.headers = m.cloneHeaders()
	key := strings.ToLower(name)
	entry, ok := clone.headers.Get(key)
	if !ok {
		entry = headerEntry{name: name}
	}
	entry.values = append(entry.values, cleanValues(values)...)
	clone.headers.Put(key, entry)
	return clone
}

func (m message) withoutHeader(name string) message {
	clone := m
	clone.headers = m.cloneHeaders()
	clone.headers.Remove(strings.ToLower(name))
	return clone
}

func (m message) withBody(body stream.Stream) message {
	clone := m
	if body == nil {
		body = stream.NewStream("")
	}
	clone.body = body
	return clone
}

func (m message) withProtocolVersion(version string) message {
	clone := m
	clone.protocol = version
	return clone
}
