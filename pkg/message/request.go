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
	"net/url"
	"strings"

	"github.com/caiflower/http-utils/pkg/basic"
	"github.com/caiflower/http-utils/pkg/stream"
)

// Request 不可变的 http 请求，With* 方法返回修改后的副本
type Request struct {
	message
	method string
	uri    *url.URL
	target string
}

// NewRequest 创建请求，uri 中的 host 会写入 Host 头部
func NewRequest(method string, u *url.URL) *Request {
	r := &Request{message: newMessage(), method: method, uri: &url.URL{}}
	if u != nil {
		r.uri = cloneURL(u)
	}
	r.updateHostFromURI()
	return r
}

func cloneURL(u *url.URL) *url.URL {
	clone := *u
	return &clone
}

func (r *Request) updateHostFromURI() {
	host := r.uri.Host
	if host == "" {
		return
	}

	// Host 需要排在第一位
	headers := basic.NewLinkHashMap[headerEntry]()
	headers.Put("host", headerEntry{name: "Host", values: []string{host}})
	r.headers.Range(func(key string, entry headerEntry) bool {
		if key != "host" {
			headers.Put(key, headerEntry{name: entry.name, values: append([]string(nil), entry.values...)})
		}
		return true
	})
	r.message.headers = headers
}

func (r *Request) Method() string {
	return r.method
}

func (r *Request) URI() *url.URL {
	return cloneURL(r.uri)
}

// RequestTarget 未显式设置时由 uri 的 path 与 query 组成
func (r *Request) RequestTarget() string {
	if r.target != "" {
		return r.target
	}

	target := r.uri.EscapedPath()
	if target == "" {
		target = "/"
	}
	if r.uri.RawQuery != "" {
		target += "?" + r.uri.RawQuery
	}
	return target
}

func (r *Request) WithRequestTarget(target string) *Request {
	clone := *r
	clone.target = strings.TrimSpace(target)
	return &clone
}

func (r *Request) WithMethod(method string) *Request {
	clone := *r
	clone.method = method
	return &clone
}

// WithURI preserveHost 为 true 且已有 Host 头部时不更新 Host
func (r *Request) WithURI(u *url.URL, preserveHost bool) *Request {
	clone := *r
	clone.uri = cloneURL(u)
	if !preserveHost || !r.HasHeader("Host") {
		clone.updateHostFromURI()
	}
	return &clone
}

func (r *Request) WithHeader(name string, values ...string) *Request {
	clone := *r
	clone.message = r.withHeader(name, values)
	return &clone
}

func (r *Request) WithAddedHeader(name string, values ...string) *Request {
	clone := *r
	clone.message = r.withAddedHeader(name, values)
	return &clone
}

func (r *Request) WithoutHeader(name string) *Request {
	clone := *r
	clone.message = r.withoutHeader(name)
	return &clone
}

func (r *Request) WithBody(body stream.Stream) *Request {
	clone := *r
	clone.message = r.withBody(body)
	return &clone
}

func (r *Request) WithProtocolVersion(version string) *Request {
	clone := *r
	clone.message = r.withProtocolVersion(version)
	return &clone
}
