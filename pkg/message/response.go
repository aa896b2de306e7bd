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

	"github.com/caiflower/http-utils/pkg/stream"
)

// Response 不可变的 http 响应，With* 方法返回修改后的副本
type Response struct {
	message
	status int
	reason string
}

// NewResponse reason 为空时使用标准的状态描述
func NewResponse(status int, reason ...string) *Response {
	r := &Response{message: newMessage()}
	r.status, r.reason = status, reasonPhrase(status, reason...)
	return r
}

func reasonPhrase(status int, reason ...string) string {
	if len(reason) > 0 && reason[0] != "" {
		return reason[0]
	}
	return http.StatusText(status)
}

func (r *Response) StatusCode() int {
	return r.status
}

func (r *Response) ReasonPhrase() string {
	return r.reason
}

func (r *Response) WithStatus(status int, reason ...string) *Response {
	clone := *r
	clone.status, clone.reason = status, reasonPhrase(status, reason...)
	return &clone
}

func (r *Response) WithHeader(name string, values ...string) *Response {
	clone := *r
	clone.message = r.withHeader(name, values)
	return &clone
}

func (r *Response) WithAddedHeader(name string, values ...string) *Response {
	clone := *r
	clone.message = r.withAddedHeader(name, values)
	return &clone
}

func (r *Response) WithoutHeader(name string) *Response {
	clone := *r
	clone.message = r.withoutHeader(name)
	return &clone
}

func (r *Response) WithBody(body stream.Stream) *Response {
	clone := *r
	clone.message = r.withBody(body)
	return &clone
}

func (r *Response) WithProtocolVersion(version string) *Response {
	clone := *r
	clone.message = r.withProtocolVersion(version)
	return &clone
}

// ResponseBuilder 在私有副本上一次性完成多处修改，Build 返回新的 Response
type ResponseBuilder struct {
	response Response
}

func (r *Response) Builder() *ResponseBuilder {
	clone := *r
	clone.message.headers = r.cloneHeaders()
	return &ResponseBuilder{response: clone}
}

func (b *ResponseBuilder) Status(status int, reason ...string) *ResponseBuilder {
	b.response.status, b.response.reason = status, reasonPhrase(status, reason...)
	return b
}

func (b *ResponseBuilder) Header(name string, values ...string) *ResponseBuilder {
	b.response.headers.Put(strings.ToLower(name), headerEntry{name: name, values: cleanValues(values)})
	return b
}

func (b *ResponseBuilder) WithoutHeader(name string) *ResponseBuilder {
	b.response.headers.Remove(strings.ToLower(name))
	return b
}

func (b *ResponseBuilder) Build() *Response {
	built := b.response
	built.message.headers = b.response.cloneHeaders()
	return &built
}
