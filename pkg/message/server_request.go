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

	"github.com/caiflower/http-utils/pkg/stream"
)

// ServerRequest 服务端收到的请求，附带 server 参数、cookie、query、解析后的 body 与上传文件
type ServerRequest struct {
	Request
	serverParams  map[string]string
	cookieParams  map[string]string
	queryParams   map[string]interface{}
	parsedBody    interface{}
	uploadedFiles map[string]interface{}
	attributes    map[string]interface{}
}

func NewServerRequest(method string, u *url.URL, serverParams map[string]string) *ServerRequest {
	params := make(map[string]string, len(serverParams))
	for k, v := range serverParams {
		params[k] = v
	}

	return &ServerRequest{
		Request:       *NewRequest(method, u),
		serverParams:  params,
		cookieParams:  map[string]string{},
		queryParams:   map[string]interface{}{},
		uploadedFiles: map[string]interface{}{},
		attributes:    map[string]interface{}{},
	}
}

func (r *ServerRequest) ServerParams() map[string]string {
	params := make(map[string]string, len(r.serverParams))
	for k, v := range r.serverParams {
		params[k] = v
	}
	return params
}

func (r *ServerRequest) CookieParams() map[string]string {
	params := make(map[string]string, len(r.cookieParams))
	for k, v := range r.cookieParams {
		params[k] = v
	}
	return params
}

func (r *ServerRequest) QueryParams() map[string]interface{} {
	return copyMap(r.queryParams)
}

func (r *ServerRequest) ParsedBody() interface{} {
	return r.parsedBody
}

// UploadedFiles 值为 *UploadedFile 或嵌套的 map[string]interface{}
func (r *ServerRequest) UploadedFiles() map[string]interface{} {
	return copyMap(r.uploadedFiles)
}

func (r *ServerRequest) Attributes() map[string]interface{} {
	return copyMap(r.attributes)
}

func (r *ServerRequest) Attribute(name string, defaultValue interface{}) interface{} {
	if v, ok := r.attributes[name]; ok {
		return v
	}
	return defaultValue
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	clone := make(map[string]interface{}, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

func (r *ServerRequest) WithCookieParams(cookies map[string]string) *ServerRequest {
	clone := *r
	clone.cookieParams = make(map[string]string, len(cookies))
	for k, v := range cookies {
		clone.cookieParams[k] = v
	}
	return &clone
}

func (r *ServerRequest) WithQueryParams(query map[string]interface{}) *ServerRequest {
	clone := *r
	clone.queryParams = copyMap(query)
	return &clone
}

func (r *ServerRequest) WithParsedBody(data interface{}) *ServerRequest {
	clone := *r
	clone.parsedBody = data
	return &clone
}

func (r *ServerRequest) WithUploadedFiles(files map[string]interface{}) *ServerRequest {
	clone := *r
	clone.uploadedFiles = copyMap(files)
	return &clone
}

func (r *ServerRequest) WithAttribute(name string, value interface{}) *ServerRequest {
	clone := *r
	clone.attributes = copyMap(r.attributes)
	clone.attributes[name] = value
	return &clone
}

func (r *ServerRequest) WithoutAttribute(name string) *ServerRequest {
	clone := *r
	clone.attributes = copyMap(r.attributes)
	delete(clone.attributes, name)
	return &clone
}

func (r *ServerRequest) WithMethod(method string) *ServerRequest {
	clone := *r
	clone.Request = *r.Request.WithMethod(method)
	return &clone
}

func (r *ServerRequest) WithURI(u *url.URL, preserveHost bool) *ServerRequest {
	clone := *r
	clone.Request = *r.Request.WithURI(u, preserveHost)
	return &clone
}

func (r *ServerRequest) WithRequestTarget(target string) *ServerRequest {
	clone := *r
	clone.Request = *r.Request.WithRequestTarget(target)
	return &clone
}

func (r *ServerRequest) WithHeader(name string, values ...string) *ServerRequest {
	clone := *r
	clone.Request = *r.Request.WithHeader(name, values...)
	return &clone
}

func (r *ServerRequest) WithAddedHeader(name string, values ...string) *ServerRequest {
	clone := *r
	clone.Request = *r.Request.WithAddedHeader(name, values...)
	return &clone
}

func (r *ServerRequest) WithoutHeader(name string) *ServerRequest {
	clone := *r
	clone.Request = *r.Request.WithoutHeader(name)
	return &clone
}

func (r *ServerRequest) WithBody(body stream.Stream) *ServerRequest {
	clone := *r
	clone.Request = *r.Request.WithBody(body)
	return &clone
}

func (r *ServerRequest) WithProtocolVersion(version string) *ServerRequest {
	clone := *r
	clone.Request = *r.Request.WithProtocolVersion(version)
	return &clone
}
