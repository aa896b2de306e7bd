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

package server

import (
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/caiflower/http-utils/pkg/message"
	"github.com/caiflower/http-utils/pkg/query"
	"github.com/caiflower/http-utils/pkg/stream"
	"github.com/caiflower/http-utils/pkg/uri"
)

// DefaultMaxMemory 解析 multipart 表单时保存在内存中的最大字节数
const DefaultMaxMemory = 32 << 20

// Globals 创建 ServerRequest 所需的全部输入，Server 使用 CGI 风格的变量名
type Globals struct {
	Server     map[string]string
	Headers    http.Header
	Cookies    map[string]string
	Query      map[string]interface{}
	ParsedBody interface{}
	Files      map[string]interface{}
	Body       stream.Stream
}

// CreateURIFromParams 由 HTTPS、HTTP_HOST、SERVER_NAME、SERVER_ADDR、SERVER_PORT、REQUEST_URI、QUERY_STRING 组装 url
func CreateURIFromParams(params map[string]string) *url.URL {
	u := &url.URL{Scheme: "http"}
	if https := params["HTTPS"]; https != "" && https != "off" {
		u.Scheme = "https"
	}

	var host, port string
	if httpHost := params["HTTP_HOST"]; httpHost != "" {
		host, port, _ = strings.Cut(httpHost, ":")
	} else if serverName := params["SERVER_NAME"]; serverName != "" {
		host = serverName
	} else if serverAddr := params["SERVER_ADDR"]; serverAddr != "" {
		host = serverAddr
	} else {
		host = "localhost"
	}

	if port == "" {
		port = params["SERVER_PORT"]
	}
	if p, err := strconv.Atoi(port); err != nil || p == uri.DefaultPorts[u.Scheme] {
		port = ""
	}
	u.Host = host
	if port != "" {
		u.Host = net.JoinHostPort(host, port)
	}

	hasQuery := false
	if requestURI, ok := params["REQUEST_URI"]; ok {
		path, rawQuery, found := strings.Cut(requestURI, "?")
		u.Path = uri.RawURLDecode(path)
		if path != u.Path {
			u.RawPath = path
		}
		if found {
			hasQuery = true
			u.RawQuery = rawQuery
		}
	}
	if !hasQuery {
		u.RawQuery = params["QUERY_STRING"]
	}

	return u
}

// CreateServerRequest 根据 Globals 创建 ServerRequest
func CreateServerRequest(g *Globals) (*message.ServerRequest, error) {
	method := g.Server["REQUEST_METHOD"]
	if method == "" {
		method = http.MethodGet
	}

	r := message.NewServerRequest(method, CreateURIFromParams(g.Server), g.Server)

	names := make([]string, 0, len(g.Headers))
	for name := range g.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r = r.WithHeader(name, g.Headers[name]...)
	}

	protocol := message.DefaultProtocolVersion
	if serverProtocol := g.Server["SERVER_PROTOCOL"]; len(serverProtocol) > 5 {
		protocol = serverProtocol[5:]
	}

	files, err := NormalizeFiles(g.Files)
	if err != nil {
		return nil, err
	}

	r = r.WithProtocolVersion(protocol).
		WithCookieParams(g.Cookies).
		WithQueryParams(g.Query).
		WithParsedBody(g.ParsedBody).
		WithUploadedFiles(files)
	if g.Body != nil {
		r = r.WithBody(g.Body)
	}
	return r, nil
}

// FromHTTPRequest 将 net/http 的请求转换为 ServerRequest，表单与 multipart 上传会被解析
func FromHTTPRequest(req *http.Request, maxMemory int64) (*message.ServerRequest, error) {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}

	params := map[string]string{
		"REQUEST_METHOD":  req.Method,
		"REQUEST_URI":     req.URL.RequestURI(),
		"SERVER_PROTOCOL": req.Proto,
		"HTTP_HOST":       req.Host,
		"QUERY_STRING":    req.URL.RawQuery,
	}
	if req.TLS != nil {
		params["HTTPS"] = "on"
	}
	if host, port, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		params["REMOTE_ADDR"], params["REMOTE_PORT"] = host, port
	}

	cookies := make(map[string]string)
	for _, c := range req.Cookies() {
		cookies[c.Name] = c.Value
	}

	g := &Globals{
		Server:  params,
		Headers: req.Header,
		Cookies: cookies,
		Query:   query.Parse(req.URL.RawQuery, query.DefaultEncoding),
	}

	mediaType, _, _ := strings.Cut(strings.ToLower(req.Header.Get("Content-Type")), ";")
	switch strings.TrimSpace(mediaType) {
	case "multipart/form-data":
		if err := req.ParseMultipartForm(maxMemory); err != nil {
			return nil, err
		}
		g.ParsedBody = formValues(req.PostForm)
		files := make(map[string]interface{}, len(req.MultipartForm.File))
		for field, headers := range req.MultipartForm.File {
			if len(headers) == 1 {
				files[field] = headers[0]
				continue
			}
			list := make(map[string]interface{}, len(headers))
			for i, fh := range headers {
				list[strconv.Itoa(i)] = fh
			}
			files[field] = list
		}
		g.Files = files
	case "application/x-www-form-urlencoded":
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		g.ParsedBody = formValues(req.PostForm)
	default:
		if req.Body != nil && req.Body != http.NoBody {
			g.Body = stream.NewReaderStream(req.Body, req.ContentLength)
		}
	}

	return CreateServerRequest(g)
}

func formValues(form url.Values) map[string]interface{} {
	values := make(map[string]interface{}, len(form))
	for key, v := range form {
		if len(v) == 1 {
			values[key] = v[0]
			continue
		}
		list := make([]interface{}, len(v))
		for i := range v {
			list[i] = v[i]
		}
		values[key] = list
	}
	return values
}
