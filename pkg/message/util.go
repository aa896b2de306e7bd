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
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/caiflower/http-utils/pkg/cookie"
	"github.com/caiflower/http-utils/pkg/e"
	"github.com/caiflower/http-utils/pkg/logger"
	"github.com/caiflower/http-utils/pkg/mime"
	"github.com/caiflower/http-utils/pkg/stream"
	"github.com/caiflower/http-utils/pkg/tools"
)

var (
	InvalidContentErr     = e.NewRuntimeError("invalid message content")
	UnknownContentTypeErr = e.NewRuntimeError("could not determine content type")
)

// HeaderSetter 可以设置头部的消息，用于保持 Set* 辅助函数的返回类型
type HeaderSetter[T any] interface {
	Message
	WithHeader(name string, values ...string) T
}

// GetContents 读取完整的消息体，可seek的 body 读取前后都会 rewind
func GetContents(m Message) (string, error) {
	content, ok := stream.GetContents(m.Body())
	if !ok {
		return "", InvalidContentErr
	}
	return string(content), nil
}

func DecodeJSON(m Message, v interface{}) error {
	content, err := GetContents(m)
	if err != nil {
		return err
	}
	return tools.Unmarshal([]byte(content), v)
}

func DecodeXML(m Message, v interface{}) error {
	content, err := GetContents(m)
	if err != nil {
		return err
	}
	return xml.Unmarshal([]byte(content), v)
}

// ToString 将消息序列化为 http/1.x 文本格式，appendBody 为 true 时追加消息体
func ToString(m Message, appendBody bool) (string, error) {
	var msg strings.Builder

	switch v := m.(type) {
	case *ServerRequest:
		writeRequestLine(&msg, &v.Request)
	case *Request:
		writeRequestLine(&msg, v)
	case *Response:
		fmt.Fprintf(&msg, "HTTP/%s %d %s", v.ProtocolVersion(), v.StatusCode(), v.ReasonPhrase())
	}

	for _, line := range m.HeaderLines() {
		fmt.Fprintf(&msg, "\r\n%s: %s", line.Name, strings.Join(line.Value.([]string), ", "))
	}

	if appendBody {
		content, err := GetContents(m)
		if err != nil {
			return "", err
		}
		msg.WriteString("\r\n\r\n")
		msg.WriteString(content)
	}

	return msg.String(), nil
}

func writeRequestLine(msg *strings.Builder, r *Request) {
	fmt.Fprintf(msg, "%s %s HTTP/%s", r.Method(), r.RequestTarget(), r.ProtocolVersion())
	if !r.HasHeader("host") {
		fmt.Fprintf(msg, "\r\nHost: %s", r.uri.Hostname())
	}
}

// Decompress 按 Content-Encoding 解压消息体
func Decompress(m Message) ([]byte, error) {
	content, err := GetContents(m)
	if err != nil {
		return nil, err
	}
	data := []byte(content)

	var decode func([]byte) ([]byte, error)
	encoding := strings.ToLower(m.HeaderLine("Content-Encoding"))
	switch encoding {
	case "", "identity":
		return data, nil
	case "gzip", "x-gzip":
		decode = tools.Gunzip
	case "compress":
		decode = tools.UnZlib
	case "deflate":
		decode = tools.Inflate
	case "br":
		decode = tools.UnBrotli
	case "zstd":
		decode = tools.UnZstd
	default:
		return nil, e.NewRuntimeError("unknown content-encoding value: %s", encoding)
	}

	decoded, err := decode(data)
	if err != nil {
		logger.Warn("decompress %s message body failed. Error: %s", encoding, err.Error())
		return nil, e.NewApiError(e.Runtime, fmt.Sprintf("cannot decompress %s compressed message body", encoding), err)
	}
	return decoded, nil
}

// SetContentLengthHeader 没有 Content-Length 且 body 长度已知并大于 0 时添加
func SetContentLengthHeader[T HeaderSetter[T]](m T) T {
	size, ok := m.Body().Size()
	if !m.HasHeader("Content-Length") && ok && size > 0 {
		return m.WithHeader("Content-Length", fmt.Sprintf("%d", size))
	}
	return m
}

// SetContentTypeHeader 依次按扩展名、文件名、内容判断 Content-Type
func SetContentTypeHeader[T HeaderSetter[T]](m T, filename, extension string) (T, error) {
	mimeType, ok := mime.FromExtension(strings.Trim(extension, ".\t\n\r\x00\x0B "))
	if !ok {
		mimeType, ok = mime.FromFilename(filename)
	}
	if !ok {
		content, err := GetContents(m)
		if err != nil {
			return m, err
		}
		mimeType, ok = mime.FromContent([]byte(content))
	}
	if !ok {
		return m, UnknownContentTypeErr
	}

	return m.WithHeader("Content-Type", mimeType), nil
}

// WithCookie 追加一个 Set-Cookie 头部
func WithCookie(r *Response, c *cookie.Cookie) (*Response, error) {
	value, err := c.Build()
	if err != nil {
		return r, err
	}
	return r.WithAddedHeader("Set-Cookie", value), nil
}
