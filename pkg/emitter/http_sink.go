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

package emitter

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

const packagePrefix = "github.com/caiflower/http-utils/pkg/emitter."

// callerLocation 返回调用链上第一个 emitter 包之外(包括本包测试)的位置
func callerLocation() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, packagePrefix) || strings.HasSuffix(frame.File, "_test.go") {
			return fmt.Sprintf("file %s on line %d", frame.File, frame.Line)
		}
		if !more {
			return "unknown location"
		}
	}
}

func splitHeaderLine(line string) (name, value string) {
	name, value, _ = strings.Cut(line, ":")
	return strings.TrimSpace(name), strings.TrimSpace(value)
}

func isStatusLine(line string) bool {
	return strings.HasPrefix(line, "HTTP/")
}

// ResponseWriter 记录经过它的 WriteHeader / Write，供 HTTPSink 判断是否已经有输出
type ResponseWriter struct {
	http.ResponseWriter
	headerWritten bool
	written       bool
	location      string
}

// TrackResponseWriter w 已经被包装过时直接返回
func TrackResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if tracked, ok := w.(*ResponseWriter); ok {
		return tracked
	}
	return &ResponseWriter{ResponseWriter: w}
}

// Middleware 在进入 handler 之前包装 ResponseWriter，
// handler 中先于 emitter 的输出也能被 OutputState 检测到
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(TrackResponseWriter(w), req)
	})
}

func (w *ResponseWriter) commit() {
	if !w.headerWritten {
		w.headerWritten = true
		w.location = callerLocation()
	}
}

func (w *ResponseWriter) WriteHeader(statusCode int) {
	w.commit()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriter) Write(p []byte) (int, error) {
	w.commit()
	w.written = true
	return w.ResponseWriter.Write(p)
}

func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// HTTPSink 把响应写到 http.ResponseWriter，请求的 context 结束即认为连接断开。
// 只有经过 ResponseWriter 的输出才会被 OutputStarted / HeadersSent 看到，
// 需要检测 handler 中更早的输出时请用 Middleware 或 TrackResponseWriter 先包装
type HTTPSink struct {
	w   *ResponseWriter
	ctx context.Context
}

func NewHTTPSink(w http.ResponseWriter, r *http.Request) *HTTPSink {
	return &HTTPSink{w: TrackResponseWriter(w), ctx: r.Context()}
}

func (s *HTTPSink) SendHeaderLine(line string, replace bool, statusCode int) error {
	if isStatusLine(line) {
		if statusCode == 0 {
			return fmt.Errorf("status line %q without status code", line)
		}
		s.w.WriteHeader(statusCode)
		return nil
	}

	name, value := splitHeaderLine(line)
	if replace {
		s.w.Header().Set(name, value)
	} else {
		s.w.Header().Add(name, value)
	}
	return nil
}

func (s *HTTPSink) WriteBytes(p []byte) error {
	_, err := s.w.Write(p)
	return err
}

func (s *HTTPSink) Flush() {
	s.w.Flush()
}

func (s *HTTPSink) IsConnectionAlive() bool {
	return s.ctx.Err() == nil
}

func (s *HTTPSink) OutputStarted() bool {
	return s.w.written
}

func (s *HTTPSink) HeadersSent() (bool, string) {
	return s.w.headerWritten, s.w.location
}
