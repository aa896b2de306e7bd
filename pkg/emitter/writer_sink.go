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
	"bufio"
	"io"
	"strings"

	"github.com/caiflower/http-utils/pkg/e"
)

var HeadersCommittedErr = e.NewRuntimeError("headers have already been written")

// WriterSink 以 HTTP/1.1 报文格式写到 io.Writer，例如 CGI 场景下的 stdout。
// 头部在收到状态行之前先缓存，状态行在最前面写出
type WriterSink struct {
	w        *bufio.Writer
	headers  []string
	sent     bool
	written  bool
	location string
	err      error
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w)}
}

func (s *WriterSink) SendHeaderLine(line string, replace bool, statusCode int) error {
	if s.sent {
		return HeadersCommittedErr
	}

	if isStatusLine(line) {
		s.sent = true
		s.location = callerLocation()
		s.writeString(line + "\r\n")
		for _, h := range s.headers {
			s.writeString(h + "\r\n")
		}
		s.writeString("\r\n")
		s.headers = nil
		return s.err
	}

	name, value := splitHeaderLine(line)
	if replace {
		kept := s.headers[:0]
		for _, h := range s.headers {
			if existing, _ := splitHeaderLine(h); !strings.EqualFold(existing, name) {
				kept = append(kept, h)
			}
		}
		s.headers = kept
	}
	s.headers = append(s.headers, name+": "+value)
	return nil
}

func (s *WriterSink) writeString(str string) {
	if s.err == nil {
		_, s.err = s.w.WriteString(str)
	}
}

func (s *WriterSink) WriteBytes(p []byte) error {
	if !s.sent {
		return e.NewRuntimeError("status line must be sent before the body")
	}
	s.written = true
	if s.err == nil {
		_, s.err = s.w.Write(p)
	}
	return s.err
}

func (s *WriterSink) Flush() {
	if s.err == nil {
		s.err = s.w.Flush()
	}
}

// IsConnectionAlive 写出失败后认为对端已断开
func (s *WriterSink) IsConnectionAlive() bool {
	return s.err == nil
}

func (s *WriterSink) OutputStarted() bool {
	return s.written
}

func (s *WriterSink) HeadersSent() (bool, string) {
	return s.sent, s.location
}

// Err 返回第一次写出失败的错误
func (s *WriterSink) Err() error {
	return s.err
}
