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

package stream

import (
	"github.com/caiflower/http-utils/pkg/e"
)

// Stream 消息体的字节流抽象，语义参照 PSR-7 StreamInterface
type Stream interface {
	IsReadable() bool
	IsSeekable() bool
	IsWritable() bool
	// Size 返回流的总长度，长度未知时 ok 为 false
	Size() (size int64, ok bool)
	Tell() (int64, error)
	Seek(offset int64) error
	Rewind() error
	// Read 最多读取 n 个字节，到达末尾时返回空切片
	Read(n int) ([]byte, error)
	Write(p []byte) (int, error)
	EOF() bool
	// GetContents 从当前位置读取剩余全部内容
	GetContents() ([]byte, error)
	// String 从头读取全部内容，失败时返回空串
	String() string
	Close() error
}

var (
	ErrNotReadable = e.NewRuntimeError("stream is not readable")
	ErrNotWritable = e.NewRuntimeError("stream is not writable")
	ErrNotSeekable = e.NewRuntimeError("stream is not seekable")
	ErrClosed      = e.NewRuntimeError("stream is closed")
)

type memoryStream struct {
	data   []byte
	pos    int
	closed bool
}

// NewStream 创建可读写、可seek的内存流
func NewStream(content string) Stream {
	return &memoryStream{data: []byte(content)}
}

func NewBytesStream(content []byte) Stream {
	data := make([]byte, len(content))
	copy(data, content)
	return &memoryStream{data: data}
}

func (s *memoryStream) IsReadable() bool {
	return !s.closed
}

func (s *memoryStream) IsSeekable() bool {
	return !s.closed
}

func (s *memoryStream) IsWritable() bool {
	return !s.closed
}

func (s *memoryStream) Size() (int64, bool) {
	if s.closed {
		return 0, false
	}
	return int64(len(s.data)), true
}

func (s *memoryStream) Tell() (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return int64(s.pos), nil
}

func (s *memoryStream) Seek(offset int64) error {
	if s.closed {
		return ErrClosed
	}
	if offset < 0 {
		return e.NewRuntimeError("unable to seek to stream position %d", offset)
	}
	s.pos = int(offset)
	return nil
}

func (s *memoryStream) Rewind() error {
	return s.Seek(0)
}

func (s *memoryStream) Read(n int) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if n < 0 {
		return nil, e.NewInvalidArgument("length parameter cannot be negative")
	}
	if s.pos >= len(s.data) {
		return []byte{}, nil
	}

	end := s.pos + n
	if end > len(s.data) {
		end = len(s.data)
	}
	chunk := make([]byte, end-s.pos)
	copy(chunk, s.data[s.pos:end])
	s.pos = end
	return chunk, nil
}

func (s *memoryStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if end := s.pos + len(p); end > len(s.data) {
		grown := make([]byte, end)
		copy(grown, s.data)
		s.data = grown
	}
	copy(s.data[s.pos:], p)
	s.pos += len(p)
	return len(p), nil
}

func (s *memoryStream) EOF() bool {
	return s.closed || s.pos >= len(s.data)
}

func (s *memoryStream) GetContents() ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.Read(len(s.data))
}

func (s *memoryStream) String() string {
	if s.closed {
		return ""
	}
	return string(s.data)
}

func (s *memoryStream) Close() error {
	s.closed = true
	s.data = nil
	return nil
}
