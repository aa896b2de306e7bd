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
	"errors"
	"io"

	"github.com/caiflower/http-utils/pkg/e"
)

type readerStream struct {
	reader io.Reader
	size   int64
	pos    int64
	eof    bool
	closed bool
}

// NewReaderStream 包装只读、不可seek的reader，size 小于 0 表示长度未知
func NewReaderStream(reader io.Reader, size int64) Stream {
	return &readerStream{reader: reader, size: size}
}

func (s *readerStream) IsReadable() bool {
	return !s.closed
}

func (s *readerStream) IsSeekable() bool {
	return false
}

func (s *readerStream) IsWritable() bool {
	return false
}

func (s *readerStream) Size() (int64, bool) {
	if s.closed || s.size < 0 {
		return 0, false
	}
	return s.size, true
}

func (s *readerStream) Tell() (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.pos, nil
}

func (s *readerStream) Seek(int64) error {
	return ErrNotSeekable
}

func (s *readerStream) Rewind() error {
	return ErrNotSeekable
}

func (s *readerStream) Read(n int) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if n < 0 {
		return nil, e.NewInvalidArgument("length parameter cannot be negative")
	}
	if s.eof {
		return []byte{}, nil
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(s.reader, buf)
	s.pos += int64(read)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.eof = true
		err = nil
	}
	if s.size >= 0 && s.pos >= s.size {
		s.eof = true
	}
	if err != nil {
		return buf[:read], err
	}
	return buf[:read], nil
}

func (s *readerStream) Write([]byte) (int, error) {
	return 0, ErrNotWritable
}

func (s *readerStream) EOF() bool {
	return s.closed || s.eof
}

func (s *readerStream) GetContents() ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	data, err := io.ReadAll(s.reader)
	s.pos += int64(len(data))
	s.eof = true
	return data, err
}

func (s *readerStream) String() string {
	data, err := s.GetContents()
	if err != nil {
		return ""
	}
	return string(data)
}

func (s *readerStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if closer, ok := s.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
