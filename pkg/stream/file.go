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
	"os"

	"github.com/caiflower/http-utils/pkg/e"
)

type fileStream struct {
	file     *os.File
	readable bool
	writable bool
	eof      bool
	closed   bool
}

// NewFileStream 包装已打开的文件，读写能力由打开模式决定
func NewFileStream(file *os.File, mode string) (Stream, error) {
	if file == nil {
		return nil, e.NewInvalidArgument("file cannot be nil")
	}
	readable, err := ModeAllowsRead(mode)
	if err != nil {
		return nil, err
	}
	writable, err := ModeAllowsWrite(mode)
	if err != nil {
		return nil, err
	}

	return &fileStream{file: file, readable: readable, writable: writable}, nil
}

// OpenFileStream 以 fopen 风格的 mode 打开文件
func OpenFileStream(filename, mode string) (Stream, error) {
	file, err := TryOpen(filename, mode)
	if err != nil {
		return nil, err
	}
	return NewFileStream(file, mode)
}

func (s *fileStream) IsReadable() bool {
	return !s.closed && s.readable
}

func (s *fileStream) IsSeekable() bool {
	return !s.closed
}

func (s *fileStream) IsWritable() bool {
	return !s.closed && s.writable
}

func (s *fileStream) Size() (int64, bool) {
	if s.closed {
		return 0, false
	}
	stat, err := s.file.Stat()
	if err != nil {
		return 0, false
	}
	return stat.Size(), true
}

func (s *fileStream) Tell() (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.file.Seek(0, io.SeekCurrent)
}

func (s *fileStream) Seek(offset int64) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		return e.NewApiError(e.Runtime, "unable to seek to stream position", err)
	}
	s.eof = false
	return nil
}

func (s *fileStream) Rewind() error {
	return s.Seek(0)
}

func (s *fileStream) Read(n int) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if !s.readable {
		return nil, ErrNotReadable
	}
	if n < 0 {
		return nil, e.NewInvalidArgument("length parameter cannot be negative")
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(s.file, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.eof = true
		err = nil
	}
	if err != nil {
		return nil, e.NewApiError(e.Runtime, "unable to read from stream", err)
	}

	if !s.eof {
		if pos, tellErr := s.Tell(); tellErr == nil {
			if size, ok := s.Size(); ok && pos >= size {
				s.eof = true
			}
		}
	}

	return buf[:read], nil
}

func (s *fileStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if !s.writable {
		return 0, ErrNotWritable
	}
	n, err := s.file.Write(p)
	if err != nil {
		return n, e.NewApiError(e.Runtime, "unable to write to stream", err)
	}
	return n, nil
}

func (s *fileStream) EOF() bool {
	if s.closed || s.eof {
		return true
	}
	pos, err := s.Tell()
	if err != nil {
		return true
	}
	size, ok := s.Size()
	return ok && pos >= size
}

func (s *fileStream) GetContents() ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if !s.readable {
		return nil, ErrNotReadable
	}
	data, err := io.ReadAll(s.file)
	if err != nil {
		return nil, e.NewApiError(e.Runtime, "unable to read stream contents", err)
	}
	s.eof = true
	return data, nil
}

func (s *fileStream) String() string {
	if s.closed || s.Rewind() != nil {
		return ""
	}
	data, err := s.GetContents()
	if err != nil {
		return ""
	}
	return string(data)
}

func (s *fileStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}
