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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/caiflower/http-utils/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStream(t *testing.T) {
	s := NewStream("abcdefghij")
	size, ok := s.Size()
	assert.True(t, ok)
	assert.Equal(t, int64(10), size)
	assert.True(t, s.IsReadable())
	assert.True(t, s.IsSeekable())
	assert.True(t, s.IsWritable())

	chunk, err := s.Read(4)
	assert.Nil(t, err)
	assert.Equal(t, "abcd", string(chunk))
	assert.False(t, s.EOF())

	rest, err := s.GetContents()
	assert.Nil(t, err)
	assert.Equal(t, "efghij", string(rest))
	assert.True(t, s.EOF())

	chunk, err = s.Read(4)
	assert.Nil(t, err)
	assert.Empty(t, chunk)

	assert.Nil(t, s.Seek(8))
	chunk, _ = s.Read(100)
	assert.Equal(t, "ij", string(chunk))

	assert.Equal(t, "abcdefghij", s.String())

	assert.Nil(t, s.Rewind())
	n, err := s.Write([]byte("XY"))
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "XYcdefghij", s.String())

	assert.Nil(t, s.Seek(9))
	_, _ = s.Write([]byte("JKL"))
	assert.Equal(t, "XYcdefghiJKL", s.String())

	_, err = s.Read(-1)
	assert.True(t, e.IsErrorCode(err, e.InvalidArgument))

	assert.Nil(t, s.Close())
	assert.False(t, s.IsReadable())
	_, ok = s.Size()
	assert.False(t, ok)
	_, err = s.Read(1)
	assert.Equal(t, ErrClosed, err)
}

func TestBytesStreamCopiesInput(t *testing.T) {
	input := []byte("hello")
	s := NewBytesStream(input)
	input[0] = 'j'
	assert.Equal(t, "hello", s.String())
}

func TestReaderStream(t *testing.T) {
	s := NewReaderStream(strings.NewReader("Hello World!"), 12)
	assert.False(t, s.IsSeekable())
	assert.False(t, s.IsWritable())
	assert.Equal(t, ErrNotSeekable, s.Seek(0))
	assert.Equal(t, ErrNotSeekable, s.Rewind())

	size, ok := s.Size()
	assert.True(t, ok)
	assert.Equal(t, int64(12), size)

	chunk, err := s.Read(5)
	assert.Nil(t, err)
	assert.Equal(t, "Hello", string(chunk))
	assert.False(t, s.EOF())

	chunk, err = s.Read(100)
	assert.Nil(t, err)
	assert.Equal(t, " World!", string(chunk))
	assert.True(t, s.EOF())

	pos, _ := s.Tell()
	assert.Equal(t, int64(12), pos)

	unknown := NewReaderStream(strings.NewReader("x"), -1)
	_, ok = unknown.Size()
	assert.False(t, ok)
	assert.Equal(t, "x", unknown.String())
	assert.True(t, unknown.EOF())
}

func TestFileStream(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "stream.txt")

	s, err := OpenFileStream(filename, "w+")
	require.Nil(t, err)
	defer s.Close()

	assert.True(t, s.IsReadable())
	assert.True(t, s.IsWritable())
	_, err = s.Write([]byte("abcdefghijklmnopqrstuvwxyz"))
	assert.Nil(t, err)

	size, ok := s.Size()
	assert.True(t, ok)
	assert.Equal(t, int64(26), size)
	assert.True(t, s.EOF())

	assert.Nil(t, s.Seek(20))
	assert.False(t, s.EOF())
	chunk, err := s.Read(5)
	assert.Nil(t, err)
	assert.Equal(t, "uvwxy", string(chunk))
	chunk, _ = s.Read(5)
	assert.Equal(t, "z", string(chunk))
	assert.True(t, s.EOF())

	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz", s.String())

	readOnly, err := OpenFileStream(filename, "rb")
	require.Nil(t, err)
	defer readOnly.Close()
	assert.False(t, readOnly.IsWritable())
	_, err = readOnly.Write([]byte("x"))
	assert.Equal(t, ErrNotWritable, err)

	writeOnly, err := OpenFileStream(filepath.Join(t.TempDir(), "w.txt"), "w")
	require.Nil(t, err)
	defer writeOnly.Close()
	assert.False(t, writeOnly.IsReadable())
	_, err = writeOnly.Read(1)
	assert.Equal(t, ErrNotReadable, err)
}

func TestModes(t *testing.T) {
	tests := []struct {
		mode      string
		readWrite bool
		readOnly  bool
		writeOnly bool
	}{
		{"r", false, true, false},
		{"rb", false, true, false},
		{"r+", true, false, false},
		{"w", false, false, true},
		{"w+b", true, false, false},
		{"a", false, false, true},
		{"x+", true, false, false},
		{"c", false, false, true},
	}

	for _, tt := range tests {
		v, err := ModeAllowsReadWrite(tt.mode)
		assert.Nil(t, err)
		assert.Equal(t, tt.readWrite, v, tt.mode)

		v, _ = ModeAllowsReadOnly(tt.mode)
		assert.Equal(t, tt.readOnly, v, tt.mode)

		v, _ = ModeAllowsWriteOnly(tt.mode)
		assert.Equal(t, tt.writeOnly, v, tt.mode)

		v, _ = ModeAllowsRead(tt.mode)
		assert.Equal(t, tt.readOnly || tt.readWrite, v, tt.mode)

		v, _ = ModeAllowsWrite(tt.mode)
		assert.Equal(t, tt.writeOnly || tt.readWrite, v, tt.mode)
	}

	for _, mode := range []string{"", "foo", "+r", "b"} {
		_, err := ValidateMode(mode)
		assert.True(t, e.IsErrorCode(err, e.InvalidArgument), mode)
	}

	mode, err := ValidateMode("rb+aaaaaaaaaaaaaaaaaaaaaaa")
	assert.NotNil(t, err)
	assert.Equal(t, "", mode)
}

func TestTryOpen(t *testing.T) {
	_, err := TryOpen(filepath.Join(t.TempDir(), "missing", "file.txt"), "r")
	assert.NotNil(t, err)
	assert.True(t, e.IsErrorCode(err, e.Runtime))
	assert.Contains(t, err.Error(), "using mode \"r\"")

	_, err = TryOpen("whatever", "foo")
	assert.True(t, e.IsErrorCode(err, e.InvalidArgument))

	filename := filepath.Join(t.TempDir(), "x.txt")
	file, err := TryOpen(filename, "x")
	require.Nil(t, err)
	file.Close()
	_, err = TryOpen(filename, "x")
	assert.NotNil(t, err)
}

func TestTryGetContents(t *testing.T) {
	reader := bytes.NewReader([]byte("abcdefghij"))

	data, err := TryGetContents(reader, 3, 2)
	assert.Nil(t, err)
	assert.Equal(t, "cde", string(data))

	data, err = TryGetContents(reader, -1, -1)
	assert.Nil(t, err)
	assert.Equal(t, "fghij", string(data))

	data, err = TryGetContents(reader, -1, 0)
	assert.Nil(t, err)
	assert.Equal(t, "abcdefghij", string(data))

	file, err := os.Open(filepath.Join(t.TempDir()))
	require.Nil(t, err)
	defer file.Close()
	_, err = TryGetContents(file, -1, -1)
	assert.True(t, e.IsErrorCode(err, e.Runtime))
}

func TestGetContents(t *testing.T) {
	s := NewStream("some content")
	_, _ = s.Read(5)

	data, ok := GetContents(s)
	assert.True(t, ok)
	assert.Equal(t, "some content", string(data))

	pos, _ := s.Tell()
	assert.Equal(t, int64(0), pos)

	broken := NewReaderStream(iotest.ErrReader(errors.New("boom")), -1)
	_, ok = GetContents(broken)
	assert.False(t, ok)
}

func TestCopyToStream(t *testing.T) {
	content := strings.Repeat("0123456789", 2000)
	source := NewStream(content)
	destination := NewStream("")

	copied, err := CopyToStream(source, destination, -1)
	assert.Nil(t, err)
	assert.Equal(t, int64(len(content)), copied)
	assert.Equal(t, content, destination.String())

	assert.Nil(t, source.Seek(5))
	partial := NewStream("")
	copied, err = CopyToStream(source, partial, 10)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), copied)
	assert.Equal(t, "5678901234", partial.String())

	readerDestination := NewReaderStream(strings.NewReader(""), 0)
	_, err = CopyToStream(source, readerDestination, -1)
	assert.True(t, e.IsErrorCode(err, e.Runtime))

	unknown := NewReaderStream(strings.NewReader("streamed"), -1)
	out := NewStream("")
	copied, err = CopyToStream(unknown, out, -1)
	assert.Nil(t, err)
	assert.Equal(t, int64(8), copied)
	assert.Equal(t, "streamed", out.String())
}
