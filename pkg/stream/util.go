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
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/caiflower/http-utils/pkg/e"
)

const copyChunkSize = 8192

var modePattern = regexp.MustCompile(`^[acrwx]+[befht+\d]*$`)

// ValidateMode 校验 fopen 风格的模式串，只看前 15 个字符
func ValidateMode(mode string) (string, error) {
	if len(mode) > 15 {
		mode = mode[:15]
	}
	if !modePattern.MatchString(mode) {
		return "", e.NewInvalidArgument("invalid fopen mode: %s", mode)
	}
	return mode, nil
}

func ModeAllowsReadWrite(mode string) (bool, error) {
	mode, err := ValidateMode(mode)
	if err != nil {
		return false, err
	}
	return strings.Contains(mode, "+"), nil
}

func ModeAllowsReadOnly(mode string) (bool, error) {
	mode, err := ValidateMode(mode)
	if err != nil {
		return false, err
	}
	return mode[0] == 'r' && !strings.Contains(mode, "+"), nil
}

func ModeAllowsWriteOnly(mode string) (bool, error) {
	mode, err := ValidateMode(mode)
	if err != nil {
		return false, err
	}
	return strings.ContainsAny(mode[:1], "acwx") && !strings.Contains(mode, "+"), nil
}

func ModeAllowsRead(mode string) (bool, error) {
	readOnly, err := ModeAllowsReadOnly(mode)
	if err != nil {
		return false, err
	}
	readWrite, _ := ModeAllowsReadWrite(mode)
	return readOnly || readWrite, nil
}

func ModeAllowsWrite(mode string) (bool, error) {
	writeOnly, err := ModeAllowsWriteOnly(mode)
	if err != nil {
		return false, err
	}
	readWrite, _ := ModeAllowsReadWrite(mode)
	return writeOnly || readWrite, nil
}

func modeFlags(mode string) int {
	readWrite := strings.Contains(mode, "+")
	access := os.O_WRONLY
	if readWrite {
		access = os.O_RDWR
	}

	switch mode[0] {
	case 'r':
		if readWrite {
			return os.O_RDWR
		}
		return os.O_RDONLY
	case 'w':
		return access | os.O_CREATE | os.O_TRUNC
	case 'a':
		return access | os.O_CREATE | os.O_APPEND
	case 'x':
		return access | os.O_CREATE | os.O_EXCL
	default:
		return access | os.O_CREATE
	}
}

// TryOpen 以 fopen 风格的模式打开文件，失败时返回带文件名与模式的错误
func TryOpen(filename, mode string) (*os.File, error) {
	validMode, err := ValidateMode(mode)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filename, modeFlags(validMode), 0o644)
	if err != nil {
		return nil, e.NewApiError(e.Runtime, "Unable to open \""+filename+"\" using mode \""+mode+"\"", err)
	}
	return file, nil
}

// TryGetContents 从 offset 开始读取 length 个字节，length 小于 0 读到末尾，offset 小于 0 从当前位置读
func TryGetContents(reader io.ReadSeeker, length, offset int64) ([]byte, error) {
	if offset >= 0 {
		if _, err := reader.Seek(offset, io.SeekStart); err != nil {
			return nil, e.NewApiError(e.Runtime, "Unable to read stream contents", err)
		}
	}

	var src io.Reader = reader
	if length >= 0 {
		src = io.LimitReader(reader, length)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, e.NewApiError(e.Runtime, "Unable to read stream contents", err)
	}
	return data, nil
}

// GetContents 读取整个流，可seek的流读取前后都会 rewind
func GetContents(s Stream) ([]byte, bool) {
	if s.IsSeekable() {
		if err := s.Rewind(); err != nil {
			return nil, false
		}
		defer s.Rewind()
	}

	if !s.IsReadable() {
		return []byte(s.String()), true
	}

	data, err := s.GetContents()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CopyToStream 从 source 当前位置复制到 destination，maxLength 小于 0 表示复制到末尾
func CopyToStream(source, destination Stream, maxLength int64) (int64, error) {
	if !source.IsReadable() {
		return 0, e.NewRuntimeError("source stream is not readable")
	}
	if !destination.IsWritable() {
		return 0, e.NewRuntimeError("destination stream is not writable")
	}

	if maxLength < 0 {
		maxLength = -1
		if size, ok := source.Size(); ok {
			if pos, err := source.Tell(); err == nil {
				maxLength = size - pos
			}
		}
	}

	var copied int64
	for !source.EOF() && (maxLength < 0 || copied < maxLength) {
		chunkSize := int64(copyChunkSize)
		if maxLength >= 0 && maxLength-copied < chunkSize {
			chunkSize = maxLength - copied
		}

		chunk, err := source.Read(int(chunkSize))
		if err != nil {
			return copied, err
		}
		if len(chunk) == 0 {
			break
		}

		n, err := destination.Write(chunk)
		copied += int64(n)
		if err != nil {
			return copied, err
		}
	}

	return copied, nil
}
