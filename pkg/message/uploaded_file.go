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
	"github.com/caiflower/http-utils/pkg/e"
	"github.com/caiflower/http-utils/pkg/stream"
)

// 上传错误码，取值与 php 的 UPLOAD_ERR_* 一致
const (
	UploadErrOK        = 0
	UploadErrIniSize   = 1
	UploadErrFormSize  = 2
	UploadErrPartial   = 3
	UploadErrNoFile    = 4
	UploadErrNoTmpDir  = 6
	UploadErrCantWrite = 7
	UploadErrExtension = 8
)

var (
	UploadFailedErr = e.NewRuntimeError("cannot retrieve stream due to upload error")
	FileMovedErr    = e.NewRuntimeError("cannot retrieve stream after it has already been moved")
)

type UploadedFile struct {
	stream          stream.Stream
	size            int64
	errorCode       int
	clientFilename  string
	clientMediaType string
	moved           bool
}

// NewUploadedFile size 小于 0 表示未知
func NewUploadedFile(s stream.Stream, size int64, errorCode int, clientFilename, clientMediaType string) (*UploadedFile, error) {
	if errorCode < UploadErrOK || errorCode > UploadErrExtension || errorCode == 5 {
		return nil, e.NewInvalidArgument("invalid upload error code: %d", errorCode)
	}
	if s == nil && errorCode == UploadErrOK {
		return nil, e.NewInvalidArgument("uploaded file requires a stream")
	}

	return &UploadedFile{
		stream:          s,
		size:            size,
		errorCode:       errorCode,
		clientFilename:  clientFilename,
		clientMediaType: clientMediaType,
	}, nil
}

func (f *UploadedFile) Stream() (stream.Stream, error) {
	if f.errorCode != UploadErrOK {
		return nil, UploadFailedErr
	}
	if f.moved {
		return nil, FileMovedErr
	}
	return f.stream, nil
}

// MoveTo 将上传内容写入 targetPath，之后不能再获取 stream
func (f *UploadedFile) MoveTo(targetPath string) error {
	s, err := f.Stream()
	if err != nil {
		return err
	}
	if targetPath == "" {
		return e.NewInvalidArgument("invalid path provided for move operation")
	}

	target, err := stream.OpenFileStream(targetPath, "w")
	if err != nil {
		return err
	}
	defer target.Close()

	if s.IsSeekable() {
		if err = s.Rewind(); err != nil {
			return err
		}
	}
	if _, err = stream.CopyToStream(s, target, -1); err != nil {
		return err
	}

	f.moved = true
	return s.Close()
}

func (f *UploadedFile) Size() (int64, bool) {
	return f.size, f.size >= 0
}

func (f *UploadedFile) Error() int {
	return f.errorCode
}

func (f *UploadedFile) ClientFilename() string {
	return f.clientFilename
}

func (f *UploadedFile) ClientMediaType() string {
	return f.clientMediaType
}
