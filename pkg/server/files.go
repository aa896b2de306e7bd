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
	"mime/multipart"
	"os"
	"sort"
	"strconv"

	"github.com/caiflower/http-utils/pkg/e"
	"github.com/caiflower/http-utils/pkg/message"
	"github.com/caiflower/http-utils/pkg/stream"
)

var InvalidFileSpecErr = e.NewInvalidArgument("Invalid value in files specification")

// NormalizeFiles 将上传文件的描述统一为 *message.UploadedFile 或其嵌套 map。
// 支持 *message.UploadedFile、*multipart.FileHeader、包含 tmp_name/size/error/name/type 的文件描述以及嵌套 map。
func NormalizeFiles(files map[string]interface{}) (map[string]interface{}, error) {
	normalized := make(map[string]interface{}, len(files))
	for key, value := range files {
		switch v := value.(type) {
		case *message.UploadedFile:
			normalized[key] = v
		case *multipart.FileHeader:
			f, err := fromFileHeader(v)
			if err != nil {
				return nil, err
			}
			normalized[key] = f
		case map[string]interface{}:
			var (
				f   interface{}
				err error
			)
			if _, ok := v["tmp_name"]; ok {
				f, err = CreateUploadedFileFromSpec(v)
			} else {
				f, err = NormalizeFiles(v)
			}
			if err != nil {
				return nil, err
			}
			normalized[key] = f
		default:
			return nil, InvalidFileSpecErr
		}
	}
	return normalized, nil
}

func fromFileHeader(fh *multipart.FileHeader) (*message.UploadedFile, error) {
	file, err := fh.Open()
	if err != nil {
		return message.NewUploadedFile(nil, fh.Size, message.UploadErrCantWrite, fh.Filename, fh.Header.Get("Content-Type"))
	}
	return message.NewUploadedFile(stream.NewReaderStream(file, fh.Size), fh.Size, message.UploadErrOK,
		fh.Filename, fh.Header.Get("Content-Type"))
}

// CreateUploadedFileFromSpec tmp_name 为数组或 map 时返回嵌套的结果
func CreateUploadedFileFromSpec(spec map[string]interface{}) (interface{}, error) {
	if keys, ok := specKeys(spec["tmp_name"]); ok {
		return normalizeNestedFileSpec(spec, keys)
	}

	tmpName, _ := spec["tmp_name"].(string)
	errorCode := toInt(spec["error"])

	var s stream.Stream
	if stat, err := os.Stat(tmpName); err == nil && stat.Mode().IsRegular() {
		if s, err = stream.OpenFileStream(tmpName, "r"); err != nil {
			return nil, err
		}
	} else {
		s = stream.NewStream(tmpName)
	}

	name, _ := spec["name"].(string)
	mediaType, _ := spec["type"].(string)
	return message.NewUploadedFile(s, int64(toInt(spec["size"])), errorCode, name, mediaType)
}

func normalizeNestedFileSpec(files map[string]interface{}, keys []string) (map[string]interface{}, error) {
	normalized := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		spec := make(map[string]interface{}, 5)
		for _, field := range []string{"tmp_name", "size", "error", "name", "type"} {
			spec[field] = specValue(files[field], key)
		}

		f, err := CreateUploadedFileFromSpec(spec)
		if err != nil {
			return nil, err
		}
		normalized[key] = f
	}
	return normalized, nil
}

func specKeys(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys, true
	case []interface{}:
		keys := make([]string, len(v))
		for i := range v {
			keys[i] = strconv.Itoa(i)
		}
		return keys, true
	default:
		return nil, false
	}
}

func specValue(value interface{}, key string) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return v[key]
	case []interface{}:
		i, err := strconv.Atoi(key)
		if err != nil || i >= len(v) {
			return nil
		}
		return v[i]
	default:
		return nil
	}
}

func toInt(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		i, _ := strconv.Atoi(v)
		return i
	default:
		return 0
	}
}
