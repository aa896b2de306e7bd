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

package main

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/caiflower/http-utils/pkg/cookie"
	"github.com/caiflower/http-utils/pkg/e"
	"github.com/caiflower/http-utils/pkg/emitter"
	golocalv1 "github.com/caiflower/http-utils/pkg/golocal/v1"
	"github.com/caiflower/http-utils/pkg/logger"
	"github.com/caiflower/http-utils/pkg/message"
	"github.com/caiflower/http-utils/pkg/mime"
	"github.com/caiflower/http-utils/pkg/server"
	"github.com/caiflower/http-utils/pkg/stream"
	"github.com/caiflower/http-utils/pkg/tools"
)

var rangeRegexp = regexp.MustCompile(`^bytes=(\d+)-(\d*)$`)

type fileHandler struct {
	root       string
	maxMemory  int64
	bufferSize int
	metric     *emitter.Metric
}

func (h *fileHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	defer e.OnError("serve " + req.URL.Path)

	traceID := req.Header.Get(golocalv1.RequestID)
	if traceID == "" {
		traceID = tools.UUID()
	}
	golocalv1.PutTraceID(traceID)
	defer golocalv1.Clean()

	start := time.Now()
	resp := h.handle(req).WithHeader(golocalv1.RequestID, traceID)
	if body := resp.Body(); body != nil {
		defer body.Close()
	}

	opts := []emitter.Option{emitter.WithBufferSize(h.bufferSize)}
	if h.metric != nil {
		opts = append(opts, emitter.WithMetric(h.metric))
	}
	r, err := emitter.New(resp, emitter.NewHTTPSink(w, req), opts...)
	if err == nil {
		err = r.Emit()
	}
	if err != nil {
		logger.Error("%s %s emit failed. Error: %s", req.Method, req.URL.Path, err.Error())
		return
	}
	logger.Info("%s %s %d cost %dms", req.Method, req.URL.Path, r.Response().StatusCode(), time.Since(start).Milliseconds())
}

func (h *fileHandler) handle(req *http.Request) *message.Response {
	sr, err := server.FromHTTPRequest(req, h.maxMemory)
	if err != nil {
		return textResponse(http.StatusBadRequest, err.Error())
	}

	switch sr.Method() {
	case http.MethodGet, http.MethodHead:
		return h.serveFile(sr)
	case http.MethodPost:
		return h.upload(sr)
	default:
		return textResponse(http.StatusMethodNotAllowed, "method not allowed").
			WithHeader("Allow", http.MethodGet, http.MethodHead, http.MethodPost)
	}
}

func (h *fileHandler) resolve(uriPath string) string {
	return filepath.Join(h.root, filepath.FromSlash(path.Clean("/"+uriPath)))
}

func (h *fileHandler) serveFile(req *message.ServerRequest) *message.Response {
	filename := h.resolve(req.URI().Path)
	if info, err := os.Stat(filename); err != nil || info.IsDir() {
		return textResponse(http.StatusNotFound, "not found")
	}

	etag, err := tools.FileETag(filename)
	if err == nil && req.HeaderLine("If-None-Match") == etag {
		return message.NewResponse(http.StatusNotModified).WithHeader("ETag", etag)
	}

	body, err := stream.OpenFileStream(filename, "r")
	if err != nil {
		logger.Warn("open %s failed. Error: %s", filename, err.Error())
		return textResponse(http.StatusNotFound, "not found")
	}

	resp := message.NewResponse(http.StatusOK).
		WithHeader("Accept-Ranges", "bytes").
		WithBody(body)
	if etag != "" {
		resp = resp.WithHeader("ETag", etag)
	}
	if modTime, err := tools.FileModTime(filename); err == nil {
		resp = resp.WithHeader("Last-Modified", modTime.UTC().Format(http.TimeFormat))
	}
	if resp, err = message.SetContentTypeHeader(resp, filename, ""); err != nil {
		resp = resp.WithHeader("Content-Type", "application/octet-stream")
	}

	if start, end, ok := parseRange(req.HeaderLine("Range"), body); ok {
		resp = resp.
			WithStatus(http.StatusPartialContent).
			WithHeader("Content-Range", fmt.Sprintf("bytes %d-%d/*", start, end))
	}
	return resp
}

// parseRange 只支持单个区间 bytes=a-b 或 bytes=a-
func parseRange(value string, body stream.Stream) (start, end int64, ok bool) {
	matches := rangeRegexp.FindStringSubmatch(value)
	if matches == nil {
		return 0, 0, false
	}
	size, known := body.Size()
	if !known {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	end = size - 1
	if matches[2] != "" {
		if end, err = strconv.ParseInt(matches[2], 10, 64); err != nil {
			return 0, 0, false
		}
	}
	return start, end, true
}

// upload 把上传的文件保存到请求路径对应的目录下
func (h *fileHandler) upload(req *message.ServerRequest) *message.Response {
	dir := h.resolve(req.URI().Path)
	if err := tools.Mkdir(dir, 0755); err != nil {
		return textResponse(http.StatusInternalServerError, err.Error())
	}

	saved := make([]string, 0)
	var walk func(files map[string]interface{}) error
	walk = func(files map[string]interface{}) error {
		for _, v := range files {
			switch file := v.(type) {
			case *message.UploadedFile:
				name := filepath.Base(file.ClientFilename())
				if err := file.MoveTo(filepath.Join(dir, name)); err != nil {
					return err
				}
				saved = append(saved, name)
			case map[string]interface{}:
				if err := walk(file); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(req.UploadedFiles()); err != nil {
		return textResponse(http.StatusInternalServerError, err.Error())
	}

	resp := jsonResponse(http.StatusCreated, map[string]interface{}{"files": saved})
	if len(saved) == 0 {
		return resp
	}

	c, err := cookie.New("last_upload", saved[len(saved)-1])
	if err != nil {
		return resp
	}
	if resp, err = message.WithCookie(resp, c.WithPath("/").WithHttpOnly(true)); err != nil {
		logger.Warn("set cookie failed. Error: %s", err.Error())
	}
	return resp
}

func textResponse(status int, text string) *message.Response {
	contentType, _ := mime.FromExtension("txt")
	return message.NewResponse(status).
		WithHeader("Content-Type", contentType+"; charset=utf-8").
		WithBody(stream.NewStream(text))
}

func jsonResponse(status int, v interface{}) *message.Response {
	contentType, _ := mime.FromExtension("json")
	return message.NewResponse(status).
		WithHeader("Content-Type", contentType).
		WithBody(stream.NewStream(tools.ToJson(v)))
}
