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
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/caiflower/http-utils/pkg/e"
	"github.com/caiflower/http-utils/pkg/header"
	"github.com/caiflower/http-utils/pkg/logger"
	"github.com/caiflower/http-utils/pkg/message"
	"github.com/caiflower/http-utils/pkg/stream"
)

// Emitter 把一个 http 响应写到输出通道
type Emitter interface {
	Emit() error
}

// Sink 输出通道，Emitter 只通过它与外界交互
type Sink interface {
	// SendHeaderLine 发送一行头部。状态行的 statusCode 为状态码，普通头部为 0
	SendHeaderLine(line string, replace bool, statusCode int) error
	WriteBytes(p []byte) error
	Flush()
	IsConnectionAlive() bool
}

// OutputState 可选接口，Sink 实现后 Emit 前会检查是否已有输出
type OutputState interface {
	OutputStarted() bool
	// HeadersSent 返回头部是否已经发送以及首次发送的位置
	HeadersSent() (sent bool, location string)
}

type State int

const (
	StateConstructed State = iota
	StateHeadersValidated
	StateHeadersSent
	StateBodySent
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "Constructed"
	case StateHeadersValidated:
		return "HeadersValidated"
	case StateHeadersSent:
		return "HeadersSent"
	case StateBodySent:
		return "BodySent"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

var (
	OutputStartedErr  = e.NewRuntimeError("Output has been emitted previously; cannot emit response.")
	AlreadyEmittedErr = e.NewRuntimeError("response has already been emitted")
	NotSeekableErr    = e.NewRuntimeError("body must be seekable")
)

// plan 构造时一次性算出的输出计划
type plan struct {
	hasCustomLength bool
	hasContentRange bool
	rangeStart      int64
	rangeLength     int64
}

const (
	modeNone   = "none"
	modeFull   = "full"
	modeRange  = "range"
	modeCustom = "custom"
)

func (p plan) mode(hasBody bool) string {
	switch {
	case !hasBody:
		return modeNone
	case p.hasCustomLength:
		return modeCustom
	case p.hasContentRange:
		return modeRange
	default:
		return modeFull
	}
}

// ResponseEmitter 按 Content-Length / Content-Range 修正后的头部输出响应，
// 非 206 请求按 bufferSize 分块输出，206 只输出指定区间
type ResponseEmitter struct {
	response   *message.Response
	body       stream.Stream
	sink       Sink
	bufferSize int
	plan       plan
	state      State
	log        logger.ILog
	metric     *Metric
}

// New 构造时即完成头部修正，返回的 Response() 就是最终要输出的响应
func New(response *message.Response, sink Sink, opts ...Option) (*ResponseEmitter, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if options.config.BufferSize < 1 {
		return nil, e.NewInvalidArgument("Buffer length must be greater than zero.")
	}
	if response == nil {
		return nil, e.NewInvalidArgument("response must not be nil")
	}
	if sink == nil {
		return nil, e.NewInvalidArgument("sink must not be nil")
	}

	r := &ResponseEmitter{
		response:   response,
		body:       response.Body(),
		sink:       sink,
		bufferSize: options.config.BufferSize,
		log:        options.log,
		metric:     options.metric,
	}
	r.plan.hasContentRange = response.StatusCode() == http.StatusPartialContent && response.HasHeader("Content-Range")
	r.response = r.reconcile()

	if r.body != nil && r.body.IsSeekable() {
		if err = r.body.Rewind(); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Response 修正后的响应
func (r *ResponseEmitter) Response() *message.Response {
	return r.response
}

func (r *ResponseEmitter) State() State {
	return r.state
}

func (r *ResponseEmitter) BufferSize() int {
	return r.bufferSize
}

// HasBody 1xx、204、205、304 没有响应体，其余状态需要可读且长度已知、大于 0
func (r *ResponseEmitter) HasBody() bool {
	status := r.response.StatusCode()
	if status < http.StatusOK ||
		status == http.StatusNoContent ||
		status == http.StatusResetContent ||
		status == http.StatusNotModified {
		return false
	}

	if r.body == nil || !r.body.IsReadable() {
		return false
	}
	size, ok := r.body.Size()
	return ok && size > 0
}

// StatusLine 形如 "HTTP/1.1 200 OK"，reason 为空时去掉末尾空格
func (r *ResponseEmitter) StatusLine() string {
	line := fmt.Sprintf("HTTP/%s %d %s", r.response.ProtocolVersion(), r.response.StatusCode(), r.response.ReasonPhrase())
	return strings.TrimSpace(line)
}

// reconcile 根据响应体修正 Content-Length / Content-Range，并记录输出计划
func (r *ResponseEmitter) reconcile() *message.Response {
	builder := r.response.Builder()
	if !r.HasBody() {
		r.plan.hasContentRange = false
		return builder.WithoutHeader("Content-Length").Build()
	}

	size, _ := r.body.Size()
	if r.plan.hasContentRange {
		value := r.response.HeaderLine("Content-Range")
		cr, ok := parseContentRange(value, size)
		if !ok {
			r.plan.hasContentRange = false
			r.log.Warn("invalid content range [%s], fallback to full response. size=%d", value, size)
			return builder.
				Status(http.StatusOK, "OK").
				WithoutHeader("Content-Range").
				Header("Content-Length", strconv.FormatInt(size, 10)).
				Build()
		}

		r.plan.rangeStart, r.plan.rangeLength = cr.start, cr.length
		return builder.
			Header("Content-Range", cr.String()).
			Header("Content-Length", strconv.FormatInt(cr.length, 10)).
			Build()
	}

	if !r.response.HasHeader("Content-Length") {
		return builder.Header("Content-Length", strconv.FormatInt(size, 10)).Build()
	}

	if declared := leadingInt(r.response.HeaderLine("Content-Length")); declared < size {
		r.plan.hasCustomLength = true
		r.plan.rangeLength = declared
	}
	return builder.Build()
}

// leadingInt 取字符串开头的十进制数字，没有数字时为 0，溢出时为 math.MaxInt64
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return parseDigits(s[:end])
}

// parseDigits 解析非负十进制数字串，溢出时为 math.MaxInt64
func parseDigits(digits string) int64 {
	n, err := strconv.ParseInt(digits, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64
	}
	if err != nil {
		return 0
	}
	return n
}

func (r *ResponseEmitter) Emit() error {
	if r.state != StateConstructed {
		return AlreadyEmittedErr
	}

	if err := r.checkOutputState(); err != nil {
		r.fail(err)
		return err
	}
	r.state = StateHeadersValidated

	if err := r.emitHeaders(); err != nil {
		r.fail(err)
		return err
	}
	r.state = StateHeadersSent

	written, aborted, err := r.emitBody()
	if err != nil {
		r.fail(err)
		return err
	}
	r.state = StateBodySent

	r.sink.Flush()
	r.state = StateDone

	if aborted {
		r.log.Debug("connection closed during emit. status=%d written=%d", r.response.StatusCode(), written)
	}
	if r.metric != nil {
		r.metric.save(r.response.StatusCode(), r.plan.mode(r.HasBody()), written, aborted)
	}
	return nil
}

func (r *ResponseEmitter) fail(err error) {
	r.state = StateFailed
	r.log.Error("emit response failed. status=%d err=%s", r.response.StatusCode(), err.Error())
	if r.metric != nil {
		r.metric.failed(r.response.StatusCode())
	}
}

func (r *ResponseEmitter) checkOutputState() error {
	outputState, ok := r.sink.(OutputState)
	if !ok {
		return nil
	}
	if outputState.OutputStarted() {
		return OutputStartedErr
	}
	if sent, location := outputState.HeadersSent(); sent {
		return e.NewRuntimeError("Headers already sent in %s.", location)
	}
	return nil
}

// emitHeaders 先发送普通头部，再逐条发送 Set-Cookie，最后发送状态行
func (r *ResponseEmitter) emitHeaders() error {
	normalized, err := header.Normalize(r.response.HeaderLines())
	if err != nil {
		return err
	}

	for _, name := range normalized.Names() {
		if name == header.SetCookie {
			continue
		}
		value, _ := normalized.Get(name)
		if err = r.sink.SendHeaderLine(name+": "+value, true, 0); err != nil {
			return err
		}
	}

	for _, cookie := range normalized.Cookies() {
		if err = r.sink.SendHeaderLine(header.SetCookie+": "+cookie, false, 0); err != nil {
			return err
		}
	}

	return r.sink.SendHeaderLine(r.StatusLine(), true, r.response.StatusCode())
}
