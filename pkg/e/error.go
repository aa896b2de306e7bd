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

package e

import (
	"errors"
	"fmt"
	"net/http"
)

type ApiError interface {
	GetCode() int
	GetType() string
	GetMessage() string
	GetCause() error
	Error() string
}

type Error = apiError

type apiError struct {
	Code    int
	Type    string
	Message string
	Cause   error `json:"-"`
}

func (e *apiError) GetCode() int {
	return e.Code
}

func (e *apiError) GetType() string {
	return e.Type
}

func (e *apiError) GetMessage() string {
	return e.Message
}

func (e *apiError) GetCause() error {
	return e.Cause
}

func (e *apiError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
}

func (e *apiError) Unwrap() error {
	return e.Cause
}

type ErrorCode struct {
	Code int
	Type string
}

var (
	// InvalidArgument 调用方传入了非法参数
	InvalidArgument = &ErrorCode{Code: http.StatusBadRequest, Type: "InvalidArgument"}
	// Runtime 运行期无法恢复的错误，例如流不可seek、输出已经开始
	Runtime = &ErrorCode{Code: http.StatusInternalServerError, Type: "RuntimeError"}
)

func NewApiError(errCode *ErrorCode, msg string, err error) *Error {
	return &apiError{
		Code:    errCode.Code,
		Type:    errCode.Type,
		Message: msg,
		Cause:   err,
	}
}

func NewInvalidArgument(format string, v ...interface{}) *Error {
	return NewApiError(InvalidArgument, fmt.Sprintf(format, v...), nil)
}

func NewRuntimeError(format string, v ...interface{}) *Error {
	return NewApiError(Runtime, fmt.Sprintf(format, v...), nil)
}

// IsErrorCode reports whether any error in err's chain carries the given code.
func IsErrorCode(err error, errCode *ErrorCode) bool {
	var target *apiError
	if !errors.As(err, &target) {
		return false
	}
	return target.Type == errCode.Type
}
