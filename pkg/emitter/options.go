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
	"reflect"

	"github.com/caiflower/http-utils/pkg/logger"
	"github.com/caiflower/http-utils/pkg/message"
	"github.com/caiflower/http-utils/pkg/tools"
)

const DefaultBufferSize = 65536

type Config struct {
	BufferSize int `yaml:"bufferSize" default:"65536"` // 每次写出的最大字节数
}

// LoadConfig 读取 yaml 配置，未配置的字段使用默认值
func LoadConfig(filename string) (*Config, error) {
	c := &Config{}
	if err := tools.LoadConfig(filename, c); err != nil {
		return nil, err
	}
	return c, nil
}

type options struct {
	config        Config
	bufferSizeSet bool
	log           logger.ILog
	metric        *Metric
}

type Option func(*options)

// newOptions 未显式设置 BufferSize 时使用 default tag 的值
func newOptions(opts ...Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if !o.bufferSizeSet {
		if err := tools.DoTagFunc(&o.config, []func(reflect.StructField, reflect.Value) error{tools.SetDefaultValueIfNil}); err != nil {
			return nil, err
		}
	}
	if o.log == nil {
		o.log = logger.DefaultLogger()
	}
	return o, nil
}

// WithBufferSize size < 1 时 New 返回 InvalidArgument
func WithBufferSize(size int) Option {
	return func(o *options) {
		o.config.BufferSize = size
		o.bufferSizeSet = true
	}
}

// WithConfig BufferSize 为 0 时视为未配置，使用默认值
func WithConfig(config Config) Option {
	return func(o *options) {
		o.config = config
		o.bufferSizeSet = config.BufferSize != 0
	}
}

func WithLogger(log logger.ILog) Option {
	return func(o *options) {
		o.log = log
	}
}

func WithMetric(metric *Metric) Option {
	return func(o *options) {
		o.metric = metric
	}
}

// NewWithBufferSize 等价于 New(response, sink, WithBufferSize(bufferSize))
func NewWithBufferSize(response *message.Response, sink Sink, bufferSize int) (*ResponseEmitter, error) {
	return New(response, sink, WithBufferSize(bufferSize))
}
