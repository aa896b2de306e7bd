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

package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type Appender interface {
	write(data data)
}

type logAppender struct {
	out         io.Writer
	timeFormat  string
	enableTrace bool
	enableColor bool

	bufPool   sync.Pool
	writeLock sync.Mutex
}

func newLogAppender(out io.Writer, timeFormat string, enableTrace, enableColor bool) Appender {
	return &logAppender{
		out:         out,
		timeFormat:  timeFormat,
		enableTrace: enableTrace,
		enableColor: enableColor,
		bufPool: sync.Pool{
			New: func() interface{} {
				return new(strings.Builder)
			}},
	}
}

func (appender *logAppender) write(data data) {
	level := data.level
	if appender.enableColor {
		level = getLevelColor(level)
	}

	buf := appender.bufPool.Get().(*strings.Builder)
	buf.Reset()
	buf.WriteString(data.timestamp.Format(appender.timeFormat))
	buf.WriteString(" [")
	buf.WriteString(level)
	buf.WriteString("] ")
	if appender.enableTrace && data.traceID != "" {
		traceID := data.traceID
		if appender.enableColor {
			traceID = fmt.Sprintf("\033[1;35m%s\033[0m", traceID)
		}
		buf.WriteString("[")
		buf.WriteString(traceID)
		buf.WriteString("] ")
	}
	buf.WriteString(data.position)
	buf.WriteString(" - ")
	buf.WriteString(data.content)
	buf.WriteString("\n")

	// 输出日志
	appender.writeLock.Lock()
	defer func() {
		appender.writeLock.Unlock()
		buf.Reset()
		appender.bufPool.Put(buf)
	}()

	if _, err := io.WriteString(appender.out, buf.String()); err != nil {
		fmt.Printf("[ERROR] - [logger appender] output err %s\n", err.Error())
	}
}
