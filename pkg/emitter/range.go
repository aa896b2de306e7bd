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
	"fmt"
	"math"
	"regexp"
	"strings"
)

var contentRangeRegexp = regexp.MustCompile(`(?i)([a-z]+)\s+(\d+)-(\d+)/(\d+|\*)`)

type contentRange struct {
	unit   string
	start  int64
	end    int64
	total  int64
	length int64
}

func (c contentRange) String() string {
	return fmt.Sprintf("%s %d-%d/%d", c.unit, c.start, c.end, c.total)
}

// parseContentRange 解析 "bytes start-end/total"，total 为 * 时取 size。
// end 超过 total 时按 total 截断，超出 int64 的数字按 math.MaxInt64 处理；
// 单位不是 bytes 或 end < start 时无效
func parseContentRange(value string, size int64) (contentRange, bool) {
	matches := contentRangeRegexp.FindStringSubmatch(value)
	if matches == nil || strings.ToLower(matches[1]) != "bytes" {
		return contentRange{}, false
	}

	start, end := parseDigits(matches[2]), parseDigits(matches[3])
	if end < start {
		return contentRange{}, false
	}

	total := size
	if matches[4] != "*" {
		total = parseDigits(matches[4])
	}

	var length int64
	switch {
	case end > total:
		length = total - start
	case end-start == math.MaxInt64:
		length = math.MaxInt64
	default:
		length = end - start + 1
	}
	if length < 0 {
		length = 0
	}

	return contentRange{unit: "bytes", start: start, end: end, total: total, length: length}, true
}
