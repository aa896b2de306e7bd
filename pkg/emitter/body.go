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

// emitBody 返回写出的字节数，连接断开时 aborted 为 true
func (r *ResponseEmitter) emitBody() (written int64, aborted bool, err error) {
	if !r.HasBody() {
		return 0, false, nil
	}

	if r.plan.hasCustomLength {
		return r.emitBodyRange(0, r.plan.rangeLength)
	}
	if r.plan.hasContentRange {
		return r.emitBodyRange(r.plan.rangeStart, r.plan.rangeLength)
	}

	for !r.body.EOF() {
		chunk, err := r.body.Read(r.bufferSize)
		if err != nil {
			return written, false, err
		}
		if len(chunk) == 0 {
			break
		}
		if err = r.sink.WriteBytes(chunk); err != nil {
			return written, false, err
		}
		written += int64(len(chunk))

		if !r.sink.IsConnectionAlive() {
			return written, true, nil
		}
	}
	return written, false, nil
}

// emitBodyRange 从 start 开始按 bufferSize 输出 length 个字节
func (r *ResponseEmitter) emitBodyRange(start, length int64) (written int64, aborted bool, err error) {
	r.sink.Flush()

	if !r.body.IsSeekable() {
		return 0, false, NotSeekableErr
	}
	if err = r.body.Seek(start); err != nil {
		return 0, false, err
	}

	bufferSize := int64(r.bufferSize)
	for length > 0 && !r.body.EOF() {
		n := bufferSize
		if length < bufferSize {
			n = length
		}

		chunk, err := r.body.Read(int(n))
		if err != nil {
			return written, false, err
		}
		if len(chunk) == 0 {
			break
		}
		if err = r.sink.WriteBytes(chunk); err != nil {
			return written, false, err
		}
		written += int64(len(chunk))
		length -= int64(len(chunk))

		if !r.sink.IsConnectionAlive() {
			return written, true, nil
		}
	}
	return written, false, nil
}
