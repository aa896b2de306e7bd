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

package mime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromExtension(t *testing.T) {
	mimeType, ok := FromExtension("json")
	assert.True(t, ok)
	assert.Equal(t, "application/json", mimeType)

	mimeType, ok = FromExtension("PNG")
	assert.True(t, ok)
	assert.Equal(t, "image/png", mimeType)

	_, ok = FromExtension("whatever")
	assert.False(t, ok)
}

func TestFromFilename(t *testing.T) {
	_, ok := FromFilename("")
	assert.False(t, ok)

	mimeType, ok := FromFilename("/path/to/some/file.json")
	assert.True(t, ok)
	assert.Equal(t, "application/json", mimeType)

	mimeType, ok = FromFilename("archive.tar.bz2")
	assert.True(t, ok)
	assert.Equal(t, "application/x-bzip2", mimeType)

	_, ok = FromFilename("Makefile")
	assert.False(t, ok)
}

func TestFromContent(t *testing.T) {
	_, ok := FromContent(nil)
	assert.False(t, ok)

	mimeType, ok := FromContent([]byte("foo"))
	assert.True(t, ok)
	assert.Equal(t, "text/plain", mimeType)

	mimeType, _ = FromContent([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"))
	assert.Equal(t, "image/png", mimeType)

	mimeType, _ = FromContent([]byte("<!DOCTYPE html><html><body></body></html>"))
	assert.Equal(t, "text/html", mimeType)
}
