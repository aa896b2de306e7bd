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
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caiflower/http-utils/pkg/message"
	"github.com/caiflower/http-utils/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSink(t *testing.T) {
	resp := message.NewResponse(http.StatusPartialContent).
		WithHeader("Content-Type", "text/plain").
		WithHeader("Content-Range", "bytes 10-19/*").
		WithAddedHeader("Set-Cookie", "a=1").
		WithAddedHeader("Set-Cookie", "b=2").
		WithBody(stream.NewStream("abcdefghijklmnopqrstuvwxyz"))

	rec := httptest.NewRecorder()
	sink := NewHTTPSink(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	r, err := New(resp, sink, WithBufferSize(3))
	require.NoError(t, err)
	require.NoError(t, r.Emit())

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes 10-19/26", rec.Header().Get("Content-Range"))
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
	assert.Equal(t, []string{"a=1", "b=2"}, rec.Header().Values("Set-Cookie"))
	assert.Equal(t, "klmnopqrst", rec.Body.String())
	assert.True(t, rec.Flushed)

	assert.True(t, sink.OutputStarted())
	sent, location := sink.HeadersSent()
	assert.True(t, sent)
	assert.True(t, strings.HasPrefix(location, "file "))
}

func TestHTTPSinkEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp := message.NewResponse(http.StatusOK).
			WithHeader("X-Foo", "bar").
			WithBody(stream.NewStream("Hello World!"))

		r, err := New(resp, NewHTTPSink(w, req))
		if err == nil {
			err = r.Emit()
		}
		if err != nil {
			t.Errorf("emit failed: %v", err)
		}
	}))
	defer server.Close()

	res, err := http.Get(server.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	var body bytes.Buffer
	_, err = body.ReadFrom(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "bar", res.Header.Get("X-Foo"))
	assert.Equal(t, int64(12), res.ContentLength)
	assert.Equal(t, "Hello World!", body.String())
}

func TestHTTPSinkCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	sink := NewHTTPSink(rec, req)
	assert.False(t, sink.IsConnectionAlive())

	resp := message.NewResponse(http.StatusOK).WithBody(stream.NewStream(strings.Repeat("x", 100)))
	r, err := New(resp, sink, WithBufferSize(10))
	require.NoError(t, err)
	require.NoError(t, r.Emit())

	assert.Equal(t, 10, rec.Body.Len())
}

func TestHTTPSinkOutputState(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := NewHTTPSink(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	r, err := New(message.NewResponse(http.StatusNoContent), sink)
	require.NoError(t, err)
	require.NoError(t, r.Emit())
	assert.False(t, sink.OutputStarted())

	r, err = New(message.NewResponse(http.StatusOK), sink, WithLogger(&recordingLog{}))
	require.NoError(t, err)
	err = r.Emit()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Headers already sent in file "))

	require.NoError(t, sink.WriteBytes([]byte("x")))
	r, err = New(message.NewResponse(http.StatusOK), sink, WithLogger(&recordingLog{}))
	require.NoError(t, err)
	assert.True(t, errors.Is(r.Emit(), OutputStartedErr))
}

func TestHTTPSinkStatusLineWithoutCode(t *testing.T) {
	sink := NewHTTPSink(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, sink.SendHeaderLine("HTTP/1.1 200 OK", true, 0))
}

func TestMiddlewareDetectsEarlierOutput(t *testing.T) {
	tests := []struct {
		name   string
		before func(w http.ResponseWriter)
		check  func(t *testing.T, err error)
	}{
		{
			name: "body written",
			before: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte("early"))
			},
			check: func(t *testing.T, err error) {
				assert.Equal(t, OutputStartedErr, err)
			},
		},
		{
			name: "status written",
			before: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusAccepted)
			},
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.True(t, strings.HasPrefix(err.Error(), "Headers already sent in file "))
				assert.Contains(t, err.Error(), "http_sink_test.go on line ")
			},
		},
	}

	for _, tt := range tests {
		var emitErr error
		handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			tt.before(w)
			r, err := New(message.NewResponse(http.StatusOK).WithBody(stream.NewStream("late")), NewHTTPSink(w, req), WithLogger(&recordingLog{}))
			require.NoError(t, err)
			emitErr = r.Emit()
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		tt.check(t, emitErr)
		assert.NotContains(t, rec.Body.String(), "late", tt.name)
	}
}

func TestUntrackedWriterMissesEarlierOutput(t *testing.T) {
	rec := httptest.NewRecorder()
	_, _ = rec.Write([]byte("early"))

	sink := NewHTTPSink(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, sink.OutputStarted())

	tracked := TrackResponseWriter(rec)
	assert.Same(t, tracked, TrackResponseWriter(tracked))
	assert.Equal(t, http.ResponseWriter(rec), tracked.Unwrap())
}
