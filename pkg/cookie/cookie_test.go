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

package cookie

import (
	"fmt"
	"testing"
	"time"

	"github.com/caiflower/http-utils/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixClock(t *testing.T, now time.Time) {
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = time.Now })
}

func newCookie(t *testing.T, name, value string) *Cookie {
	c, err := New(name, value)
	require.Nil(t, err)
	return c
}

func TestEmptyName(t *testing.T) {
	_, err := New("  ", "value")
	assert.Equal(t, EmptyNameErr, err)
	assert.True(t, e.IsErrorCode(err, e.InvalidArgument))
}

func TestInvalidCharactersInName(t *testing.T) {
	for _, char := range ReservedCharacters {
		t.Run(fmt.Sprintf("char 0x%02X", char), func(t *testing.T) {
			_, err := New("Cookie"+string(char)+"Name", "value")
			assert.Equal(t, InvalidNameErr, err)
		})
	}
}

func TestValueEncoding(t *testing.T) {
	c := newCookie(t, " name ", " hello world; ü ")
	assert.Equal(t, "name", c.Name())
	assert.Equal(t, "hello%20world%3B%20%C3%BC", c.Value())
	assert.Equal(t, "name=hello%20world%3B%20%C3%BC", c.String())
}

func TestExpiry(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	fixClock(t, now)
	format := func(tm time.Time) string { return tm.UTC().Format(dateFormat) }

	tests := []struct {
		name   string
		apply  func(c *Cookie) *Cookie
		date   string
		maxAge int
	}{
		{"timestamp 0", func(c *Cookie) *Cookie { return c.WithExpiryTimestamp(0) }, "Thursday, 01-Jan-1970 12:34:56 GMT", 0},
		{"absolute timestamp", func(c *Cookie) *Cookie { return c.WithExpiryTimestamp(now.Unix() + 69420) }, format(now.Add(69420 * time.Second)), 69420},
		{"relative timestamp", func(c *Cookie) *Cookie { return c.WithExpiryTimestamp(82517) }, format(now.Add(82517 * time.Second)), 82517},
		{"time", func(c *Cookie) *Cookie { return c.WithExpiry(now.Add(1337 * time.Second)) }, format(now.Add(1337 * time.Second)), 1337},
		{"duration", func(c *Cookie) *Cookie { return c.WithMaxAge(42 * time.Second) }, format(now.Add(42 * time.Second)), 42},
		{"past time", func(c *Cookie) *Cookie { return c.WithExpiry(now.Add(-time.Hour)) }, format(now.Add(-time.Hour)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.apply(newCookie(t, "test", "expiry"))
			assert.Equal(t, fmt.Sprintf("test=expiry; Expires=%s; Max-Age=%d", tt.date, tt.maxAge), c.String())
			assert.Equal(t, "test=expiry", c.WithoutExpiry().String())
		})
	}
}

func TestExpiryWithEmptyValue(t *testing.T) {
	c := newCookie(t, "test", "").WithExpiryTimestamp(69)
	assert.Equal(t, "test=; Expires=Thursday, 01-Jan-1970 12:34:56 GMT; Max-Age=0", c.String())
}

func TestDomain(t *testing.T) {
	tests := []struct {
		domain   string
		punycode bool
		expected string
	}{
		{"WWW.Example.COM", false, "www.example.com"},
		{"WWW.Example.COM", true, "www.example.com"},
		{"яндекAс.рф", true, "xn--a-gtbdum2a6g.xn--p1ai"},
	}

	for _, tt := range tests {
		c, err := newCookie(t, "test", "domain").WithDomain(tt.domain, tt.punycode)
		require.Nil(t, err)
		assert.Equal(t, "test=domain; Domain="+tt.expected, c.String())
		assert.Equal(t, "test=domain", c.WithoutDomain().String())
	}
}

func TestPath(t *testing.T) {
	tests := map[string]string{
		"":      "/",
		"0":     "0",
		"/path": "/path",
	}

	for path, expected := range tests {
		c := newCookie(t, "test", "path").WithPath(path)
		assert.Equal(t, "test=path; Path="+expected, c.String())
		assert.Equal(t, "test=path", c.WithoutPath().String())
	}
}

func TestSecureAndHttpOnly(t *testing.T) {
	c := newCookie(t, "test", "secure")
	assert.Equal(t, "test=secure; Secure", c.WithSecure(true).String())
	assert.Equal(t, "test=secure", c.WithSecure(false).String())

	c = newCookie(t, "test", "httponly")
	assert.Equal(t, "test=httponly; HttpOnly", c.WithHttpOnly(true).String())
	assert.Equal(t, "test=httponly", c.WithHttpOnly(false).String())
}

func TestSameSite(t *testing.T) {
	_, err := newCookie(t, "test", "samesite").WithSameSite("foo")
	assert.Equal(t, InvalidSameSiteErr, err)

	c, err := newCookie(t, "test", "samesite").WithSameSite("None")
	require.Nil(t, err)
	_, err = c.Build()
	assert.Equal(t, SameSiteNoneErr, err)
	assert.Equal(t, "", c.String())

	c, err = newCookie(t, "test", "samesite").WithSameSite(" STRICT ")
	require.Nil(t, err)
	assert.Equal(t, "test=samesite; SameSite=strict", c.String())
	assert.Equal(t, "test=samesite", c.WithoutSameSite().String())

	c, err = c.WithSecure(true).WithSameSite("none")
	require.Nil(t, err)
	assert.Equal(t, "test=samesite; Secure; SameSite=none", c.String())
}

func TestFullCookie(t *testing.T) {
	fixClock(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	c := newCookie(t, "session", "abc").WithMaxAge(time.Hour).WithPath("/app").WithSecure(true).WithHttpOnly(true)
	c, err := c.WithDomain("Example.org", true)
	require.Nil(t, err)
	c, err = c.WithSameSite("lax")
	require.Nil(t, err)

	assert.Equal(t,
		"session=abc; Expires=Monday, 01-Jan-2024 01:00:00 GMT; Max-Age=3600; Domain=example.org; Path=/app; Secure; HttpOnly; SameSite=lax",
		c.String(),
	)
}
