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
	"strconv"
	"strings"
	"time"

	"github.com/caiflower/http-utils/pkg/e"
	"github.com/caiflower/http-utils/pkg/uri"
	"golang.org/x/net/idna"
)

// ReservedCharacters cookie 名称中不允许出现的字符
const ReservedCharacters = "\t\n\v\f\r\x0E ,;="

// dateFormat Expires 属性使用的时间格式，例如 Thursday, 01-Jan-1970 12:34:56 GMT
const dateFormat = "Monday, 02-Jan-2006 15:04:05 GMT"

// deleteTimestamp 删除 cookie 时使用的过期时间 01-Jan-1970 12:34:56
const deleteTimestamp = 45296

var (
	EmptyNameErr       = e.NewInvalidArgument("The cookie name cannot be empty.")
	InvalidNameErr     = e.NewInvalidArgument("The cookie name contains invalid (reserved) characters.")
	InvalidSameSiteErr = e.NewInvalidArgument("The same site attribute must be \"lax\", \"strict\" or \"none\"")
	SameSiteNoneErr    = e.NewInvalidArgument("The same site attribute can only be \"none\" when secure is set to true")
)

var nowFunc = time.Now

// Cookie Set-Cookie 头部的构建器，With* 方法修改自身并返回自身以便链式调用
type Cookie struct {
	name     string
	value    string
	expiry   *time.Time
	maxAge   int64
	domain   *string
	path     *string
	secure   bool
	httpOnly bool
	sameSite *string
}

// New 创建 cookie，名称会被 trim，值会被 trim 后按 RFC 3986 编码
func New(name, value string) (*Cookie, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, EmptyNameErr
	}
	if strings.ContainsAny(name, ReservedCharacters) {
		return nil, InvalidNameErr
	}

	return &Cookie{
		name:  name,
		value: uri.RawURLEncode(strings.TrimSpace(value)),
	}, nil
}

func (c *Cookie) Name() string {
	return c.name
}

func (c *Cookie) Value() string {
	return c.value
}

// WithExpiry 使用绝对时间作为过期时间
func (c *Cookie) WithExpiry(expiry time.Time) *Cookie {
	return c.setExpiry(expiry.UTC(), nowFunc().Unix())
}

// WithMaxAge 过期时间为当前时间加上 d
func (c *Cookie) WithMaxAge(d time.Duration) *Cookie {
	now := nowFunc()
	return c.setExpiry(now.Add(d).UTC(), now.Unix())
}

// WithExpiryTimestamp 0 表示删除 cookie，小于当前时间戳时视为相对秒数，否则视为绝对时间戳
func (c *Cookie) WithExpiryTimestamp(timestamp int64) *Cookie {
	now := nowFunc().Unix()
	switch {
	case timestamp == 0:
		timestamp = deleteTimestamp
	case timestamp < now:
		timestamp += now
	}
	return c.setExpiry(time.Unix(timestamp, 0).UTC(), now)
}

func (c *Cookie) WithoutExpiry() *Cookie {
	c.expiry = nil
	c.maxAge = 0
	return c
}

func (c *Cookie) setExpiry(expiry time.Time, now int64) *Cookie {
	c.expiry = &expiry
	c.maxAge = expiry.Unix() - now
	if c.maxAge < 0 {
		c.maxAge = 0
	}
	return c
}

// WithDomain 设置小写的域名，punycode 为 true 时将 IDN 转换为 ASCII
func (c *Cookie) WithDomain(domain string, punycode bool) (*Cookie, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if punycode {
		ascii, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return c, e.NewApiError(e.Runtime, "Could not convert the given domain to IDN", err)
		}
		domain = ascii
	}
	c.domain = &domain
	return c, nil
}

func (c *Cookie) WithoutDomain() *Cookie {
	c.domain = nil
	return c
}

// WithPath 空路径视为 "/"
func (c *Cookie) WithPath(path string) *Cookie {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	c.path = &path
	return c
}

func (c *Cookie) WithoutPath() *Cookie {
	c.path = nil
	return c
}

func (c *Cookie) WithSecure(secure bool) *Cookie {
	c.secure = secure
	return c
}

func (c *Cookie) WithHttpOnly(httpOnly bool) *Cookie {
	c.httpOnly = httpOnly
	return c
}

// WithSameSite 只接受 lax、strict 或 none，大小写不敏感
func (c *Cookie) WithSameSite(sameSite string) (*Cookie, error) {
	sameSite = strings.ToLower(strings.TrimSpace(sameSite))
	switch sameSite {
	case "lax", "strict", "none":
	default:
		return c, InvalidSameSiteErr
	}
	c.sameSite = &sameSite
	return c, nil
}

func (c *Cookie) WithoutSameSite() *Cookie {
	c.sameSite = nil
	return c
}

// Build 生成 Set-Cookie 的值。值为空且设置了过期时间时强制使用删除 cookie 的过期时间。
func (c *Cookie) Build() (string, error) {
	attributes := []string{c.name + "=" + c.value}

	if c.expiry != nil {
		if c.value == "" {
			c.WithExpiryTimestamp(0)
		}
		attributes = append(attributes,
			"Expires="+c.expiry.Format(dateFormat)+"; Max-Age="+strconv.FormatInt(c.maxAge, 10))
	}
	if c.domain != nil {
		attributes = append(attributes, "Domain="+*c.domain)
	}
	if c.path != nil {
		attributes = append(attributes, "Path="+*c.path)
	}
	if c.secure {
		attributes = append(attributes, "Secure")
	}
	if c.httpOnly {
		attributes = append(attributes, "HttpOnly")
	}
	if c.sameSite != nil {
		if *c.sameSite == "none" && !c.secure {
			return "", SameSiteNoneErr
		}
		attributes = append(attributes, "SameSite="+*c.sameSite)
	}

	return strings.Join(attributes, "; "), nil
}

// String 返回 Build 的结果，构建失败时返回空串
func (c *Cookie) String() string {
	s, err := c.Build()
	if err != nil {
		return ""
	}
	return s
}
