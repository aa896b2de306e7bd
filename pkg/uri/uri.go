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

package uri

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPorts 常见协议的默认端口
var DefaultPorts = map[string]int{
	"http":   80,
	"https":  443,
	"ftp":    21,
	"gopher": 70,
	"nntp":   119,
	"news":   119,
	"telnet": 23,
	"tn3270": 23,
	"imap":   143,
	"pop":    110,
	"ldap":   389,
}

var (
	ipv6Prefix  = regexp.MustCompile(`^(.*://\[[0-9:a-f]+\])(.*?)$`)
	encodedRuns = regexp.MustCompile(`[^:/@?&=#]+`)
	queryEscape = strings.NewReplacer("=", "%3D", "&", "%26")
)

// IsDefaultPort 没有端口或端口为协议默认端口时返回 true
func IsDefaultPort(u *url.URL) bool {
	port := u.Port()
	if port == "" {
		return true
	}
	defaultPort, ok := DefaultPorts[u.Scheme]
	return ok && port == strconv.Itoa(defaultPort)
}

func IsAbsolute(u *url.URL) bool {
	return u.Scheme != ""
}

func IsNetworkPathReference(u *url.URL) bool {
	return u.Scheme == "" && authority(u) != ""
}

func IsAbsolutePathReference(u *url.URL) bool {
	return u.Scheme == "" && authority(u) == "" && strings.HasPrefix(path(u), "/")
}

func IsRelativePathReference(u *url.URL) bool {
	return u.Scheme == "" && authority(u) == "" && !strings.HasPrefix(path(u), "/")
}

func authority(u *url.URL) string {
	if u.User == nil {
		return u.Host
	}
	return u.User.String() + "@" + u.Host
}

func path(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Path
}

// WithoutQueryValue 返回移除了所有 key 参数的新 url，key 可以是编码或未编码的形式
func WithoutQueryValue(u *url.URL, key string) *url.URL {
	if u.RawQuery == "" {
		return u
	}
	return withQuery(u, strings.Join(queryWithout(u.RawQuery, key), "&"))
}

// WithQueryValue 返回替换了 key 参数的新 url，value 为 nil 时只保留 key
func WithQueryValue(u *url.URL, key string, value *string) *url.URL {
	var parts []string
	if u.RawQuery != "" {
		parts = queryWithout(u.RawQuery, key)
	}

	pair := queryEscape.Replace(key)
	if value != nil {
		pair += "=" + queryEscape.Replace(*value)
	}
	parts = append(parts, pair)

	return withQuery(u, strings.Join(parts, "&"))
}

func queryWithout(query, key string) []string {
	decodedKey := RawURLDecode(key)
	result := make([]string, 0)
	for _, part := range strings.Split(query, "&") {
		name, _, _ := strings.Cut(part, "=")
		if RawURLDecode(name) != decodedKey {
			result = append(result, part)
		}
	}
	return result
}

func withQuery(u *url.URL, query string) *url.URL {
	clone := *u
	clone.RawQuery = filterQuery(query)
	clone.ForceQuery = false
	return &clone
}

// Parts ParseURL 的解析结果，Port 为 0 表示未指定
type Parts struct {
	Scheme   string
	User     string
	Pass     string
	Host     string
	Port     int
	Path     string
	Query    string
	Fragment string
}

// ParseURL 解析可能包含 UTF-8 字符或 IPv6 地址的 url
func ParseURL(rawURL string) (*Parts, bool) {
	prefix := ""
	if matches := ipv6Prefix.FindStringSubmatch(rawURL); matches != nil {
		prefix = matches[1]
		rawURL = matches[2]
	}

	encoded := encodedRuns.ReplaceAllStringFunc(rawURL, url.PathEscape)
	u, err := url.Parse(prefix + encoded)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "" && u.Host == "" && u.Opaque == "" && u.Path == "" {
		return nil, false
	}

	parts := &Parts{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Path:     path(u),
		Query:    RawURLDecode(u.RawQuery),
		Fragment: u.Fragment,
	}
	if strings.HasPrefix(u.Host, "[") {
		parts.Host = "[" + parts.Host + "]"
	}
	if u.User != nil {
		parts.User = u.User.Username()
		parts.Pass, _ = u.User.Password()
	}
	if port := u.Port(); port != "" {
		parts.Port, err = strconv.Atoi(port)
		if err != nil {
			return nil, false
		}
	}

	return parts, true
}
