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
	"net/http"
	"path/filepath"
	"strings"
)

// types 扩展名到 mime 类型的映射，来源 apache httpd 1.3 的 mime.types
var types = map[string]string{
	"3gp":     "video/3gpp",
	"7z":      "application/x-7z-compressed",
	"aac":     "audio/x-aac",
	"ai":      "application/postscript",
	"aif":     "audio/x-aiff",
	"asc":     "text/plain",
	"asf":     "video/x-ms-asf",
	"atom":    "application/atom+xml",
	"avi":     "video/x-msvideo",
	"bmp":     "image/bmp",
	"bz2":     "application/x-bzip2",
	"cer":     "application/pkix-cert",
	"crl":     "application/pkix-crl",
	"crt":     "application/x-x509-ca-cert",
	"css":     "text/css",
	"csv":     "text/csv",
	"cu":      "application/cu-seeme",
	"deb":     "application/x-debian-package",
	"doc":     "application/msword",
	"docx":    "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"dvi":     "application/x-dvi",
	"eot":     "application/vnd.ms-fontobject",
	"eps":     "application/postscript",
	"epub":    "application/epub+zip",
	"etx":     "text/x-setext",
	"flac":    "audio/flac",
	"flv":     "video/x-flv",
	"gif":     "image/gif",
	"gz":      "application/gzip",
	"htm":     "text/html",
	"html":    "text/html",
	"ico":     "image/x-icon",
	"ics":     "text/calendar",
	"ini":     "text/plain",
	"iso":     "application/x-iso9660-image",
	"jar":     "application/java-archive",
	"jpe":     "image/jpeg",
	"jpeg":    "image/jpeg",
	"jpg":     "image/jpeg",
	"js":      "text/javascript",
	"json":    "application/json",
	"latex":   "application/x-latex",
	"log":     "text/plain",
	"m4a":     "audio/mp4",
	"m4v":     "video/mp4",
	"mid":     "audio/midi",
	"midi":    "audio/midi",
	"mov":     "video/quicktime",
	"mkv":     "video/x-matroska",
	"mp3":     "audio/mpeg",
	"mp4":     "video/mp4",
	"mp4a":    "audio/mp4",
	"mp4v":    "video/mp4",
	"mpe":     "video/mpeg",
	"mpeg":    "video/mpeg",
	"mpg":     "video/mpeg",
	"mpg4":    "video/mp4",
	"oga":     "audio/ogg",
	"ogg":     "audio/ogg",
	"ogv":     "video/ogg",
	"ogx":     "application/ogg",
	"pbm":     "image/x-portable-bitmap",
	"pdf":     "application/pdf",
	"pgm":     "image/x-portable-graymap",
	"png":     "image/png",
	"pnm":     "image/x-portable-anymap",
	"ppm":     "image/x-portable-pixmap",
	"ppt":     "application/vnd.ms-powerpoint",
	"pptx":    "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"ps":      "application/postscript",
	"qt":      "video/quicktime",
	"rar":     "application/x-rar-compressed",
	"ras":     "image/x-cmu-raster",
	"rss":     "application/rss+xml",
	"rtf":     "application/rtf",
	"sgm":     "text/sgml",
	"sgml":    "text/sgml",
	"svg":     "image/svg+xml",
	"swf":     "application/x-shockwave-flash",
	"tar":     "application/x-tar",
	"tif":     "image/tiff",
	"tiff":    "image/tiff",
	"torrent": "application/x-bittorrent",
	"ttf":     "application/x-font-ttf",
	"txt":     "text/plain",
	"wav":     "audio/x-wav",
	"webm":    "video/webm",
	"wma":     "audio/x-ms-wma",
	"wmv":     "video/x-ms-wmv",
	"woff":    "application/x-font-woff",
	"wsdl":    "application/wsdl+xml",
	"xbm":     "image/x-xbitmap",
	"xls":     "application/vnd.ms-excel",
	"xlsx":    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xml":     "application/xml",
	"xpm":     "image/x-xpixmap",
	"xwd":     "image/x-xwindowdump",
	"yaml":    "text/yaml",
	"yml":     "text/yaml",
	"zip":     "application/zip",
}

// FromExtension 根据扩展名获取 mime 类型，大小写不敏感
func FromExtension(extension string) (string, bool) {
	mimeType, ok := types[strings.ToLower(extension)]
	return mimeType, ok
}

// FromFilename 根据文件名的扩展名获取 mime 类型
func FromFilename(filename string) (string, bool) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return "", false
	}
	return FromExtension(ext[1:])
}

// FromContent 根据内容嗅探 mime 类型，不带参数部分
func FromContent(content []byte) (string, bool) {
	if len(content) == 0 {
		return "", false
	}

	mimeType := http.DetectContentType(content)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(mimeType), true
}
