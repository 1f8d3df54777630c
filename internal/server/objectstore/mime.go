package objectstore

import (
	"path"
	"strings"
)

// DefaultContentType is used for extensions missing from contentTypes.
const DefaultContentType = "application/octet-stream"

// contentTypes maps lowercase extensions to MIME types. The bytes are never
// sniffed; callers must validate what they accept before uploading.
var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"avif": "image/avif",
	"bmp":  "image/bmp",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"pdf":  "application/pdf",
	"txt":  "text/plain",
	"json": "application/json",
	"zip":  "application/zip",
}

// Extension returns the lowercase extension of fileName without the dot.
func Extension(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
}

// ContentType returns the MIME type for fileName's extension.
func ContentType(fileName string) string {
	if ct, ok := contentTypes[Extension(fileName)]; ok {
		return ct
	}
	return DefaultContentType
}
