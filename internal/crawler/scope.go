package crawler

import (
	"net/url"
	"path"
	"strings"
)

// blockedExtensions lists file extensions that never lead to indexable HTML.
var blockedExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true, "ppt": true, "pptx": true,
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "svg": true, "bmp": true,
	"ico": true, "eps": true, "tif": true, "tiff": true,
	"zip": true, "rar": true, "7z": true, "gz": true, "tar": true,
	"mp3": true, "mp4": true, "avi": true, "mov": true,
}

// InScope reports whether candidate should be crawled as part of the site
// rooted at scope. scope must end with "/". A candidate is in scope when it
// starts with scope, carries no fragment and does not point at a blocked
// file extension (compared case-insensitively).
func InScope(scope, candidate string) bool {
	if !strings.HasPrefix(candidate, scope) && candidate != strings.TrimSuffix(scope, "/") {
		return false
	}
	if strings.Contains(candidate, "#") {
		return false
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	return !blockedExtensions[ext]
}

// RelativePath returns the site-relative path of pageURL, always starting
// with "/". The root itself maps to "/".
func RelativePath(scope, pageURL string) string {
	rest, ok := strings.CutPrefix(pageURL, scope)
	if !ok {
		return "/"
	}
	return "/" + rest
}
