// Package contenttype maps file extensions to HTTP content types.
//
// The table is fixed and does not consult the host's mime.types files, so a
// template named "page.html" classifies the same way on every machine.
package contenttype

import (
	"path"
	"strings"
)

// Common content types returned by the lookups.
const (
	HTML       = "text/html;charset=utf-8"
	Plain      = "text/plain;charset=utf-8"
	CSS        = "text/css;charset=utf-8"
	JavaScript = "text/javascript;charset=utf-8"
	JSON       = "application/json"
	XML        = "application/xml"
	SVG        = "image/svg+xml"
)

var byExtension = map[string]string{
	"html":        HTML,
	"htm":         HTML,
	"txt":         Plain,
	"text":        Plain,
	"css":         CSS,
	"js":          JavaScript,
	"mjs":         JavaScript,
	"json":        JSON,
	"jsonld":      "application/ld+json",
	"webmanifest": "application/manifest+json",
	"xml":         XML,
	"rss":         "application/rss+xml",
	"atom":        "application/atom+xml",
	"svg":         SVG,
	"csv":         "text/csv;charset=utf-8",
	"md":          "text/markdown;charset=utf-8",
	"markdown":    "text/markdown;charset=utf-8",
	"ics":         "text/calendar;charset=utf-8",
	"vtt":         "text/vtt;charset=utf-8",
	"wasm":        "application/wasm",
	"pdf":         "application/pdf",
	"ico":         "image/x-icon",
	"png":         "image/png",
	"jpg":         "image/jpeg",
	"jpeg":        "image/jpeg",
	"gif":         "image/gif",
	"webp":        "image/webp",
	"avif":        "image/avif",
	"bin":         "application/octet-stream",
}

// FromExtension returns the content type registered for ext. The lookup is
// case-insensitive and accepts a leading dot.
func FromExtension(ext string) (string, bool) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if key == "" {
		return "", false
	}
	ct, ok := byExtension[key]
	return ct, ok
}

// FromName derives the content type from the extension of the last path
// element of name.
func FromName(name string) (string, bool) {
	ext, ok := Extension(name)
	if !ok {
		return "", false
	}
	return FromExtension(ext)
}

// Extension returns the text after the last "." of the final path element.
// Names with no dot, a trailing dot, or a single leading dot (".hbs") have no
// extension.
func Extension(name string) (string, bool) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "", false
	}
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return "", false
	}
	return base[idx+1:], true
}
