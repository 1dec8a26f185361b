package render

import (
	"io"
	"strings"

	"github.com/goliatone/go-renderhttp/pkg/contenttype"
)

// Body is a rendered payload with an optional content type.
type Body struct {
	content     string
	contentType string
}

// NewBody wraps content with no content type.
func NewBody(content string) *Body {
	return &Body{content: content}
}

// String returns the payload unchanged.
func (b *Body) String() string {
	if b == nil {
		return ""
	}
	return b.content
}

// Bytes returns a copy of the payload.
func (b *Body) Bytes() []byte {
	return []byte(b.String())
}

// Len reports the payload size in bytes.
func (b *Body) Len() int {
	return len(b.String())
}

// Reader returns a fresh reader over the payload.
func (b *Body) Reader() io.Reader {
	return strings.NewReader(b.String())
}

// WriteTo implements io.WriterTo.
func (b *Body) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// ContentType returns the tagged content type, or "" when unset.
func (b *Body) ContentType() string {
	if b == nil {
		return ""
	}
	return b.contentType
}

// HasContentType reports whether a content type was set.
func (b *Body) HasContentType() bool {
	return b.ContentType() != ""
}

// SetContentType tags the body. An empty value clears the tag.
func (b *Body) SetContentType(ct string) {
	if b == nil {
		return
	}
	b.contentType = strings.TrimSpace(ct)
}

// EffectiveContentType returns the tagged content type or text/plain.
func (b *Body) EffectiveContentType() string {
	if ct := b.ContentType(); ct != "" {
		return ct
	}
	return contenttype.Plain
}
