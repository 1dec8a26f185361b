package render

import (
	"net/http"
	"strconv"
	"strings"
)

const headerContentType = "Content-Type"

// Response pairs a status code and headers with a Body.
type Response struct {
	status int
	header http.Header
	body   *Body
}

// NewResponse creates an empty response with status.
func NewResponse(status int) *Response {
	return &Response{
		status: status,
		header: make(http.Header),
		body:   NewBody(""),
	}
}

// Status returns the status code.
func (r *Response) Status() int {
	return r.status
}

// SetStatus replaces the status code.
func (r *Response) SetStatus(code int) {
	r.status = code
}

// Header exposes the response headers for modification.
func (r *Response) Header() http.Header {
	return r.header
}

// Body returns the payload.
func (r *Response) Body() *Body {
	return r.body
}

// SetBody replaces the payload. A body carrying a content type also sets the
// response content type; an untagged body leaves it as it was.
func (r *Response) SetBody(b *Body) {
	if b == nil {
		b = NewBody("")
	}
	r.body = b
	if b.HasContentType() {
		r.SetContentType(b.ContentType())
	}
}

// ContentType returns the Content-Type header and whether it is set.
func (r *Response) ContentType() (string, bool) {
	ct := r.header.Get(headerContentType)
	return ct, ct != ""
}

// SetContentType sets the Content-Type header. An empty value removes it.
func (r *Response) SetContentType(ct string) {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		r.header.Del(headerContentType)
		return
	}
	r.header.Set(headerContentType, ct)
}

// ServeHTTP writes the headers, status and body to w. Responses without a
// content type are written as text/plain. HEAD requests get no body.
func (r *Response) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	dst := w.Header()
	for key, values := range r.header {
		dst[key] = append([]string(nil), values...)
	}
	if dst.Get(headerContentType) == "" {
		dst.Set(headerContentType, r.body.EffectiveContentType())
	}
	dst.Set("Content-Length", strconv.Itoa(r.body.Len()))

	status := r.status
	if status <= 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if req != nil && req.Method == http.MethodHead {
		return
	}
	_, _ = r.body.WriteTo(w)
}
