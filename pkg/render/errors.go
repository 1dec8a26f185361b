package render

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNilRegistry is wrapped by RenderError when the adapter has no registry.
var ErrNilRegistry = errors.New("render: registry is nil")

// RenderError reports a failed registry render. Err is the registry error,
// unchanged.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("render: template %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsRenderError reports whether err is or wraps a *RenderError.
func IsRenderError(err error) bool {
	var target *RenderError
	return errors.As(err, &target)
}

// HTTPError is an error that knows its HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError attaches a status code to an error returned from a DataFunc.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}
