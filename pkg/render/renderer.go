package render

import (
	"log/slog"
	"net/http"

	"github.com/goliatone/go-renderhttp/pkg/contenttype"
	"github.com/goliatone/go-renderhttp/pkg/logging"
)

// Registry renders a named template with a data context.
type Registry interface {
	Render(name string, data any) (string, error)
}

// Renderer produces Bodies and Responses from templates.
type Renderer interface {
	// RenderBody renders name and infers the content type from the
	// extension ending name.
	RenderBody(name string, data any) (*Body, error)
	// RenderBodyWithExtension renders name and infers the content type from
	// ext alone.
	RenderBodyWithExtension(name string, data any, ext string) (*Body, error)
	// RenderResponse wraps RenderBody in a 200 response.
	RenderResponse(name string, data any) (*Response, error)
	// RenderResponseWithExtension wraps RenderBodyWithExtension in a 200
	// response.
	RenderResponseWithExtension(name string, data any, ext string) (*Response, error)
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger logs render failures at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logging.OrNop(logger)
	}
}

// Adapter implements Renderer over a Registry. It never mutates the
// registry and keeps no per-call state.
type Adapter struct {
	registry Registry
	logger   *slog.Logger
}

var _ Renderer = (*Adapter)(nil)

// New wraps registry.
func New(registry Registry, options ...Option) *Adapter {
	a := &Adapter{
		registry: registry,
		logger:   logging.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *Adapter) RenderBody(name string, data any) (*Body, error) {
	body, err := a.render(name, data)
	if err != nil {
		return nil, err
	}
	if ct, ok := contenttype.FromName(name); ok {
		body.SetContentType(ct)
	}
	return body, nil
}

func (a *Adapter) RenderBodyWithExtension(name string, data any, ext string) (*Body, error) {
	body, err := a.render(name, data)
	if err != nil {
		return nil, err
	}
	if ct, ok := contenttype.FromExtension(ext); ok {
		body.SetContentType(ct)
	}
	return body, nil
}

func (a *Adapter) RenderResponse(name string, data any) (*Response, error) {
	body, err := a.RenderBody(name, data)
	if err != nil {
		return nil, err
	}
	return newOKResponse(body), nil
}

func (a *Adapter) RenderResponseWithExtension(name string, data any, ext string) (*Response, error) {
	body, err := a.RenderBodyWithExtension(name, data, ext)
	if err != nil {
		return nil, err
	}
	return newOKResponse(body), nil
}

func (a *Adapter) render(name string, data any) (*Body, error) {
	if a == nil || a.registry == nil {
		return nil, &RenderError{Template: name, Err: ErrNilRegistry}
	}
	out, err := a.registry.Render(name, data)
	if err != nil {
		a.logger.Debug("template render failed", "template", name, "error", err)
		return nil, &RenderError{Template: name, Err: err}
	}
	return NewBody(out), nil
}

func newOKResponse(body *Body) *Response {
	resp := NewResponse(http.StatusOK)
	resp.SetBody(body)
	return resp
}
