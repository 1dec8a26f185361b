// Package renderhttp turns a registered template plus a data context into an
// HTTP body or response whose content-type follows the template extension.
//
//	reg, err := renderhttp.NewRegistry(".hbs", "./templates")
//	if err != nil {
//		return err
//	}
//	r := renderhttp.New(reg)
//	res, err := r.RenderResponse("simple.html", map[string]string{"name": "ada"})
//
// The subpackages hold the pieces: pkg/registry compiles templates, pkg/render
// adapts them to bodies, responses and handlers, pkg/server serves a config.
package renderhttp

import (
	"github.com/goliatone/go-renderhttp/pkg/registry"
	"github.com/goliatone/go-renderhttp/pkg/render"
)

// Renderer is the four-operation render interface.
type Renderer = render.Renderer

// Body is a rendered string tagged with an optional content-type.
type Body = render.Body

// Response is an HTTP status, headers and Body.
type Response = render.Response

// RenderError reports a failed render for a named template.
type RenderError = render.RenderError

// Registry is the pongo2-backed template registry.
type Registry = registry.Registry

// New adapts reg into a Renderer.
func New(reg render.Registry, options ...render.Option) *render.Adapter {
	return render.New(reg, options...)
}

// NewRegistry registers every file ending in extension below dirs, naming each
// template by its relative path without the extension.
func NewRegistry(extension string, dirs ...string) (*Registry, error) {
	return registry.FromDirs(extension, dirs...)
}
