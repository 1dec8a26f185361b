package render

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Route binds a path pattern to a template.
type Route struct {
	// Pattern is an http.ServeMux path pattern such as "/{name}".
	Pattern   string
	Template  string
	Extension string
	Data      DataFunc
	Status    int
}

// RegisterRoutes mounts one Handler per route under basePath and returns the
// registered patterns.
func RegisterRoutes(mux Mux, basePath string, renderer Renderer, routes []Route, opts ...HandlerOption) ([]string, error) {
	if mux == nil {
		return nil, fmt.Errorf("render: missing mux")
	}
	if renderer == nil {
		return nil, fmt.Errorf("render: missing renderer")
	}

	patterns := make([]string, 0, len(routes))
	for _, route := range routes {
		if strings.TrimSpace(route.Template) == "" {
			return patterns, fmt.Errorf("render: route %q has no template", route.Pattern)
		}

		routeOpts := append([]HandlerOption{}, opts...)
		if route.Extension != "" {
			routeOpts = append(routeOpts, WithExtension(route.Extension))
		}
		if route.Status > 0 {
			routeOpts = append(routeOpts, WithStatus(route.Status))
		}

		pattern := MountPath(basePath, route.Pattern)
		if err := handle(mux, pattern, Handler(renderer, route.Template, route.Data, routeOpts...)); err != nil {
			return patterns, err
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// handle reports the panics http.ServeMux raises for malformed or
// conflicting patterns as errors.
func handle(mux Mux, pattern string, handler http.Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render: route %q: %v", pattern, rec)
		}
	}()
	mux.Handle(pattern, handler)
	return nil
}

// MountPath joins basePath and routePath with exactly one slash.
func MountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/") + routePath
}
