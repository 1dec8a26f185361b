// Package render turns a template identifier plus a data context into a
// net/http ready Body or Response.
//
// The Adapter wraps any Registry (anything with
// Render(name string, data any) (string, error)) and tags the output with a
// content type derived from a file extension: either the one ending the
// template identifier ("simple.html") or an explicit override ("html").
// When no extension is present, or the extension is unknown, the content
// type stays unset and writers fall back to text/plain.
//
//	reg, _ := registry.FromDirs(".tpl", "./templates")
//	renderer := render.New(reg)
//
//	mux.Handle("/{name}", render.Handler(renderer, "simple.html", render.PathValues("name")))
//
// Render failures are returned as *RenderError wrapping the registry error.
// Content type inference never fails.
package render
