// Package registry provides a named template registry backed by pongo2.
//
// Templates are registered under an identifier (usually a file name such as
// "simple.html" or an extension-stripped path such as "layouts/base") and
// rendered with a data context:
//
//	reg, err := registry.FromDirs(".tpl", "./templates")
//	if err != nil {
//		return err
//	}
//	out, err := reg.Render("simple.html", map[string]any{"title": "hello"})
//
// Registered templates can reference each other by identifier through
// {% extends %}, {% include %} and {% import %}. Every registration is
// compiled immediately so syntax errors surface at load time; a failed
// registration leaves the registry unchanged.
//
// A Registry is safe for concurrent use. Renders share a read lock, while
// registrations take the write lock and invalidate compiled templates so
// dependants pick up a changed parent.
package registry
