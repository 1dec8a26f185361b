package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-renderhttp/pkg/logging"
)

// Registry maps identifiers to compiled pongo2 templates.
type Registry struct {
	mu sync.RWMutex

	set      *pongo2.TemplateSet
	loader   *sourceLoader
	compiled map[string]*pongo2.Template
	logger   *slog.Logger

	// exclusive holds identifiers that must execute under the write lock.
	exclusive map[string]bool
}

// New constructs an empty Registry.
func New(options ...Option) (*Registry, error) {
	cfg := &config{name: "renderhttp"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	registerBuiltinFilters()

	loader := newSourceLoader()
	set := pongo2.NewSet(cfg.name, loader)

	reg := &Registry{
		set:      set,
		loader:   loader,
		compiled:  make(map[string]*pongo2.Template),
		logger:    logging.OrNop(cfg.logger),
		exclusive: make(map[string]bool),
	}

	if err := reg.SetGlobals(cfg.globals); err != nil {
		return nil, fmt.Errorf("registry: apply global data: %w", err)
	}
	for name, fn := range cfg.filters {
		if err := RegisterFilter(name, fn); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// FromDirs builds a Registry from every file ending in extension under the
// given directories. Identifiers are the slash-separated paths relative to
// their directory with the extension removed.
func FromDirs(extension string, dirs ...string) (*Registry, error) {
	reg, err := New()
	if err != nil {
		return nil, err
	}
	if err := reg.RegisterTemplatesDirectories(extension, dirs...); err != nil {
		return nil, err
	}
	return reg, nil
}

// SetGlobals merges data into the values visible to every template.
func (r *Registry) SetGlobals(data any) error {
	if r == nil {
		return errors.New("registry: registry is nil")
	}
	if data == nil {
		return nil
	}
	globals, err := toContext(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.set.Globals.Update(globals)
	return nil
}

// RegisterFilter installs a filter usable by every template. See the
// package-level RegisterFilter for scoping.
func (r *Registry) RegisterFilter(name string, fn FilterFunc) error {
	return RegisterFilter(name, fn)
}

// RegisterTemplateString registers src under name.
func (r *Registry) RegisterTemplateString(name, src string) error {
	return r.register(map[string]string{name: src})
}

// RegisterTemplateFile reads path and registers its content under name.
func (r *Registry) RegisterTemplateFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("registry: read template %q: %w", path, err)
	}
	return r.register(map[string]string{name: string(data)})
}

// Unregister removes name, reporting whether it was present. Templates that
// extend or include it fail on their next render.
func (r *Registry) Unregister(name string) bool {
	name = normalizeName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loader.sources[name]; !ok {
		return false
	}
	delete(r.loader.sources, name)
	r.compiled = make(map[string]*pongo2.Template)
	r.exclusive = exclusiveTemplates(r.loader.sources)
	return true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	name = normalizeName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loader.sources[name]
	return ok
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.loader.sources))
	for name := range r.loader.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes the template registered under name with data.
func (r *Registry) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTo executes the template registered under name and writes the
// output to w. Nothing is written when rendering fails.
func (r *Registry) RenderTo(w io.Writer, name string, data any) error {
	if r == nil {
		return errors.New("registry: registry is nil")
	}
	name = normalizeName(name)

	tmpl, err := r.lookup(name)
	if err != nil {
		return err
	}

	ctx, err := toContext(data)
	if err != nil {
		return &TemplateError{Name: name, Op: "execute", Err: err}
	}

	err = r.execute(func() bool { return r.exclusive[name] }, func() error {
		return tmpl.ExecuteWriter(ctx, w)
	})
	if err != nil {
		return &TemplateError{Name: name, Op: "execute", Err: err}
	}
	return nil
}

// RenderString compiles and executes an anonymous template. Extends and
// include tags inside src resolve against the registered identifiers.
func (r *Registry) RenderString(src string, data any) (string, error) {
	if r == nil {
		return "", errors.New("registry: registry is nil")
	}

	r.mu.Lock()
	tmpl, err := r.set.FromString(src)
	r.mu.Unlock()
	if err != nil {
		return "", &TemplateError{Name: "<string>", Op: "parse", Err: err}
	}

	ctx, err := toContext(data)
	if err != nil {
		return "", &TemplateError{Name: "<string>", Op: "execute", Err: err}
	}

	refs, dynamic := scanReferences(src)
	var out string
	err = r.execute(func() bool {
		if dynamic {
			return true
		}
		for _, ref := range refs {
			if r.exclusive[ref] {
				return true
			}
		}
		return false
	}, func() error {
		var execErr error
		out, execErr = tmpl.Execute(ctx)
		return execErr
	})
	if err != nil {
		return "", &TemplateError{Name: "<string>", Op: "execute", Err: err}
	}
	return out, nil
}

// execute runs fn under the read lock, or under the write lock when
// exclusive reports that the template compiles includes while it runs.
// pongo2 mutates the template set in that case.
func (r *Registry) execute(exclusive func() bool, fn func() error) error {
	r.mu.RLock()
	if !exclusive() {
		defer r.mu.RUnlock()
		return fn()
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}

func (r *Registry) lookup(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.compiled[name]
	_, known := r.loader.sources[name]
	r.mu.RUnlock()

	if ok {
		return tmpl, nil
	}
	if !known {
		return nil, notFound(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.compiled[name]; ok {
		return tmpl, nil
	}
	if _, ok := r.loader.sources[name]; !ok {
		return nil, notFound(name)
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, &TemplateError{Name: name, Op: "parse", Err: err}
	}
	r.compiled[name] = tmpl
	return tmpl, nil
}

// register stores every source in batch before compiling any of them, so
// templates within a batch may reference each other in any order. On a
// parse failure the previous sources are restored.
func (r *Registry) register(batch map[string]string) error {
	if r == nil {
		return errors.New("registry: registry is nil")
	}

	normalized := make(map[string]string, len(batch))
	for name, src := range batch {
		key := normalizeName(name)
		if key == "" {
			return errors.New("registry: template name required")
		}
		normalized[key] = src
	}
	if len(normalized) == 0 {
		return nil
	}

	names := make([]string, 0, len(normalized))
	for name := range normalized {
		names = append(names, name)
	}
	sort.Strings(names)

	r.mu.Lock()
	defer r.mu.Unlock()

	previous := make(map[string]*string, len(normalized))
	for _, name := range names {
		if src, ok := r.loader.sources[name]; ok {
			prev := src
			previous[name] = &prev
		} else {
			previous[name] = nil
		}
		r.loader.sources[name] = normalized[name]
	}
	r.compiled = make(map[string]*pongo2.Template)

	for _, name := range names {
		tmpl, err := r.set.FromFile(name)
		if err != nil {
			for restore, src := range previous {
				if src == nil {
					delete(r.loader.sources, restore)
					continue
				}
				r.loader.sources[restore] = *src
			}
			r.compiled = make(map[string]*pongo2.Template)
			r.exclusive = exclusiveTemplates(r.loader.sources)
			return &TemplateError{Name: name, Op: "parse", Err: err}
		}
		r.compiled[name] = tmpl
	}
	r.exclusive = exclusiveTemplates(r.loader.sources)

	r.logger.Debug("templates registered", "count", len(names))
	return nil
}
