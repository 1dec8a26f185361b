package registry

import (
	"fmt"
	"io"
	"path"
	"strings"
)

// sourceLoader serves registered template sources to pongo2 so that
// extends/include tags resolve by identifier. It does no locking of its own.
// Literal extends/include targets are loaded while the Registry compiles
// under its write lock. Dynamic includes load during execution, which the
// Registry also runs under the write lock (see exclusiveTemplates).
type sourceLoader struct {
	sources map[string]string
}

func newSourceLoader() *sourceLoader {
	return &sourceLoader{sources: make(map[string]string)}
}

// Abs ignores the including template; identifiers are global.
func (l *sourceLoader) Abs(_, name string) string {
	return normalizeName(name)
}

func (l *sourceLoader) Get(name string) (io.Reader, error) {
	src, ok := l.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return strings.NewReader(src), nil
}

func normalizeName(name string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if trimmed == "" {
		return ""
	}
	cleaned := strings.TrimPrefix(path.Clean(trimmed), "/")
	if cleaned == "." {
		return ""
	}
	return cleaned
}
