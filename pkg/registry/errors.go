package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound reports a render or lookup of an identifier that
	// was never registered.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrInvalidContext reports data that does not encode to an object.
	ErrInvalidContext = errors.New("context must encode to an object")
)

// TemplateError wraps a pongo2 failure with the identifier and the stage
// (parse or execute) that produced it.
type TemplateError struct {
	Name string
	Op   string
	Err  error
}

func (e *TemplateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("registry: %s template %q: %v", e.Op, e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func notFound(name string) error {
	return fmt.Errorf("registry: template %q: %w", name, ErrTemplateNotFound)
}
