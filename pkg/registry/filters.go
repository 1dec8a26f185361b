package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// FilterFunc is a template filter: {{ value|name:param }}.
type FilterFunc func(input any, param any) (any, error)

var builtinOnce sync.Once

// registerBuiltinFilters installs the HTML sanitising filters. pongo2 keeps
// filters in a process-wide table, so this runs once per process.
func registerBuiltinFilters() {
	builtinOnce.Do(func() {
		ugc := bluemonday.UGCPolicy()
		strict := bluemonday.StrictPolicy()

		if !pongo2.FilterExists("sanitize_html") {
			_ = pongo2.RegisterFilter("sanitize_html", policyFilter(ugc))
		}
		if !pongo2.FilterExists("strip_html") {
			_ = pongo2.RegisterFilter("strip_html", policyFilter(strict))
		}
	})
}

// policyFilter marks the policy output safe; bluemonday already escaped it.
func policyFilter(policy *bluemonday.Policy) pongo2.FilterFunction {
	return func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		if in == nil || in.IsNil() {
			return pongo2.AsSafeValue(""), nil
		}
		return pongo2.AsSafeValue(policy.Sanitize(in.String())), nil
	}
}

// RegisterFilter installs fn under name. Filters are shared by every
// registry in the process; registering an existing name replaces it.
func RegisterFilter(name string, fn FilterFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("registry: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var input, paramVal any
		if in != nil {
			input = in.Interface()
		}
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(input, paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	var err error
	if pongo2.FilterExists(name) {
		err = pongo2.ReplaceFilter(name, filter)
	} else {
		err = pongo2.RegisterFilter(name, filter)
	}
	if err != nil {
		return fmt.Errorf("registry: register filter %q: %w", name, err)
	}
	return nil
}
