package registry

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// toContext turns render data into a pongo2 context. The data must reduce
// to an object; see plain for how values are reduced.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	reduced, err := plain(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	obj, ok := reduced.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidContext, data)
	}

	ctx := make(pongo2.Context, len(obj))
	for key, value := range obj {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = value
		}
	}
	return ctx, nil
}

// plain reduces v to strings, numbers, bools, maps, slices and functions.
// Generic maps and slices are walked so functions nested in them survive
// and stay callable from templates. Any other value goes through
// encoding/json, which lets json tags name struct fields.
func plain(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int, int64, float64:
		return t, nil
	case pongo2.Context:
		return plain(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, item := range t {
			reduced, err := plain(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = reduced
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			reduced, err := plain(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = reduced
		}
		return out, nil
	}

	if reflect.ValueOf(v).Kind() == reflect.Func {
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
