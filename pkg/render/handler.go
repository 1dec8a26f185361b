package render

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-renderhttp/pkg/logging"
)

// DataFunc builds the render context for a request. Returning an HTTPError
// selects the response status; other errors answer 400.
type DataFunc func(r *http.Request) (any, error)

// HandlerOption configures Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	extension string
	status    int
	logger    *slog.Logger
}

// WithExtension infers the content type from ext instead of the template
// identifier.
func WithExtension(ext string) HandlerOption {
	return func(cfg *handlerConfig) {
		cfg.extension = strings.TrimSpace(ext)
	}
}

// WithStatus replaces the 200 status of successful renders, e.g. for a
// rendered 404 page.
func WithStatus(code int) HandlerOption {
	return func(cfg *handlerConfig) {
		if code > 0 {
			cfg.status = code
		}
	}
}

// WithHandlerLogger logs render failures at error level.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(cfg *handlerConfig) {
		cfg.logger = logging.OrNop(logger)
	}
}

// Handler serves GET and HEAD requests by rendering name with the context
// produced by data. A nil data func renders with an empty context.
func Handler(renderer Renderer, name string, data DataFunc, opts ...HandlerOption) http.Handler {
	cfg := handlerConfig{
		status: http.StatusOK,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if renderer == nil {
			cfg.logger.Error("render handler has no renderer", "template", name)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		var ctx any
		if data != nil {
			value, err := data(r)
			if err != nil {
				writeDataError(w, err)
				return
			}
			ctx = value
		}

		var (
			resp *Response
			err  error
		)
		if cfg.extension != "" {
			resp, err = renderer.RenderResponseWithExtension(name, ctx, cfg.extension)
		} else {
			resp, err = renderer.RenderResponse(name, ctx)
		}
		if err != nil {
			cfg.logger.Error("render failed", "template", name, "path", r.URL.Path, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if cfg.status != http.StatusOK {
			resp.SetStatus(cfg.status)
		}
		resp.ServeHTTP(w, r)
	})
}

func writeDataError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if c := httpErr.StatusCode(); c > 0 {
			code = c
		}
	}
	http.Error(w, http.StatusText(code), code)
}

// StaticData always returns data.
func StaticData(data map[string]any) DataFunc {
	return func(*http.Request) (any, error) {
		out := make(map[string]any, len(data))
		for k, v := range data {
			out[k] = v
		}
		return out, nil
	}
}

// PathValues maps each key to r.PathValue(key). Keys must match wildcards in
// the route pattern.
func PathValues(keys ...string) DataFunc {
	return func(r *http.Request) (any, error) {
		out := make(map[string]any, len(keys))
		for _, key := range keys {
			out[key] = r.PathValue(key)
		}
		return out, nil
	}
}

// QueryValues maps each key to the first matching query parameter. Missing
// parameters are left out.
func QueryValues(keys ...string) DataFunc {
	return func(r *http.Request) (any, error) {
		query := r.URL.Query()
		out := make(map[string]any, len(keys))
		for _, key := range keys {
			if query.Has(key) {
				out[key] = query.Get(key)
			}
		}
		return out, nil
	}
}

// MergeData runs fns in order and merges their map results; later keys win.
func MergeData(fns ...DataFunc) DataFunc {
	return func(r *http.Request) (any, error) {
		out := make(map[string]any)
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			value, err := fn(r)
			if err != nil {
				return nil, err
			}
			if value == nil {
				continue
			}
			m, ok := value.(map[string]any)
			if !ok {
				return nil, StatusError{Code: http.StatusInternalServerError, Err: fmt.Errorf("render: cannot merge %T into context", value)}
			}
			for k, v := range m {
				out[k] = v
			}
		}
		return out, nil
	}
}
