package render_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-renderhttp/pkg/contenttype"
	"github.com/goliatone/go-renderhttp/pkg/registry"
	"github.com/goliatone/go-renderhttp/pkg/render"
	"github.com/goliatone/go-renderhttp/pkg/testsupport"
)

func greetingRenderer(t *testing.T) *render.Adapter {
	t.Helper()

	reg, err := registry.New()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := reg.RegisterTemplateString("simple.html", "<h1>Hello {{ name }}</h1>"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterTemplateString("content", "<p>{{ title }}</p>"); err != nil {
		t.Fatalf("register: %v", err)
	}
	return render.New(reg)
}

func TestHandler_RendersPathValues(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/{name}", render.Handler(greetingRenderer(t), "simple.html", render.PathValues("name")))

	res := testsupport.Serve(t, mux, http.MethodGet, "/ada")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != contenttype.HTML {
		t.Fatalf("expected html content type, got %q", ct)
	}
	if body := testsupport.ReadBody(t, res); body != "<h1>Hello ada</h1>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestHandler_ExtensionOverride(t *testing.T) {
	h := render.Handler(greetingRenderer(t), "content", render.StaticData(map[string]any{"title": "hello tide!"}), render.WithExtension("html"))

	res := testsupport.Serve(t, h, http.MethodGet, "/")
	if ct := res.Header.Get("Content-Type"); ct != contenttype.HTML {
		t.Fatalf("expected html content type, got %q", ct)
	}
	if body := testsupport.ReadBody(t, res); body != "<p>hello tide!</p>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestHandler_RejectsOtherMethods(t *testing.T) {
	h := render.Handler(greetingRenderer(t), "content", nil)

	res := testsupport.Serve(t, h, http.MethodPost, "/")
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.StatusCode)
	}
	if allow := res.Header.Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestHandler_RenderErrorIs500(t *testing.T) {
	h := render.Handler(greetingRenderer(t), "missing.html", nil)

	res := testsupport.Serve(t, h, http.MethodGet, "/")
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}
}

func TestHandler_DataErrorStatus(t *testing.T) {
	renderer := greetingRenderer(t)

	failing := func(*http.Request) (any, error) {
		return nil, render.StatusError{Code: http.StatusNotFound, Err: errors.New("no such page")}
	}
	res := testsupport.Serve(t, render.Handler(renderer, "content", failing), http.MethodGet, "/")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}

	plain := func(*http.Request) (any, error) { return nil, errors.New("bad input") }
	res = testsupport.Serve(t, render.Handler(renderer, "content", plain), http.MethodGet, "/")
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestHandler_WithStatus(t *testing.T) {
	h := render.Handler(greetingRenderer(t), "content", render.StaticData(map[string]any{"title": "gone"}), render.WithStatus(http.StatusNotFound))

	res := testsupport.Serve(t, h, http.MethodGet, "/")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
	if body := testsupport.ReadBody(t, res); body != "<p>gone</p>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestMergeData(t *testing.T) {
	fn := render.MergeData(
		render.StaticData(map[string]any{"title": "static", "site": "docs"}),
		render.QueryValues("title", "absent"),
	)

	got, err := fn(httptest.NewRequest(http.MethodGet, "/?title=query", nil))
	if err != nil {
		t.Fatalf("merge data: %v", err)
	}
	want := map[string]any{"title": "query", "site": "docs"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merged context mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeData_RejectsNonMap(t *testing.T) {
	fn := render.MergeData(func(*http.Request) (any, error) { return "nope", nil })
	if _, err := fn(httptest.NewRequest(http.MethodGet, "/", nil)); err == nil {
		t.Fatalf("expected merge error")
	}
}

func TestRegisterRoutes(t *testing.T) {
	mux := http.NewServeMux()
	patterns, err := render.RegisterRoutes(mux, "/site", greetingRenderer(t), []render.Route{
		{Pattern: "/hello/{name}", Template: "simple.html", Data: render.PathValues("name")},
		{Pattern: "about", Template: "content", Extension: "html", Data: render.StaticData(map[string]any{"title": "About"})},
	})
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	if diff := cmp.Diff([]string{"/site/hello/{name}", "/site/about"}, patterns); diff != "" {
		t.Fatalf("patterns mismatch (-want +got):\n%s", diff)
	}

	res := testsupport.Serve(t, mux, http.MethodGet, "/site/hello/grace")
	if body := testsupport.ReadBody(t, res); body != "<h1>Hello grace</h1>" {
		t.Fatalf("unexpected body %q", body)
	}

	res = testsupport.Serve(t, mux, http.MethodGet, "/site/about")
	if ct := res.Header.Get("Content-Type"); ct != contenttype.HTML {
		t.Fatalf("expected html content type, got %q", ct)
	}
}

func TestRegisterRoutes_RequiresTemplate(t *testing.T) {
	_, err := render.RegisterRoutes(http.NewServeMux(), "", greetingRenderer(t), []render.Route{{Pattern: "/x"}})
	if err == nil {
		t.Fatalf("expected error for route without template")
	}
}

func TestRegisterRoutes_InvalidPatternsReturnErrors(t *testing.T) {
	cases := []struct {
		name     string
		routes   []render.Route
		fragment string
	}{
		{
			name: "conflicting wildcards",
			routes: []render.Route{
				{Pattern: "/{name}", Template: "simple.html"},
				{Pattern: "/{id}", Template: "simple.html"},
			},
			fragment: `route "/{id}"`,
		},
		{
			name:     "unterminated wildcard",
			routes:   []render.Route{{Pattern: "/{bad", Template: "simple.html"}},
			fragment: `route "/{bad"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			patterns, err := render.RegisterRoutes(http.NewServeMux(), "", greetingRenderer(t), tc.routes)
			if err == nil {
				t.Fatalf("expected error, got patterns %v", patterns)
			}
			if !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected %q in %v", tc.fragment, err)
			}
		})
	}
}

func TestMountPath(t *testing.T) {
	cases := map[[2]string]string{
		{"", ""}:            "/",
		{"/", "/x"}:         "/x",
		{"api", "x"}:        "/api/x",
		{"/api/", "/x/{n}"}: "/api/x/{n}",
	}
	for in, want := range cases {
		if got := render.MountPath(in[0], in[1]); got != want {
			t.Fatalf("MountPath(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}
