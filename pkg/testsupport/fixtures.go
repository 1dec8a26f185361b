// Package testsupport holds helpers shared by package tests: registry
// fixtures, golden files and HTTP recorders.
package testsupport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-renderhttp/pkg/registry"
)

// MustRegistry builds a registry from every file ending in extension under
// dirs.
func MustRegistry(t *testing.T, extension string, dirs ...string) *registry.Registry {
	t.Helper()

	reg, err := registry.FromDirs(extension, dirs...)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

// MustRegisterFiles registers each name -> path pair on reg.
func MustRegisterFiles(t *testing.T, reg *registry.Registry, files map[string]string) {
	t.Helper()

	for name, path := range files {
		if err := reg.RegisterTemplateFile(name, path); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
}

// TitleContext is the context used across the render fixtures.
func TitleContext(title string) map[string]string {
	return map[string]string{"title": title}
}

// Serve runs handler against a request built from method and target and
// returns the recorded response.
func Serve(t *testing.T, handler http.Handler, method, target string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Result()
}

// ReadBody drains and closes res.Body.
func ReadBody(t *testing.T, res *http.Response) string {
	t.Helper()

	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGoldenString reads a golden file.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set and
// reports whether it did.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
