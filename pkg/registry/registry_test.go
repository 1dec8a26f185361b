package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func newRegistry(t *testing.T, options ...Option) *Registry {
	t.Helper()

	reg, err := New(options...)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

func TestRegistry_RenderTemplateFile(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplateFile("simple.html", "testdata/templates/simple.html"); err != nil {
		t.Fatalf("register file: %v", err)
	}

	got, err := reg.Render("simple.html", map[string]string{"title": "hello tide!"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "<h1>hello tide!</h1>\n"; got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestRegistry_RenderUnknownTemplate(t *testing.T) {
	reg := newRegistry(t)

	_, err := reg.Render("missing.html", nil)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestFromDirs_StripsExtensionAndSkipsHidden(t *testing.T) {
	reg, err := FromDirs(".hbs", "testdata/templates")
	if err != nil {
		t.Fatalf("from dirs: %v", err)
	}

	want := []string{"partials/greeting", "simple"}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	got, err := reg.Render("partials/greeting", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFromDirs_ExtensionWithoutDot(t *testing.T) {
	reg, err := FromDirs("hbs", "testdata/templates")
	if err != nil {
		t.Fatalf("from dirs: %v", err)
	}
	if !reg.Has("simple") {
		t.Fatalf("expected simple to be registered, got %v", reg.Names())
	}
}

func TestFromDirs_MissingDirectory(t *testing.T) {
	if _, err := FromDirs(".hbs", "testdata/does-not-exist"); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestFromDirs_ResolvesExtendsWithinBatch(t *testing.T) {
	reg, err := FromDirs(".tpl", "testdata/nested")
	if err != nil {
		t.Fatalf("from dirs: %v", err)
	}

	got, err := reg.Render("content", map[string]any{"title": "hello tide!"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<html><body><h1>hello tide!</h1></body></html>\n"
	if got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestRegistry_ParseErrorKeepsPreviousDefinition(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplateString("page", "v1 {{ title }}"); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := reg.RegisterTemplateFile("page", "testdata/broken/unclosed.tpl")
	var tmplErr *TemplateError
	if !errors.As(err, &tmplErr) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
	if tmplErr.Name != "page" || tmplErr.Op != "parse" {
		t.Fatalf("unexpected template error: %+v", tmplErr)
	}

	got, err := reg.Render("page", map[string]any{"title": "ok"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "v1 ok" {
		t.Fatalf("expected previous definition, got %q", got)
	}
}

func TestRegistry_ParseErrorDropsNewDefinition(t *testing.T) {
	reg := newRegistry(t)

	if err := reg.RegisterTemplateString("broken", "{% if %}"); err == nil {
		t.Fatalf("expected parse error")
	}
	if reg.Has("broken") {
		t.Fatalf("broken template should not stay registered")
	}
}

func TestRegistry_ReregisteredParentInvalidatesChildren(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplateString("base", "[{% block body %}{% endblock %}]"); err != nil {
		t.Fatalf("register base: %v", err)
	}
	if err := reg.RegisterTemplateString("child", `{% extends "base" %}{% block body %}x{% endblock %}`); err != nil {
		t.Fatalf("register child: %v", err)
	}
	if got, _ := reg.Render("child", nil); got != "[x]" {
		t.Fatalf("unexpected output %q", got)
	}

	if err := reg.RegisterTemplateString("base", "({% block body %}{% endblock %})"); err != nil {
		t.Fatalf("re-register base: %v", err)
	}
	got, err := reg.Render("child", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "(x)" {
		t.Fatalf("expected child to pick up new base, got %q", got)
	}
}

func TestRegistry_Include(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplateString("partials/name", "<b>{{ name }}</b>"); err != nil {
		t.Fatalf("register partial: %v", err)
	}
	if err := reg.RegisterTemplateString("page.html", `Hi {% include "partials/name" %}`); err != nil {
		t.Fatalf("register page: %v", err)
	}

	got, err := reg.Render("page.html", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hi <b>Ada</b>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegistry_StructContextUsesJSONNames(t *testing.T) {
	type page struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}

	reg := newRegistry(t)
	if err := reg.RegisterTemplateString("page", "{{ title }}:{% for t in tags %}{{ t }}{% endfor %}"); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := reg.Render("page", page{Title: "T", Tags: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "T:ab" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegistry_NonObjectContext(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplateString("page", "{{ title }}"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := reg.Render("page", "not an object")
	if !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected ErrInvalidContext, got %v", err)
	}
	var tmplErr *TemplateError
	if !errors.As(err, &tmplErr) || tmplErr.Op != "execute" {
		t.Fatalf("expected execute TemplateError, got %v", err)
	}
}

func TestRegistry_GlobalData(t *testing.T) {
	reg := newRegistry(t, WithGlobalData(map[string]any{"site": "docs", "title": "global"}))
	if err := reg.RegisterTemplateString("page", "{{ site }}/{{ title }}"); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := reg.Render("page", map[string]any{"title": "local"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "docs/local" {
		t.Fatalf("expected render data to shadow globals, got %q", got)
	}
}

func TestRegistry_BuiltinSanitizeFilters(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplateString("page", "{{ body|sanitize_html }}|{{ body|strip_html }}"); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := reg.Render("page", map[string]any{"body": "<b>ok</b><script>alert(1)</script>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<b>ok</b>|ok" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegistry_CustomFilter(t *testing.T) {
	reg := newRegistry(t, WithFilters(map[string]FilterFunc{
		"shout": func(input any, _ any) (any, error) {
			return strings.ToUpper(fmt.Sprint(input)) + "!", nil
		},
	}))
	if err := reg.RegisterTemplateString("page", "{{ name|shout }}"); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := reg.Render("page", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegistry_RegisterFilterRequiresName(t *testing.T) {
	if err := RegisterFilter(" ", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected error for empty filter name")
	}
}

func TestRegistry_RenderString(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplateString("base", "<{% block body %}{% endblock %}>"); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := reg.RenderString(`{% extends "base" %}{% block body %}{{ v }}{% endblock %}`, map[string]any{"v": 1})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "<1>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegistry_RegisterTemplatesGlob(t *testing.T) {
	fsys := fstest.MapFS{
		"emails/welcome.txt.tpl":     {Data: []byte("Welcome {{ name }}")},
		"emails/nested/reset.tpl":    {Data: []byte("Reset {{ name }}")},
		"emails/.hidden/ignored.tpl": {Data: []byte("{% if %}")},
		"pages/index.html.tpl":       {Data: []byte("index")},
	}

	reg := newRegistry(t)
	if err := reg.RegisterTemplatesGlob(fsys, "emails/**/*.tpl", ".tpl"); err != nil {
		t.Fatalf("register glob: %v", err)
	}

	want := []string{"emails/nested/reset", "emails/welcome.txt"}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_RegisterTemplatesGlobInvalidPattern(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplatesGlob(fstest.MapFS{}, "[", ""); err == nil {
		t.Fatalf("expected invalid pattern error")
	}
}

func TestRegistry_RegisterTemplatesFSWithoutExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"a.html":     {Data: []byte("A")},
		"dir/b.json": {Data: []byte(`{"b": true}`)},
	}

	reg := newRegistry(t)
	if err := reg.RegisterTemplatesFS(fsys, ""); err != nil {
		t.Fatalf("register fs: %v", err)
	}
	if diff := cmp.Diff([]string{"a.html", "dir/b.json"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplateString("page", "x"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !reg.Unregister("page") {
		t.Fatalf("expected unregister to report removal")
	}
	if reg.Unregister("page") {
		t.Fatalf("second unregister should report false")
	}
	if _, err := reg.Render("page", nil); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestRegistry_ConcurrentRenders(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.RegisterTemplateString("page", "<p>{{ n }}</p>"); err != nil {
		t.Fatalf("register: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := reg.Render("page", map[string]any{"n": n})
			if err != nil {
				errs <- err
				return
			}
			if want := fmt.Sprintf("<p>%d</p>", n); got != want {
				errs <- fmt.Errorf("want %q got %q", want, got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
}
