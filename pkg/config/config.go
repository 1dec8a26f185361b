// Package config loads the YAML file that drives the renderhttp server.
//
//	addr: 127.0.0.1:8080
//	extension: .tpl
//	directories: [./templates]
//	globals:
//	  site: docs
//	routes:
//	  - path: /{name}
//	    template: simple.html
//	    params: [name]
//	  - path: /
//	    template: content
//	    extension: html
//	    data:
//	      title: hello
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr      = "127.0.0.1:8080"
	DefaultExtension = ".tpl"
)

// Config describes template sources and the routes that render them.
type Config struct {
	Addr        string         `yaml:"addr"`
	BasePath    string         `yaml:"base_path"`
	Extension   string         `yaml:"extension"`
	Directories []string       `yaml:"directories"`
	Globs       []Glob         `yaml:"globs"`
	Globals     map[string]any `yaml:"globals"`
	Log         Log            `yaml:"log"`
	Routes      []Route        `yaml:"routes"`
}

// Glob registers templates matching Pattern below Root.
type Glob struct {
	Root      string `yaml:"root"`
	Pattern   string `yaml:"pattern"`
	Extension string `yaml:"extension"`
}

// Log selects the logger level and format.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Route maps a ServeMux pattern to a template.
type Route struct {
	Path      string         `yaml:"path"`
	Template  string         `yaml:"template"`
	Extension string         `yaml:"extension"`
	Status    int            `yaml:"status"`
	Params    []string       `yaml:"params"`
	Query     []string       `yaml:"query"`
	Data      map[string]any `yaml:"data"`
}

// Default returns a config with the default address and extension.
func Default() Config {
	return Config{
		Addr:      DefaultAddr,
		Extension: DefaultExtension,
		Log:       Log{Level: "info", Format: "text"},
	}
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Addr = strings.TrimSpace(c.Addr)
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	c.Extension = strings.TrimSpace(c.Extension)
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	for i := range c.Routes {
		c.Routes[i].Path = strings.TrimSpace(c.Routes[i].Path)
		c.Routes[i].Template = strings.TrimSpace(c.Routes[i].Template)
	}
}

// ResolvePaths makes relative directories and glob roots relative to base,
// typically the directory holding the config file.
func (c *Config) ResolvePaths(base string) {
	for i, dir := range c.Directories {
		c.Directories[i] = resolve(base, dir)
	}
	for i := range c.Globs {
		c.Globs[i].Root = resolve(base, c.Globs[i].Root)
	}
}

func resolve(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		p = "."
	}
	if filepath.IsAbs(p) || base == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	if len(c.Directories) == 0 && len(c.Globs) == 0 {
		errs = append(errs, errors.New("at least one of directories or globs is required"))
	}
	for i, g := range c.Globs {
		if strings.TrimSpace(g.Pattern) == "" {
			errs = append(errs, fmt.Errorf("globs[%d]: pattern is required", i))
		}
	}

	seen := make(map[string]struct{}, len(c.Routes))
	patterns := http.NewServeMux()
	for i, r := range c.Routes {
		if r.Path == "" {
			errs = append(errs, fmt.Errorf("routes[%d]: path is required", i))
		}
		if r.Template == "" {
			errs = append(errs, fmt.Errorf("routes[%d]: template is required", i))
		}
		if r.Status != 0 && (r.Status < 100 || r.Status > 599) {
			errs = append(errs, fmt.Errorf("routes[%d]: invalid status %d", i, r.Status))
		}
		if _, dup := seen[r.Path]; dup && r.Path != "" {
			errs = append(errs, fmt.Errorf("routes[%d]: duplicate path %q", i, r.Path))
		} else if r.Path != "" {
			if err := checkPattern(patterns, r.Path); err != nil {
				errs = append(errs, fmt.Errorf("routes[%d]: %w", i, err))
			}
		}
		seen[r.Path] = struct{}{}
	}
	return errors.Join(errs...)
}

// checkPattern registers path on mux, turning the ServeMux panic for a
// malformed pattern, or one that conflicts with an earlier route, into an
// error.
func checkPattern(mux *http.ServeMux, path string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("invalid path %q: %v", path, rec)
		}
	}()
	mux.Handle(path, http.NotFoundHandler())
	return nil
}
