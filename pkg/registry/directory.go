package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// RegisterTemplatesDirectory registers every file under dir whose name ends
// in extension. "pages/simple.html.tpl" registered with ".tpl" becomes
// "pages/simple.html". Hidden files and directories are skipped.
func (r *Registry) RegisterTemplatesDirectory(extension, dir string) error {
	return r.RegisterTemplatesDirectories(extension, dir)
}

// RegisterTemplatesDirectories registers several directories as one batch.
// When two directories provide the same identifier the later one wins.
func (r *Registry) RegisterTemplatesDirectories(extension string, dirs ...string) error {
	batch := make(map[string]string)
	for _, dir := range dirs {
		fsys, err := dirFS(dir)
		if err != nil {
			return err
		}
		if err := collectFS(fsys, normalizeExtension(extension), batch); err != nil {
			return fmt.Errorf("registry: load %q: %w", dir, err)
		}
	}
	return r.register(batch)
}

// RegisterTemplatesFS registers every file in fsys ending in extension. An
// empty extension registers every file under its full relative path.
func (r *Registry) RegisterTemplatesFS(fsys fs.FS, extension string) error {
	if fsys == nil {
		return errors.New("registry: filesystem is nil")
	}
	batch := make(map[string]string)
	if err := collectFS(fsys, normalizeExtension(extension), batch); err != nil {
		return fmt.Errorf("registry: load fs: %w", err)
	}
	return r.register(batch)
}

// RegisterTemplatesGlob registers the files in fsys matching a doublestar
// pattern such as "emails/**/*.tpl". extension, when set, is stripped from
// the identifiers.
func (r *Registry) RegisterTemplatesGlob(fsys fs.FS, pattern, extension string) error {
	if fsys == nil {
		return errors.New("registry: filesystem is nil")
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("registry: invalid glob pattern %q", pattern)
	}

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithNoHidden())
	if err != nil {
		return fmt.Errorf("registry: glob %q: %w", pattern, err)
	}

	ext := normalizeExtension(extension)
	batch := make(map[string]string, len(matches))
	for _, match := range matches {
		data, err := fs.ReadFile(fsys, match)
		if err != nil {
			return fmt.Errorf("registry: read %s: %w", match, err)
		}
		batch[templateName(match, ext)] = string(data)
	}
	return r.register(batch)
}

func dirFS(dir string) (fs.FS, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("registry: templates directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("registry: templates directory %q is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

func collectFS(fsys fs.FS, ext string, batch map[string]string) error {
	return fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p != "." && isHidden(entry.Name()) {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if ext != "" && (!strings.HasSuffix(p, ext) || len(p) == len(ext)) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		batch[templateName(p, ext)] = string(data)
		return nil
	})
}

func templateName(p, ext string) string {
	if ext == "" {
		return p
	}
	trimmed := strings.TrimSuffix(p, ext)
	if trimmed == "" || strings.HasSuffix(trimmed, "/") {
		return p
	}
	return trimmed
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimSpace(ext)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	return trimmed
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
