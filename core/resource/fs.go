package resource

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FS is the filesystem accessor used by the scanner and by translation writers.
type FS interface {
	// ListResourceFiles returns slash-separated paths relative to root whose base
	// name or relative path matches one of patterns, in lexicographic order.
	ListResourceFiles(root string, patterns []string) ([]string, error)
	// ReadFile reads name.
	ReadFile(name string) ([]byte, error)
	// WriteFile writes name, creating parent directories.
	WriteFile(name string, data []byte) error
	// Afero exposes the underlying filesystem.
	Afero() afero.Fs
}

type aferoFS struct {
	fs afero.Fs
}

// NewFS wraps an afero filesystem.
func NewFS(fs afero.Fs) FS {
	return &aferoFS{fs: fs}
}

func (a *aferoFS) Afero() afero.Fs { return a.fs }

func (a *aferoFS) ListResourceFiles(root string, patterns []string) ([]string, error) {
	var out []string
	err := afero.Walk(a.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchAny(rel, patterns) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	data, err := afero.ReadFile(a.fs, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func (a *aferoFS) WriteFile(name string, data []byte) error {
	if err := a.fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(name), err)
	}
	if err := afero.WriteFile(a.fs, name, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func matchAny(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	base := path.Base(rel)
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
		if ok, _ := path.Match(p, base); ok {
			return true
		}
	}
	return false
}

// OutputPath expands an output pattern for a downloaded translation.
// Supported placeholders: %locale%, %locale_with_underscore%, %original_path%,
// %file_name% (base name without extension) and %file_extension%.
func OutputPath(pattern, locale, original string) string {
	base := path.Base(original)
	ext := strings.TrimPrefix(path.Ext(base), ".")
	name := strings.TrimSuffix(base, path.Ext(base))
	r := strings.NewReplacer(
		"%locale_with_underscore%", strings.ReplaceAll(locale, "-", "_"),
		"%locale%", locale,
		"%original_path%", original,
		"%file_name%", name,
		"%file_extension%", ext,
	)
	return path.Clean(r.Replace(pattern))
}
