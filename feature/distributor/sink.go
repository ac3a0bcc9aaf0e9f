package distributor

import (
	"context"
	"fmt"
	"path"

	"crowdin-distributor/core/resource"
)

// FileSink validates downloaded translations against their source and writes
// them below root following pattern.
type FileSink struct {
	fs       resource.FS
	registry *resource.Registry
	snapshot *resource.Snapshot
	root     string
	pattern  string
}

// NewFileSink returns a sink for one pass over snapshot.
func NewFileSink(fs resource.FS, registry *resource.Registry, snapshot *resource.Snapshot, root, pattern string) *FileSink {
	return &FileSink{fs: fs, registry: registry, snapshot: snapshot, root: root, pattern: pattern}
}

// Target returns where the translation of file in locale is written.
func (s *FileSink) Target(locale, file string) string {
	return path.Join(s.root, resource.OutputPath(s.pattern, locale, file))
}

// Accept validates content and writes it. Any error rejects the download.
func (s *FileSink) Accept(ctx context.Context, locale, file string, content []byte) error {
	source, ok := s.snapshot.File(file)
	if !ok {
		return fmt.Errorf("no local source for %s", file)
	}
	values, err := s.registry.ParseValues(file, content)
	if err != nil {
		return fmt.Errorf("parsing %s translation of %s: %w", locale, file, err)
	}
	if err := resource.NewValidator(source.Values()).Validate(locale+"/"+file, values); err != nil {
		return err
	}
	return s.fs.WriteFile(s.Target(locale, file), content)
}
