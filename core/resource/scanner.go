package resource

import (
	"context"
	"errors"
	"path"

	"crowdin-distributor/core/errdefs"
)

// Scanner builds Snapshots from source files.
type Scanner struct {
	fs       FS
	registry *Registry
}

// NewScanner returns a scanner reading through fs with the given parsers.
func NewScanner(fs FS, registry *Registry) *Scanner {
	return &Scanner{fs: fs, registry: registry}
}

// Scan reads and parses each path under root. The first malformed file aborts the
// scan with a *errdefs.MalformedResourceError and no snapshot is returned.
func (s *Scanner) Scan(ctx context.Context, root string, paths []string) (*Snapshot, error) {
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, &errdefs.CancelledError{Err: err}
		}
		f, err := s.ScanFile(root, p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return NewSnapshot(files...), nil
}

// ScanFile reads and parses a single file.
func (s *Scanner) ScanFile(root, rel string) (*File, error) {
	parser, err := s.registry.For(rel)
	if err != nil {
		return nil, &errdefs.MalformedResourceError{Path: rel, Err: err}
	}
	data, err := s.fs.ReadFile(path.Join(root, rel))
	if err != nil {
		return nil, &errdefs.MalformedResourceError{Path: rel, Err: err}
	}
	pairs, err := parser.Parse(data)
	if err != nil {
		malformed := &errdefs.MalformedResourceError{Path: rel, Err: err}
		var perr *ParseError
		if errors.As(err, &perr) {
			malformed.Line = perr.Line
		}
		return nil, malformed
	}

	entries := make([]SourceEntry, 0, len(pairs))
	for _, kv := range pairs {
		entries = append(entries, NewEntry(kv.Key, kv.Value))
	}
	return &File{Path: rel, Entries: entries, Content: data}, nil
}
