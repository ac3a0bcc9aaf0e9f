package resource

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// SourceEntry is one translatable string of a source file.
type SourceEntry struct {
	// Key is the translation key, unique within its file.
	Key string `json:"key"`
	// Text is the source-language value.
	Text string `json:"text"`
	// Hash is the lowercase hex sha256 of Text.
	Hash string `json:"hash"`
}

// Pair is a raw key/value pair produced by a format parser.
type Pair struct {
	Key   string
	Value string
}

// Hash returns the content hash used to compare local and remote strings.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// NewEntry builds a SourceEntry, computing its hash.
func NewEntry(key, text string) SourceEntry {
	return SourceEntry{Key: key, Text: text, Hash: Hash(text)}
}

// File is a scanned resource file.
type File struct {
	// Path is relative to the source root, slash separated.
	Path string
	// Entries are in document order.
	Entries []SourceEntry
	// Content is the raw file as read from disk, uploaded verbatim.
	Content []byte
}

// Values returns the entries as a key/value map.
func (f *File) Values() map[string]string {
	values := make(map[string]string, len(f.Entries))
	for _, e := range f.Entries {
		values[e.Key] = e.Text
	}
	return values
}

// Snapshot is the canonical local picture of one run. It is built once by Scan
// and never mutated afterwards.
type Snapshot struct {
	files map[string]*File
	order []string
}

// NewSnapshot builds a snapshot from scanned files.
func NewSnapshot(files ...*File) *Snapshot {
	s := &Snapshot{files: make(map[string]*File, len(files))}
	for _, f := range files {
		if _, exists := s.files[f.Path]; !exists {
			s.order = append(s.order, f.Path)
		}
		s.files[f.Path] = f
	}
	sort.Strings(s.order)
	return s
}

// Paths returns the file paths in lexicographic order.
func (s *Snapshot) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// File returns the scanned file for path.
func (s *Snapshot) File(path string) (*File, bool) {
	f, ok := s.files[path]
	return f, ok
}

// Entries returns the ordered entries of path, or nil if path was not scanned.
func (s *Snapshot) Entries(path string) []SourceEntry {
	if f, ok := s.files[path]; ok {
		return f.Entries
	}
	return nil
}

// Len returns the number of files.
func (s *Snapshot) Len() int { return len(s.order) }
