package publish

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// bundleEpoch is stamped on every zip entry so identical trees give identical bundles.
var bundleEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Bundle zips every regular file under dir, with paths relative to dir.
func Bundle(fs afero.Fs, dir string) ([]byte, error) {
	var files []string
	err := afero.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("bundle directory %s is empty", dir)
	}
	sort.Strings(files)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range files {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return nil, err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     filepath.ToSlash(rel),
			Method:   zip.Deflate,
			Modified: bundleEpoch,
		})
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", rel, err)
		}
		f, err := fs.Open(p)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", p, err)
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("compressing %s: %w", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finishing bundle: %w", err)
	}
	return buf.Bytes(), nil
}
