package publish

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "out/de/menu.properties", []byte("title=Titel\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "out/fr/menu.properties", []byte("title=Titre\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "out/de/help.json", []byte(`{"a":"b"}`), 0o644))

	data, err := Bundle(fs, "out")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"de/help.json", "de/menu.properties", "fr/menu.properties"}, names)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "title=Titel\n", string(content))

	again, err := Bundle(fs, "out")
	require.NoError(t, err)
	assert.Equal(t, data, again, "identical trees must give identical bundles")
}

func TestBundleErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Bundle(fs, "missing")
	assert.Error(t, err)

	require.NoError(t, fs.MkdirAll("empty", 0o755))
	_, err = Bundle(fs, "empty")
	assert.ErrorContains(t, err, "is empty")
}
