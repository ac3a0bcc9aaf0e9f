package resource

import (
	"context"
	"testing"

	"crowdin-distributor/core/errdefs"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemFS(t *testing.T, files map[string]string) FS {
	t.Helper()
	fs := NewFS(afero.NewMemMapFs())
	for name, content := range files {
		require.NoError(t, fs.WriteFile(name, []byte(content)))
	}
	return fs
}

func TestFS_ListResourceFiles(t *testing.T) {
	fs := newMemFS(t, map[string]string{
		"src/menu.properties":      "title=Menu\n",
		"src/ui/dialog.properties": "ok=OK\n",
		"src/ui/notes.txt":         "ignored",
		"src/strings.json":         "{}",
		"other/outside.properties": "x=y\n",
	})

	paths, err := fs.ListResourceFiles("src", []string{"*.properties"})
	require.NoError(t, err)
	assert.Equal(t, []string{"menu.properties", "ui/dialog.properties"}, paths)

	paths, err = fs.ListResourceFiles("src", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"menu.properties", "strings.json", "ui/dialog.properties", "ui/notes.txt"}, paths)

	paths, err = fs.ListResourceFiles("src", []string{"ui/*.properties"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ui/dialog.properties"}, paths)
}

func TestScanner_Scan(t *testing.T) {
	fs := newMemFS(t, map[string]string{
		"src/menu.properties": "title=Menu\nok=OK\n",
		"src/ui.json":         `{"cancel":"Cancel"}`,
	})
	scanner := NewScanner(fs, DefaultRegistry())

	snapshot, err := scanner.Scan(context.Background(), "src", []string{"ui.json", "menu.properties"})
	require.NoError(t, err)

	assert.Equal(t, []string{"menu.properties", "ui.json"}, snapshot.Paths())
	assert.Equal(t, 2, snapshot.Len())
	assert.Equal(t, []SourceEntry{NewEntry("title", "Menu"), NewEntry("ok", "OK")}, snapshot.Entries("menu.properties"))

	f, ok := snapshot.File("menu.properties")
	require.True(t, ok)
	assert.Equal(t, []byte("title=Menu\nok=OK\n"), f.Content)
	assert.Equal(t, map[string]string{"title": "Menu", "ok": "OK"}, f.Values())

	assert.Nil(t, snapshot.Entries("missing.properties"))
}

func TestScanner_MalformedAbortsScan(t *testing.T) {
	fs := newMemFS(t, map[string]string{
		"src/a.properties": "title=Menu\n",
		"src/b.properties": "ok=OK\n=broken\n",
	})
	scanner := NewScanner(fs, DefaultRegistry())

	snapshot, err := scanner.Scan(context.Background(), "src", []string{"a.properties", "b.properties"})
	assert.Nil(t, snapshot)

	var malformed *errdefs.MalformedResourceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "b.properties", malformed.Path)
	assert.Equal(t, 2, malformed.Line)
	assert.True(t, errdefs.IsPermanent(err))
}

func TestScanner_MissingFileAndUnknownFormat(t *testing.T) {
	fs := newMemFS(t, map[string]string{"src/readme.md": "# hi"})
	scanner := NewScanner(fs, DefaultRegistry())

	_, err := scanner.Scan(context.Background(), "src", []string{"gone.properties"})
	var malformed *errdefs.MalformedResourceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "gone.properties", malformed.Path)

	_, err = scanner.Scan(context.Background(), "src", []string{"readme.md"})
	require.ErrorAs(t, err, &malformed)
}

func TestScanner_Cancelled(t *testing.T) {
	fs := newMemFS(t, map[string]string{"src/a.properties": "title=Menu\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(fs, DefaultRegistry()).Scan(ctx, "src", []string{"a.properties"})
	assert.True(t, errdefs.IsCancelled(err))
}

func TestHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
	assert.Equal(t, Hash("OK"), NewEntry("ok", "OK").Hash)
	assert.NotEqual(t, Hash("OK"), Hash("Ok"))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		pattern  string
		locale   string
		original string
		expect   string
	}{
		{"translations/%locale%/%original_path%", "de", "ui/menu.properties", "translations/de/ui/menu.properties"},
		{"out/%file_name%_%locale_with_underscore%.%file_extension%", "pt-BR", "ui/menu.properties", "out/menu_pt_BR.properties"},
	}
	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, OutputPath(tt.pattern, tt.locale, tt.original))
		})
	}
}
