package distributor

import (
	"context"
	"testing"

	"crowdin-distributor/core/resource"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSink(t *testing.T) (*FileSink, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	snap := resource.NewSnapshot(&resource.File{
		Path: "ui/menu.properties",
		Entries: []resource.SourceEntry{
			resource.NewEntry("title", "Menu"),
			resource.NewEntry("greet", "Hello {0}"),
		},
	})
	sink := NewFileSink(resource.NewFS(fs), resource.DefaultRegistry(), snap, "out", "%locale%/%original_path%")
	return sink, fs
}

func TestFileSink(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes Valid Translation", func(t *testing.T) {
		sink, fs := newSink(t)
		content := []byte("title=Menü\ngreet=Hallo {0}\n")

		require.NoError(t, sink.Accept(ctx, "de", "ui/menu.properties", content))

		got, err := afero.ReadFile(fs, "out/de/ui/menu.properties")
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("Rejects Format Mismatch", func(t *testing.T) {
		sink, fs := newSink(t)
		err := sink.Accept(ctx, "de", "ui/menu.properties", []byte("greet=Hallo\n"))
		assert.ErrorContains(t, err, "entry 'greet' in de/ui/menu.properties has 0 formats instead of 1")

		exists, _ := afero.Exists(fs, "out/de/ui/menu.properties")
		assert.False(t, exists)
	})

	t.Run("Rejects Unknown Key", func(t *testing.T) {
		sink, _ := newSink(t)
		err := sink.Accept(ctx, "fr", "ui/menu.properties", []byte("extra=Extra\n"))
		assert.ErrorContains(t, err, "no corresponding source entry")
	})

	t.Run("Rejects Unparseable", func(t *testing.T) {
		sink, _ := newSink(t)
		err := sink.Accept(ctx, "fr", "ui/menu.properties", []byte("title=a\ntitle=b\n"))
		assert.ErrorContains(t, err, "parsing fr translation of ui/menu.properties")
	})

	t.Run("Rejects Unknown Source", func(t *testing.T) {
		sink, _ := newSink(t)
		err := sink.Accept(ctx, "fr", "other.properties", []byte("a=b\n"))
		assert.ErrorContains(t, err, "no local source for other.properties")
	})
}
