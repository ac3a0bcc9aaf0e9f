package ledger

import (
	"context"
	"testing"

	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/storage/mocks"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleObserved() reconcile.Observed {
	o := reconcile.Observed{}
	o.Set("menu.properties", "de", 100)
	o.Set("menu.properties", "fr", 42.5)
	o.Set("lang/help.json", "de", 10)
	return o
}

func TestNew(t *testing.T) {
	t.Run("Default Is Memory", func(t *testing.T) {
		s, err := New(Config{}, Deps{})
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("File", func(t *testing.T) {
		s, err := New(Config{Backend: "FILE", Path: "ledger.yaml"}, Deps{FS: afero.NewMemMapFs()})
		require.NoError(t, err)
		assert.IsType(t, &FileStore{}, s)
	})

	t.Run("S3 Without Client", func(t *testing.T) {
		_, err := New(Config{Backend: BackendS3}, Deps{})
		assert.ErrorContains(t, err, "requires a storage client")
	})

	t.Run("S3", func(t *testing.T) {
		s, err := New(Config{Backend: BackendS3, ObjectKey: "k"}, Deps{Storage: new(mocks.Client), Bucket: "b"})
		require.NoError(t, err)
		assert.IsType(t, &ObjectStore{}, s)
	})

	t.Run("Database Without Connection", func(t *testing.T) {
		_, err := New(Config{Backend: BackendDatabase}, Deps{})
		assert.ErrorContains(t, err, "requires a database connection")
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := New(Config{Backend: "redis"}, Deps{})
		assert.ErrorContains(t, err, "unknown ledger backend")
		assert.False(t, IsValidBackend("redis"))
		assert.True(t, IsValidBackend("database"))
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	in := sampleObserved()
	require.NoError(t, s.Save(ctx, in))

	// later mutation of the caller's map must not leak into the store
	in.Set("menu.properties", "de", 0)

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleObserved(), loaded)

	require.NoError(t, s.Reset(ctx))
	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
