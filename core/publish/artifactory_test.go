package publish

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactoryPublisher(t *testing.T) {
	content := []byte("PK fake zip")
	var gotPath, gotUser, gotPass, gotSum string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		gotSum = r.Header.Get("X-Checksum-Sha1")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p, err := NewArtifactoryPublisher(Config{
		ContextURL:         srv.URL + "/artifactory/",
		SnapshotRepository: "libs-snapshot-local",
		ReleaseRepository:  "libs-release-local",
		Username:           "deployer",
		Password:           "hunter2",
	})
	require.NoError(t, err)

	coords := Coordinates{Group: "org.enginehub", Artifact: "lang", Version: "1.0-SNAPSHOT"}
	url, err := p.Publish(context.Background(), Artifact{Coordinates: coords, Classifier: "bundle", Content: content})
	require.NoError(t, err)

	sum := sha1.Sum(content)
	assert.Equal(t, "/artifactory/libs-snapshot-local/org/enginehub/lang/1.0-SNAPSHOT/lang-1.0-SNAPSHOT-bundle.zip", gotPath)
	assert.Equal(t, srv.URL+gotPath, url)
	assert.Equal(t, "deployer", gotUser)
	assert.Equal(t, "hunter2", gotPass)
	assert.Equal(t, hex.EncodeToString(sum[:]), gotSum)
	assert.Equal(t, content, gotBody)
}

func TestArtifactoryRepository(t *testing.T) {
	p, err := NewArtifactoryPublisher(Config{ContextURL: "http://x", SnapshotRepository: "snap", ReleaseRepository: "rel"})
	require.NoError(t, err)

	assert.Equal(t, "snap", p.Repository(Coordinates{Version: "2.0-SNAPSHOT"}))
	assert.Equal(t, "rel", p.Repository(Coordinates{Version: "2.0"}))

	p, err = NewArtifactoryPublisher(Config{ContextURL: "http://x", Repository: "custom", SnapshotRepository: "snap"})
	require.NoError(t, err)
	assert.Equal(t, "custom", p.Repository(Coordinates{Version: "2.0-SNAPSHOT"}))
}

func TestArtifactoryErrors(t *testing.T) {
	_, err := NewArtifactoryPublisher(Config{})
	assert.ErrorContains(t, err, "context_url is not set")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("not allowed"))
	}))
	defer srv.Close()

	p, err := NewArtifactoryPublisher(Config{ContextURL: srv.URL, ReleaseRepository: "rel"})
	require.NoError(t, err)

	coords := Coordinates{Group: "g", Artifact: "a", Version: "1"}
	_, err = p.Publish(context.Background(), Artifact{Coordinates: coords, Content: []byte("zip")})
	assert.ErrorContains(t, err, "status 403: not allowed")

	_, err = p.Publish(context.Background(), Artifact{Coordinates: coords})
	assert.ErrorContains(t, err, "artifact is empty")
}
