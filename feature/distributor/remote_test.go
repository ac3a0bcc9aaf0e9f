package distributor

import (
	"context"
	"errors"
	"testing"

	"crowdin-distributor/core/crowdin"
	"crowdin-distributor/core/errdefs"
	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrowdinRemote_FetchProjectState(t *testing.T) {
	api := newFakeCrowdin()
	menu := api.seed("/lang/menu.properties", "title=Menu\nok=OK\n")
	menu.progress["de"] = 100
	menu.progress["fr"] = 40
	api.seed("/lang/sub/help.json", `{"help":"Help"}`)
	api.seed("/other/ignored.properties", "x=y\n")

	r := NewCrowdinRemote(api, "/lang/")
	state, err := r.FetchProjectState(context.Background())
	require.NoError(t, err)

	require.Len(t, state, 2)
	got := state["menu.properties"]
	assert.Equal(t, "menu.properties", got.Path)
	assert.Equal(t, "1", got.Revision)
	assert.Equal(t, map[string]string{"title": resource.Hash("Menu"), "ok": resource.Hash("OK")}, got.Keys)
	assert.Equal(t, map[string]float64{"de": 100, "fr": 40}, got.Progress)

	assert.Contains(t, state, "sub/help.json")
	assert.NotContains(t, state, "ignored.properties")
}

func TestCrowdinRemote_FetchError(t *testing.T) {
	api := newFakeCrowdin()
	api.listErr = &errdefs.RemoteUnavailableError{Op: "list files", StatusCode: 503}

	_, err := NewCrowdinRemote(api, "").FetchProjectState(context.Background())
	assert.True(t, errdefs.IsTransient(err))
}

func TestCrowdinRemote_UploadExisting(t *testing.T) {
	api := newFakeCrowdin()
	api.seed("/menu.properties", "title=Menu\n")
	r := NewCrowdinRemote(api, "")

	_, err := r.FetchProjectState(context.Background())
	require.NoError(t, err)

	rev, err := r.UploadSourceFile(context.Background(), "menu.properties", []byte("title=Menu\nok=OK\n"))
	require.NoError(t, err)
	assert.Equal(t, "2", rev)
	assert.Contains(t, api.calls, "UpdateFile /menu.properties")

	state, err := r.FetchProjectState(context.Background())
	require.NoError(t, err)
	assert.Contains(t, state["menu.properties"].Keys, "ok")
}

func TestCrowdinRemote_UploadNewCreatesDirectories(t *testing.T) {
	api := newFakeCrowdin()
	r := NewCrowdinRemote(api, "lang")

	// no prior fetch: the remote lists files on demand
	rev, err := r.UploadSourceFile(context.Background(), "sub/deep/help.json", []byte(`{"help":"Help"}`))
	require.NoError(t, err)
	assert.Equal(t, "1", rev)

	assert.Contains(t, api.calls, "AddDirectory /lang")
	assert.Contains(t, api.calls, "AddDirectory /lang/sub")
	assert.Contains(t, api.calls, "AddDirectory /lang/sub/deep")
	assert.Contains(t, api.calls, "AddFile /lang/sub/deep/help.json")

	// a sibling reuses the created directories
	_, err = r.UploadSourceFile(context.Background(), "sub/deep/more.json", []byte(`{"more":"More"}`))
	require.NoError(t, err)
	dirs := 0
	for _, c := range api.calls {
		if len(c) > 12 && c[:12] == "AddDirectory" {
			dirs++
		}
	}
	assert.Equal(t, 3, dirs)
	assert.NotNil(t, api.byPath("/lang/sub/deep/more.json"))
}

func TestCrowdinRemote_UploadRejected(t *testing.T) {
	api := newFakeCrowdin()
	api.uploadErr["bad.properties"] = &errdefs.ValidationError{Op: "add storage", StatusCode: 400, Message: "file is broken"}
	r := NewCrowdinRemote(api, "")

	_, err := r.UploadSourceFile(context.Background(), "bad.properties", []byte("x=y\n"))
	var verr *errdefs.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, errdefs.IsPermanent(err))
}

func TestCrowdinRemote_DownloadTranslations(t *testing.T) {
	api := newFakeCrowdin()
	menu := api.seed("/menu.properties", "title=Menu\n")
	menu.translations["de"] = []byte("title=Menü\n")
	r := NewCrowdinRemote(api, "")

	content, err := r.DownloadTranslations(context.Background(), "de", "menu.properties")
	require.NoError(t, err)
	assert.Equal(t, "title=Menü\n", string(content))

	_, err = r.DownloadTranslations(context.Background(), "de", "missing.properties")
	var nf *errdefs.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = r.DownloadTranslations(context.Background(), "fr", "menu.properties")
	assert.True(t, errors.As(err, &nf))
}

// flakyCreate commits the first AddFile and then reports a transient failure.
// Later creates of an existing name are refused, as Crowdin does.
type flakyCreate struct {
	*fakeCrowdin
	failed bool
}

func (f *flakyCreate) AddFile(ctx context.Context, req crowdin.AddFileRequest) (crowdin.File, error) {
	if f.byPath("/"+req.Name) != nil {
		return crowdin.File{}, &errdefs.ValidationError{Op: "add file", StatusCode: 400, Message: "name must be unique"}
	}
	file, err := f.fakeCrowdin.AddFile(ctx, req)
	if err != nil || f.failed {
		return file, err
	}
	f.failed = true
	return crowdin.File{}, &errdefs.RemoteUnavailableError{Op: "add file", StatusCode: 504, Err: errors.New("gateway timeout")}
}

func TestCrowdinRemote_RetryAfterCommittedCreate(t *testing.T) {
	api := &flakyCreate{fakeCrowdin: newFakeCrowdin()}
	r := NewCrowdinRemote(api, "")

	_, err := r.FetchProjectState(context.Background())
	require.NoError(t, err)

	var rev string
	retrier := reconcile.NewRetrier(reconcile.RetryPolicy{MaxAttempts: 3}, reconcile.SleeperFunc(noSleep))
	res := retrier.Do(context.Background(), func(ctx context.Context) error {
		var err error
		rev, err = r.UploadSourceFile(ctx, "menu.properties", []byte("title=Menu\nok=OK\n"))
		return err
	})

	require.NoError(t, res.Err)
	assert.Equal(t, reconcile.RetrySucceeded, res.State)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, "2", rev)
	assert.Contains(t, api.calls, "UpdateFile /menu.properties")
}
