package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crowdin-distributor/core/resource"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// snapshotOf scans files through an in-memory filesystem.
func snapshotOf(t *testing.T, files map[string]string) *resource.Snapshot {
	t.Helper()
	fs := resource.NewFS(afero.NewMemMapFs())
	paths := make([]string, 0, len(files))
	for p, content := range files {
		require.NoError(t, fs.WriteFile("src/"+p, []byte(content)))
		paths = append(paths, p)
	}
	sort.Strings(paths)
	snap, err := resource.NewScanner(fs, resource.DefaultRegistry()).Scan(context.Background(), "src", paths)
	require.NoError(t, err)
	return snap
}

type fakeClock struct{ n atomic.Int64 }

func (c *fakeClock) Now() time.Time {
	return time.Unix(0, 0).Add(time.Duration(c.n.Add(1)) * time.Second)
}

var noSleep = SleeperFunc(func(ctx context.Context, d time.Duration) error { return ctx.Err() })

// fakeRemote is an in-memory translation project.
type fakeRemote struct {
	mu           sync.Mutex
	files        map[string]map[string]string
	progress     map[string]map[string]float64
	translations map[string][]byte
	uploadErrs   map[string][]error
	downloadErrs map[string][]error
	fetchErr     error
	revisions    int
	calls        []string
	callCtxErrs  []error
	onUpload     func(path string)

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		files:        make(map[string]map[string]string),
		progress:     make(map[string]map[string]float64),
		translations: make(map[string][]byte),
		uploadErrs:   make(map[string][]error),
		downloadErrs: make(map[string][]error),
	}
}

func (f *fakeRemote) withFile(path string, values map[string]string, progress map[string]float64) *fakeRemote {
	keys := make(map[string]string, len(values))
	for k, v := range values {
		keys[k] = resource.Hash(v)
	}
	f.files[path] = keys
	if progress != nil {
		f.progress[path] = progress
	}
	return f
}

func (f *fakeRemote) enter() {
	n := f.inFlight.Add(1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
}

func (f *fakeRemote) leave() { f.inFlight.Add(-1) }

func (f *fakeRemote) FetchProjectState(ctx context.Context) (ProjectState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "fetch")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	state := make(ProjectState, len(f.files))
	for path, keys := range f.files {
		cpKeys := make(map[string]string, len(keys))
		for k, v := range keys {
			cpKeys[k] = v
		}
		cpProgress := make(map[string]float64)
		for l, v := range f.progress[path] {
			cpProgress[l] = v
		}
		state[path] = RemoteFileState{Path: path, Revision: "r", Keys: cpKeys, Progress: cpProgress}
	}
	return state, nil
}

func (f *fakeRemote) UploadSourceFile(ctx context.Context, path string, content []byte) (string, error) {
	f.enter()
	defer f.leave()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "upload:"+path)
	f.callCtxErrs = append(f.callCtxErrs, ctx.Err())
	if f.onUpload != nil {
		f.onUpload(path)
	}
	if errs := f.uploadErrs[path]; len(errs) > 0 {
		err := errs[0]
		if len(errs) > 1 {
			f.uploadErrs[path] = errs[1:]
		}
		if err != nil {
			return "", err
		}
	}

	values, err := resource.DefaultRegistry().ParseValues(path, content)
	if err != nil {
		return "", err
	}
	keys := make(map[string]string, len(values))
	for k, v := range values {
		keys[k] = resource.Hash(v)
	}
	f.files[path] = keys
	f.revisions++
	return fmt.Sprintf("rev-%d", f.revisions), nil
}

func (f *fakeRemote) DownloadTranslations(ctx context.Context, locale, path string) ([]byte, error) {
	f.enter()
	defer f.leave()

	f.mu.Lock()
	defer f.mu.Unlock()
	id := locale + "/" + path
	f.calls = append(f.calls, "download:"+id)
	if errs := f.downloadErrs[id]; len(errs) > 0 {
		err := errs[0]
		if len(errs) > 1 {
			f.downloadErrs[id] = errs[1:]
		}
		if err != nil {
			return nil, err
		}
	}
	return f.translations[id], nil
}

func (f *fakeRemote) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// recordingSink stores accepted downloads.
type recordingSink struct {
	mu       sync.Mutex
	accepted map[string][]byte
	reject   map[string]error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{accepted: make(map[string][]byte), reject: make(map[string]error)}
}

func (s *recordingSink) Accept(ctx context.Context, locale, path string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reject[locale+"/"+path]; err != nil {
		return err
	}
	s.accepted[locale+"/"+path] = content
	return nil
}
