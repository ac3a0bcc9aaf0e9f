package distributor

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"crowdin-distributor/core/crowdin"
	"crowdin-distributor/core/errdefs"
	"crowdin-distributor/core/resource"

	"github.com/spf13/afero"
)

type fakeFile struct {
	file         crowdin.File
	strings      []crowdin.SourceString
	progress     map[string]int
	translations map[string][]byte
}

// fakeCrowdin is an in-memory Crowdin project.
type fakeCrowdin struct {
	mu       sync.Mutex
	registry *resource.Registry
	nextID   int64
	files    map[int64]*fakeFile
	dirs     map[int64]crowdin.Directory
	storages map[int64][]byte

	uploadErr map[string]error
	listErr   error
	calls     []string

	builds      []crowdin.ProjectBuild
	buildZip    []byte
	buildStatus int
}

func newFakeCrowdin() *fakeCrowdin {
	return &fakeCrowdin{
		registry:  resource.DefaultRegistry(),
		nextID:    100,
		files:     map[int64]*fakeFile{},
		dirs:      map[int64]crowdin.Directory{},
		storages:  map[int64][]byte{},
		uploadErr: map[string]error{},
	}
}

func (f *fakeCrowdin) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeCrowdin) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// seed adds a remote file at remotePath with content.
func (f *fakeCrowdin) seed(remotePath string, content string) *fakeFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	ff := &fakeFile{
		file:         crowdin.File{ID: f.id(), Name: path.Base(remotePath), Path: remotePath, RevisionID: 1},
		progress:     map[string]int{},
		translations: map[string][]byte{},
	}
	f.setContent(ff, []byte(content))
	f.files[ff.file.ID] = ff
	return ff
}

func (f *fakeCrowdin) byPath(remotePath string) *fakeFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ff := range f.files {
		if ff.file.Path == remotePath {
			return ff
		}
	}
	return nil
}

func (f *fakeCrowdin) setContent(ff *fakeFile, content []byte) {
	values, err := f.registry.ParseValues(ff.file.Name, content)
	if err != nil {
		panic(err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ff.strings = ff.strings[:0]
	for i, k := range keys {
		ff.strings = append(ff.strings, crowdin.SourceString{
			ID: int64(i + 1), FileID: ff.file.ID, Identifier: k, Text: crowdin.StringText{Plain: values[k]},
		})
	}
}

func (f *fakeCrowdin) ListFiles(ctx context.Context) ([]crowdin.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListFiles")
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]crowdin.File, 0, len(f.files))
	for _, ff := range f.files {
		out = append(out, ff.file)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCrowdin) ListStrings(ctx context.Context, fileID int64) ([]crowdin.SourceString, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ff, ok := f.files[fileID]
	if !ok {
		return nil, &errdefs.NotFoundError{Op: "list strings"}
	}
	return append([]crowdin.SourceString(nil), ff.strings...), nil
}

func (f *fakeCrowdin) FileProgress(ctx context.Context, fileID int64) ([]crowdin.LanguageProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ff, ok := f.files[fileID]
	if !ok {
		return nil, &errdefs.NotFoundError{Op: "file progress"}
	}
	var out []crowdin.LanguageProgress
	for lang, pct := range ff.progress {
		out = append(out, crowdin.LanguageProgress{LanguageID: lang, TranslationProgress: pct})
	}
	return out, nil
}

func (f *fakeCrowdin) ListDirectories(ctx context.Context) ([]crowdin.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListDirectories")
	out := make([]crowdin.Directory, 0, len(f.dirs))
	for _, d := range f.dirs {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeCrowdin) AddDirectory(ctx context.Context, name string, parentID *int64) (crowdin.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parent := ""
	if parentID != nil {
		parent = f.dirs[*parentID].Path
	}
	d := crowdin.Directory{ID: f.id(), Name: name, Path: parent + "/" + name, DirectoryID: parentID}
	f.dirs[d.ID] = d
	f.record("AddDirectory %s", d.Path)
	return d, nil
}

func (f *fakeCrowdin) AddStorage(ctx context.Context, fileName string, content []byte) (crowdin.Storage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[fileName]; err != nil {
		return crowdin.Storage{}, err
	}
	s := crowdin.Storage{ID: f.id(), FileName: fileName}
	f.storages[s.ID] = append([]byte(nil), content...)
	return s, nil
}

func (f *fakeCrowdin) AddFile(ctx context.Context, req crowdin.AddFileRequest) (crowdin.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dir := ""
	if req.DirectoryID != nil {
		dir = f.dirs[*req.DirectoryID].Path
	}
	ff := &fakeFile{
		file:         crowdin.File{ID: f.id(), Name: req.Name, Path: dir + "/" + req.Name, DirectoryID: req.DirectoryID, RevisionID: 1},
		progress:     map[string]int{},
		translations: map[string][]byte{},
	}
	f.setContent(ff, f.storages[req.StorageID])
	f.files[ff.file.ID] = ff
	f.record("AddFile %s", ff.file.Path)
	return ff.file, nil
}

func (f *fakeCrowdin) UpdateFile(ctx context.Context, fileID, storageID int64) (crowdin.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ff, ok := f.files[fileID]
	if !ok {
		return crowdin.File{}, &errdefs.NotFoundError{Op: "update file"}
	}
	ff.file.RevisionID++
	f.setContent(ff, f.storages[storageID])
	f.record("UpdateFile %s", ff.file.Path)
	return ff.file, nil
}

func (f *fakeCrowdin) BuildFileTranslation(ctx context.Context, fileID int64, languageID string) (crowdin.DownloadLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[fileID]; !ok {
		return crowdin.DownloadLink{}, &errdefs.NotFoundError{Op: "build file translation"}
	}
	f.record("BuildFileTranslation %d %s", fileID, languageID)
	return crowdin.DownloadLink{URL: fmt.Sprintf("translation://%d/%s", fileID, languageID)}, nil
}

func (f *fakeCrowdin) Fetch(ctx context.Context, link crowdin.DownloadLink) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.HasPrefix(link.URL, "build://") {
		return f.buildZip, nil
	}
	idPart, lang, _ := strings.Cut(strings.TrimPrefix(link.URL, "translation://"), "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return nil, err
	}
	ff, ok := f.files[id]
	if !ok {
		return nil, &errdefs.NotFoundError{Op: "fetch"}
	}
	content, ok := ff.translations[lang]
	if !ok {
		return nil, &errdefs.NotFoundError{Op: "fetch"}
	}
	return content, nil
}

func (f *fakeCrowdin) BuildProject(ctx context.Context, skipUntranslated bool) (crowdin.ProjectBuild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BuildProject %t", skipUntranslated)
	return f.nextBuild(), nil
}

func (f *fakeCrowdin) BuildStatus(ctx context.Context, buildID int64) (crowdin.ProjectBuild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BuildStatus %d", buildID)
	return f.nextBuild(), nil
}

func (f *fakeCrowdin) nextBuild() crowdin.ProjectBuild {
	b := f.builds[f.buildStatus]
	if f.buildStatus < len(f.builds)-1 {
		f.buildStatus++
	}
	return b
}

func (f *fakeCrowdin) DownloadBuild(ctx context.Context, buildID int64) (crowdin.DownloadLink, error) {
	return crowdin.DownloadLink{URL: fmt.Sprintf("build://%d", buildID)}, nil
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func writeFiles(fs afero.Fs, files map[string]string) {
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			panic(err)
		}
	}
}
