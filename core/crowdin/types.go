package crowdin

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

// File is a source file of the project.
type File struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	DirectoryID *int64 `json:"directoryId"`
	RevisionID  int64  `json:"revisionId"`
	Type        string `json:"type"`
}

// Directory is a project directory.
type Directory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	DirectoryID *int64 `json:"directoryId"`
}

// SourceString is one source string of a file.
type SourceString struct {
	ID         int64      `json:"id"`
	FileID     int64      `json:"fileId"`
	Identifier string     `json:"identifier"`
	Text       StringText `json:"text"`
}

// StringText is either plain text or a set of plural forms.
type StringText struct {
	Plain  string
	Plural map[string]string
}

func (t *StringText) UnmarshalJSON(b []byte) error {
	var plain string
	if err := json.Unmarshal(b, &plain); err == nil {
		*t = StringText{Plain: plain}
		return nil
	}
	var plural map[string]string
	if err := json.Unmarshal(b, &plural); err == nil {
		*t = StringText{Plural: plural}
		return nil
	}
	return errors.New("string text is neither text nor plural forms")
}

func (t StringText) MarshalJSON() ([]byte, error) {
	if t.Plural != nil {
		return json.Marshal(t.Plural)
	}
	return json.Marshal(t.Plain)
}

// Value flattens the text. Plural forms are joined in form-name order.
func (t StringText) Value() string {
	if t.Plural == nil {
		return t.Plain
	}
	forms := make([]string, 0, len(t.Plural))
	for k := range t.Plural {
		forms = append(forms, k)
	}
	sort.Strings(forms)
	values := make([]string, 0, len(forms))
	for _, f := range forms {
		values = append(values, t.Plural[f])
	}
	return strings.Join(values, "\n")
}

// LanguageProgress is the completion of one file for one target language.
type LanguageProgress struct {
	LanguageID          string `json:"languageId"`
	TranslationProgress int    `json:"translationProgress"`
	ApprovalProgress    int    `json:"approvalProgress"`
}

// Storage is an uploaded blob referenced by file operations.
type Storage struct {
	ID       int64  `json:"id"`
	FileName string `json:"fileName"`
}

// DownloadLink is a short-lived signed URL.
type DownloadLink struct {
	URL      string `json:"url"`
	ExpireIn string `json:"expireIn"`
}

// BuildStatus is the state of a project translation build.
type BuildStatus string

const (
	BuildCreated    BuildStatus = "created"
	BuildInProgress BuildStatus = "inProgress"
	BuildCanceled   BuildStatus = "canceled"
	BuildFailed     BuildStatus = "failed"
	BuildFinished   BuildStatus = "finished"
)

// Done reports whether the build reached a terminal state.
func (s BuildStatus) Done() bool {
	return s == BuildCanceled || s == BuildFailed || s == BuildFinished
}

// ProjectBuild is a project-wide translation build.
type ProjectBuild struct {
	ID       int64       `json:"id"`
	Status   BuildStatus `json:"status"`
	Progress int         `json:"progress"`
}

// AddFileRequest creates a source file from a storage.
type AddFileRequest struct {
	StorageID   int64  `json:"storageId"`
	Name        string `json:"name"`
	DirectoryID *int64 `json:"directoryId,omitempty"`
}

type updateFileRequest struct {
	StorageID    int64  `json:"storageId"`
	UpdateOption string `json:"updateOption,omitempty"`
}

type addDirectoryRequest struct {
	Name        string `json:"name"`
	DirectoryID *int64 `json:"directoryId,omitempty"`
}

type buildFileRequest struct {
	TargetLanguageID string `json:"targetLanguageId"`
}

type buildProjectRequest struct {
	SkipUntranslatedStrings bool `json:"skipUntranslatedStrings"`
}
