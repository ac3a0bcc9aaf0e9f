package distributor

import (
	"context"
	"fmt"
	"strings"

	"crowdin-distributor/core/reconcile"
	"crowdin-distributor/core/resource"

	"github.com/pmezard/go-difflib/difflib"
)

// TextSource returns the remote source texts of a file keyed by identifier.
type TextSource interface {
	SourceTexts(ctx context.Context, path string) (map[string]string, error)
}

// StringDiff is the unified diff of one changed source string.
type StringDiff struct {
	Path    string `json:"path"`
	Key     string `json:"key"`
	Unified string `json:"unified"`
}

// ChangedStrings renders a unified diff for every upload_changed action of
// plan, remote text first. Remote texts are fetched once per file.
func ChangedStrings(ctx context.Context, texts TextSource, snapshot *resource.Snapshot, plan *reconcile.Plan) ([]StringDiff, error) {
	var out []StringDiff
	for _, fp := range plan.Files {
		var changed []reconcile.Action
		for _, a := range fp.Actions {
			if a.Kind == reconcile.ActionUploadChanged {
				changed = append(changed, a)
			}
		}
		if len(changed) == 0 {
			continue
		}

		remote, err := texts.SourceTexts(ctx, fp.Path)
		if err != nil {
			return nil, err
		}
		local := map[string]string{}
		if f, ok := snapshot.File(fp.Path); ok {
			local = f.Values()
		}

		for _, a := range changed {
			unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(withNewline(remote[a.Key])),
				B:        difflib.SplitLines(withNewline(local[a.Key])),
				FromFile: "crowdin/" + fp.Path + "#" + a.Key,
				ToFile:   "local/" + fp.Path + "#" + a.Key,
				Context:  2,
			})
			if err != nil {
				return nil, fmt.Errorf("diffing %s#%s: %w", fp.Path, a.Key, err)
			}
			out = append(out, StringDiff{Path: fp.Path, Key: a.Key, Unified: unified})
		}
	}
	return out, nil
}

func withNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
