package reconcile

import (
	"sort"

	"crowdin-distributor/core/resource"
)

// Diff computes the plan that brings the remote project in line with snapshot.
// It is pure: the same inputs always produce the same plan.
func Diff(snapshot *resource.Snapshot, state ProjectState, observed Observed, locales []string) *Plan {
	plan := &Plan{Files: []FilePlan{}, Orphans: []Orphan{}}

	targets := append([]string(nil), locales...)
	sort.Strings(targets)

	for _, path := range snapshot.Paths() {
		entries := snapshot.Entries(path)
		remote, known := state[path]

		var uploads, noops, downloads []Action
		local := make(map[string]struct{}, len(entries))

		for _, e := range entries {
			local[e.Key] = struct{}{}
			oldHash, present := "", false
			if known {
				oldHash, present = remote.Keys[e.Key]
			}
			switch {
			case !present:
				uploads = append(uploads, Action{Kind: ActionUploadNew, Path: path, Key: e.Key, NewHash: e.Hash})
				plan.Summary.UploadNew++
			case oldHash != e.Hash:
				uploads = append(uploads, Action{Kind: ActionUploadChanged, Path: path, Key: e.Key, OldHash: oldHash, NewHash: e.Hash})
				plan.Summary.UploadChanged++
			default:
				noops = append(noops, Action{Kind: ActionNoOp, Path: path, Key: e.Key, NewHash: e.Hash})
				plan.Summary.NoOps++
			}
		}

		if known {
			plan.Orphans = append(plan.Orphans, orphansOf(path, remote.Keys, local)...)

			for _, locale := range targets {
				pct, ok := remote.Progress[locale]
				if !ok {
					continue
				}
				if prev, seen := observed.Get(path, locale); seen && pct <= prev {
					continue
				}
				downloads = append(downloads, Action{Kind: ActionDownload, Path: path, Locale: locale, Progress: pct})
				plan.Summary.Downloads++
			}
		}

		actions := make([]Action, 0, len(uploads)+len(noops)+len(downloads))
		actions = append(actions, uploads...)
		actions = append(actions, noops...)
		actions = append(actions, downloads...)
		plan.Files = append(plan.Files, FilePlan{Path: path, Actions: actions})
	}

	// Remote files without a local counterpart are orphaned as a whole.
	remotePaths := make([]string, 0, len(state))
	for path := range state {
		if _, ok := snapshot.File(path); !ok {
			remotePaths = append(remotePaths, path)
		}
	}
	sort.Strings(remotePaths)
	for _, path := range remotePaths {
		plan.Orphans = append(plan.Orphans, orphansOf(path, state[path].Keys, nil)...)
	}

	plan.Summary.Files = len(plan.Files)
	plan.Summary.Orphans = len(plan.Orphans)
	return plan
}

func orphansOf(path string, remote map[string]string, local map[string]struct{}) []Orphan {
	var keys []string
	for k := range remote {
		if _, ok := local[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]Orphan, 0, len(keys))
	for _, k := range keys {
		out = append(out, Orphan{Path: path, Key: k})
	}
	return out
}

// NextObserved returns the ledger to persist after executing plan.
//
// Completion of every planned file and target locale is recorded as seen in
// state, except for downloads that did not succeed. Those keep their previous
// value so the next pass schedules them again.
func NextObserved(prev Observed, state ProjectState, plan *Plan, results []ActionResult, locales []string) Observed {
	next := prev.Clone()

	pending := make(map[[2]string]bool)
	for _, a := range plan.Actions() {
		if a.Kind == ActionDownload {
			pending[[2]string{a.Path, a.Locale}] = true
		}
	}
	for _, r := range results {
		if r.Action.Kind == ActionDownload && r.State == ResultSucceeded {
			delete(pending, [2]string{r.Action.Path, r.Action.Locale})
		}
	}

	for _, f := range plan.Files {
		remote, ok := state[f.Path]
		if !ok {
			continue
		}
		for _, locale := range locales {
			pct, ok := remote.Progress[locale]
			if !ok || pending[[2]string{f.Path, locale}] {
				continue
			}
			next.Set(f.Path, locale, pct)
		}
	}
	return next
}
