package reconcile

import (
	"fmt"
	"time"
)

// RemoteFileState is what the remote project knows about one source file.
type RemoteFileState struct {
	// Path is the file path relative to the source root.
	Path string `json:"path"`

	// Revision is the remote revision identifier of the file.
	Revision string `json:"revision"`

	// Keys maps each known translation key to the hash of its source text.
	Keys map[string]string `json:"keys"`

	// Progress maps a target locale to the file's completion percentage.
	Progress map[string]float64 `json:"progress"`
}

// ProjectState is the remote state of every file, keyed by path.
type ProjectState map[string]RemoteFileState

// Observed is the last observed completion per file and locale.
type Observed map[string]map[string]float64

// Get returns the observed completion of path in locale.
func (o Observed) Get(path, locale string) (float64, bool) {
	locales, ok := o[path]
	if !ok {
		return 0, false
	}
	v, ok := locales[locale]
	return v, ok
}

// Set records the completion of path in locale.
func (o Observed) Set(path, locale string, pct float64) {
	locales, ok := o[path]
	if !ok {
		locales = make(map[string]float64)
		o[path] = locales
	}
	locales[locale] = pct
}

// Clone returns a deep copy.
func (o Observed) Clone() Observed {
	out := make(Observed, len(o))
	for path, locales := range o {
		cp := make(map[string]float64, len(locales))
		for l, v := range locales {
			cp[l] = v
		}
		out[path] = cp
	}
	return out
}

// ActionKind is the variant of a planned Action.
type ActionKind string

const (
	// ActionUploadNew uploads a key unknown to the remote.
	ActionUploadNew ActionKind = "upload_new"
	// ActionUploadChanged uploads a key whose source text changed.
	ActionUploadChanged ActionKind = "upload_changed"
	// ActionDownload fetches translations of a file for one locale.
	ActionDownload ActionKind = "download"
	// ActionNoOp records a key already in agreement.
	ActionNoOp ActionKind = "noop"
)

// IsUpload reports whether k is one of the upload variants.
func (k ActionKind) IsUpload() bool {
	return k == ActionUploadNew || k == ActionUploadChanged
}

// Action is one planned step. Which fields are set depends on Kind.
type Action struct {
	// Kind selects the variant.
	Kind ActionKind `json:"kind"`

	// Path is the resource file the action belongs to.
	Path string `json:"path"`

	// Key is the translation key (uploads and NoOp).
	Key string `json:"key,omitempty"`

	// OldHash is the remote hash replaced by an UploadChanged.
	OldHash string `json:"old_hash,omitempty"`

	// NewHash is the local hash (uploads and NoOp).
	NewHash string `json:"new_hash,omitempty"`

	// Locale is the target locale of a Download.
	Locale string `json:"locale,omitempty"`

	// Progress is the remote completion that triggered a Download.
	Progress float64 `json:"progress,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case ActionDownload:
		return fmt.Sprintf("download(%s, %s)", a.Locale, a.Path)
	case ActionUploadChanged:
		return fmt.Sprintf("upload_changed(%s#%s, %.8s -> %.8s)", a.Path, a.Key, a.OldHash, a.NewHash)
	default:
		return fmt.Sprintf("%s(%s#%s)", a.Kind, a.Path, a.Key)
	}
}

// FilePlan is the ordered action list of one file.
type FilePlan struct {
	Path    string   `json:"path"`
	Actions []Action `json:"actions"`
}

// Orphan is a key known remotely but absent locally. Orphans are never deleted.
type Orphan struct {
	Path string `json:"path"`
	Key  string `json:"key"`
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	Files         int `json:"files"`
	UploadNew     int `json:"upload_new"`
	UploadChanged int `json:"upload_changed"`
	Downloads     int `json:"downloads"`
	NoOps         int `json:"noops"`
	Orphans       int `json:"orphans"`
}

// Plan is the ordered set of actions for one pass. It is computed fresh every run.
type Plan struct {
	// Files are in lexicographic path order.
	Files []FilePlan `json:"files"`

	// Orphans are sorted by path, then key.
	Orphans []Orphan `json:"orphans"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// Actions flattens the plan in execution order.
func (p *Plan) Actions() []Action {
	var out []Action
	for _, f := range p.Files {
		out = append(out, f.Actions...)
	}
	return out
}

// Pending reports whether the plan contains anything besides NoOps.
func (p *Plan) Pending() bool {
	return p.Summary.UploadNew+p.Summary.UploadChanged+p.Summary.Downloads > 0
}

// ResultState is the terminal state of one action.
type ResultState string

const (
	ResultSucceeded ResultState = "succeeded"
	ResultFailed    ResultState = "failed"
	ResultSkipped   ResultState = "skipped"
)

// ActionResult is the outcome of one action.
type ActionResult struct {
	Action Action      `json:"action"`
	State  ResultState `json:"state"`

	// Reason explains a failure or skip.
	Reason string `json:"reason,omitempty"`

	// Attempts counts remote calls made for the action.
	Attempts int `json:"attempts"`

	// Revision is the remote revision acknowledged by an upload.
	Revision string `json:"revision,omitempty"`

	// At is when the action reached its terminal state.
	At time.Time `json:"at"`
}

// Status is the run-level verdict.
type Status string

const (
	// StatusConverged means every action succeeded or was a NoOp.
	StatusConverged Status = "converged"
	// StatusPartiallyConverged means at least one action failed or was skipped.
	StatusPartiallyConverged Status = "partially_converged"
	// StatusFailed means the scan or the remote state fetch failed before any action ran.
	StatusFailed Status = "failed"
)

// RunOutcome aggregates one pass. It is consumed by the publish gate.
type RunOutcome struct {
	// RunID identifies the pass in logs and reports.
	RunID string `json:"run_id,omitempty"`

	Status Status `json:"status"`

	// Cancelled is set when the pass was stopped by its context.
	Cancelled bool `json:"cancelled"`

	// Error describes the precondition failure of a Failed run.
	Error string `json:"error,omitempty"`

	Results []ActionResult `json:"results"`
	Orphans []Orphan       `json:"orphans"`

	// Observed is the progress ledger to persist after this pass.
	Observed Observed `json:"-"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Failure is one entry of the failure report.
type Failure struct {
	File   string `json:"file"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// Failures lists every failed or skipped action with its reason.
func (o *RunOutcome) Failures() []Failure {
	var out []Failure
	for _, r := range o.Results {
		if r.State == ResultSucceeded {
			continue
		}
		out = append(out, Failure{
			File:   r.Action.Path,
			Action: r.Action.String(),
			Reason: fmt.Sprintf("%s: %s", r.State, r.Reason),
		})
	}
	return out
}

// Count returns how many results are in state s.
func (o *RunOutcome) Count(s ResultState) int {
	n := 0
	for _, r := range o.Results {
		if r.State == s {
			n++
		}
	}
	return n
}
