package reconcile

import "context"

// Remote is the translation service as seen by the engine.
// Implementations map their failures onto the errdefs taxonomy so the
// retrier can tell transient from permanent errors.
type Remote interface {
	// FetchProjectState returns the state of every remote file keyed by path.
	FetchProjectState(ctx context.Context) (ProjectState, error)

	// UploadSourceFile replaces (or creates) the remote source file at path and
	// returns the acknowledged revision.
	UploadSourceFile(ctx context.Context, path string, content []byte) (string, error)

	// DownloadTranslations returns the translated content of path for locale.
	DownloadTranslations(ctx context.Context, locale, path string) ([]byte, error)
}

// Sink receives downloaded translations. An error rejects the download
// permanently, e.g. when the content fails validation against its source.
type Sink interface {
	Accept(ctx context.Context, locale, path string, content []byte) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, locale, path string, content []byte) error

func (f SinkFunc) Accept(ctx context.Context, locale, path string, content []byte) error {
	return f(ctx, locale, path, content)
}

// DiscardSink accepts and drops every download.
var DiscardSink Sink = SinkFunc(func(context.Context, string, string, []byte) error { return nil })
