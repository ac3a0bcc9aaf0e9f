// Package crowdin is a small Crowdin API v2 client covering the calls needed to
// reconcile source files and fetch translations.
//
// Every response body passes through decodeEnvelope, which classifies it as one of
// the four shapes Crowdin produces (single "data" object, paginated "data" list,
// "error" object, "errors" list) before any typed decoding happens. HTTP failures
// are mapped onto the errdefs taxonomy:
//
//   - 429, 5xx and transport failures: *errdefs.RemoteUnavailableError
//   - 404: *errdefs.NotFoundError
//   - any other 4xx: *errdefs.ValidationError
//
// Rate limited requests are retried inside the client a bounded number of times
// before the error is surfaced.
package crowdin
