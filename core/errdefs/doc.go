// Package errdefs defines the error taxonomy shared by the scanner, the Crowdin
// client and the reconciliation engine.
//
// # Classes
//
//   - MalformedResourceError: a local resource file cannot be parsed. Aborts a run.
//   - RemoteUnavailableError: rate limiting, timeouts, transport failures and 5xx
//     responses. Transient; the engine retries these with backoff.
//   - ValidationError and NotFoundError: the remote rejected the request or the
//     resource does not exist. Permanent; never retried.
//   - CancelledError: the run was asked to stop.
//
// Callers classify errors with IsTransient, IsPermanent and IsCancelled, which all
// look through wrapped errors with errors.As.
package errdefs
