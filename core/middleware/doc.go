// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the run endpoints. Paths listed as
//     public (the health check) are served without a key.
//   - rayid: Assigns a Request ID (RayID) to every incoming request,
//     injecting it into the context and response headers for tracing.
//
// RayID must be registered first so that auth failures are traceable.
package middleware
