// Package loader registers HTTP features with the fiber app.
//
// A Feature names itself, reports whether its dependencies are configured and
// mounts its routes in Load. Manager.LoadAll mounts enabled features in
// registration order and logs the ones it skips.
package loader
