// Package resource reads source-language resource files and normalizes them into
// ordered key/value entries.
//
// Files are reached through the FS accessor, which wraps an afero filesystem so
// production code uses the OS while tests run against an in-memory tree. Parsing
// is delegated to a Registry of format parsers selected by file extension:
//
//   - .properties (Java properties)
//   - .json (flat or nested string maps)
//   - .yaml / .yml
//   - .toml
//   - .po / .pot (gettext catalogs)
//
// # Scanning
//
// Scan reads every requested file and returns a Snapshot. A single malformed file
// aborts the whole scan with an errdefs.MalformedResourceError; a Snapshot is
// either complete or absent.
//
//	fs := resource.NewFS(afero.NewOsFs())
//	scanner := resource.NewScanner(fs, resource.DefaultRegistry())
//	paths, _ := fs.ListResourceFiles("src/main/resources", []string{"*.properties"})
//	snapshot, err := scanner.Scan(ctx, "src/main/resources", paths)
package resource
