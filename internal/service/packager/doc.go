// Package packager runs the full packaging pipeline for a project directory.
//
// Run resolves the node_modules tree, stages a deduplicated copy of the
// dependencies and project files in a scratch directory, records SHA-256
// digests in mod.json, zips the result into <output-dir>/<name>.lmod and
// installs it into the host package directory. The scratch directory is
// removed on every exit path.
package packager
