// Package resolver discovers the dependency tree of a project from the
// package.json manifests found on disk.
//
// A declared dependency is looked up nested under its parent first and hoisted
// under the project root second. Missing directories and missing manifests end
// a branch silently; a manifest that does not parse aborts resolution. A
// dependency that leads back to a directory already on the current resolution
// path is attached but not expanded, and reported as a cycle.
package resolver
