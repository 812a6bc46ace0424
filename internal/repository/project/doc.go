// Package project reads and writes the files a project directory carries:
// package.json manifests (the project's own and every dependency's) and the
// optional mod.json configuration at the project root.
//
// Absent files are reported through ErrNotFound so callers can treat them as
// empty. Files that exist but do not parse are returned as errors.
package project
