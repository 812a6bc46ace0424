// Package integrity computes the per-file digest manifest of a staged tree.
//
// Every regular file is hashed with SHA-256 and keyed by its slash-separated
// path relative to the staging root. The host checks these digests when it
// loads the package.
package integrity
