// Package installer places a finished package into the host package directory.
//
// The installed file always has the same name, so installing replaces the
// previous package. The replacement goes through go-update, which writes the
// new bytes next to the target, verifies their checksum and swaps the files.
package installer
