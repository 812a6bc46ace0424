// Package archive turns the staging tree into a .lmod package and reads it back.
//
// Pack streams a zip archive through a pipe: one goroutine walks the tree and
// compresses entries at the highest deflate level, the other writes the
// stream to the output file. Verify reopens a finished package and checks
// every file against the digests listed in its descriptor.
package archive
