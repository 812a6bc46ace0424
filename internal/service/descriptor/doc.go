// Package descriptor builds the mod.json record embedded in every package
// and writes it into the staging root after the digests are computed.
package descriptor
