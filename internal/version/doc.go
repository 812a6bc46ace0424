// Package version exposes build metadata for lmod-packager.
//
// Version, Commit and BuildTime are injected through ldflags. SDKVersion is
// the fixed schema tag written into every package descriptor.
package version
