// Package staging assembles the package tree in a scratch directory.
//
// A Workspace is acquired before anything is copied and released with a
// deferred call, so the scratch directory disappears on every exit path.
// Dependencies are copied once per distinct path no matter how many parents
// reference them; project files are copied next, minus the ignore set.
package staging
