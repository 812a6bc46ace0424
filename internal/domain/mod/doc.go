// Package mod contains the core types of a mod package build.
//
// Dependency describes one resolved occurrence of a package in the tree,
// Config the merged project metadata, and Descriptor the mod.json record
// embedded into the produced archive.
package mod
