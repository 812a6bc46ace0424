// Package config defines packager settings (host package directory, output
// directory, host process name, log level, verification) and helpers to
// load, validate and save them in YAML format.
//
// Project metadata such as the package name lives in mod.json and is handled
// by the project repository instead.
package config
