// Package requirements reads pip requirements files for the venvup CLI.
//
// venvup is not a dependency resolver: it never interprets version
// specifiers or package metadata — pip owns resolution. This package
// reads requirements files only far enough to validate them before
// install and to report their contents (counts, editable installs,
// option lines) in command output.
//
// Nested `-r`/`--requirement` includes are followed recursively; the
// include relation is modeled as a directed acyclic graph so that a
// cyclic include is reported as an error instead of recursing forever.
package requirements
