// Package venv manages Python virtual environment directories for the
// venvup CLI.
//
// The package encodes knowledge of the on-disk venv layout (bin/ vs
// Scripts\, pyvenv.cfg, activation scripts) and performs environment
// creation by shelling out to `python -m venv` — venvup never writes
// the environment structure itself, the venv module owns that format.
//
// Inspection reads pyvenv.cfg, a flat "key = value" file written by
// the venv module, to reconstruct a model.Env without invoking Python.
package venv
