// Package pip runs pip inside a virtual environment for the venvup CLI.
//
// Every invocation goes through the environment's own interpreter as
// `python -m pip ...`, never a bare pip binary. Calling pip through the
// venv's python guarantees packages land in the environment rather than
// the base installation, which is the whole point of the bootstrap — a
// bare `pip` on PATH may belong to any interpreter.
//
// Each subprocess additionally gets VIRTUAL_ENV set and the venv bin
// directory prepended to PATH, the subprocess-visible equivalent of
// `source bin/activate`. Build backends spawned by pip (and console
// scripts they call) resolve tools through PATH, so the environment has
// to look activated to them too.
package pip
