// Package interpreter locates and queries Python interpreters on the
// host for the venvup CLI.
//
// All interpreter operations are performed via os/exec calls to the
// python binary, rather than embedding or linking an interpreter. This
// approach:
//   - Uses exactly the interpreter the user would get in their terminal
//   - Works with any CPython 3.x (and pypy3, which exposes the same
//     sys fields the probe reads)
//   - Avoids CGO and keeps venvup a single static binary
//
// Discovery probes a candidate list of interpreter commands
// concurrently and returns the best match, honoring an optional
// minimum-version constraint.
package interpreter
