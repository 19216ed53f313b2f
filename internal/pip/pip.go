package pip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/venvup/internal/model"
	"github.com/mmr-tortoise/venvup/internal/venv"
)

// DefaultUpgradeTargets are the installer packages upgraded by the
// bootstrap's upgrade step when the config does not override them.
// pip alone matches the original script; setuptools and wheel are the
// common additions for source-distribution builds.
var DefaultUpgradeTargets = []string{"pip"}

// Runner executes pip commands inside one virtual environment.
//
// A Runner is bound to an environment directory at construction and
// derives the interpreter path and process environment from it. It is
// safe for sequential reuse; pip itself does not support concurrent
// operations on one environment.
type Runner struct {
	// envDir is the absolute path to the virtual environment.
	envDir string

	// extraArgs are appended to every `pip install` invocation
	// (e.g., --index-url, --no-cache-dir) from user configuration.
	extraArgs []string

	// stream receives pip's stdout/stderr live when non-nil, so the
	// user sees download and build progress. Output is captured for
	// error messages regardless.
	stream io.Writer
}

// NewRunner creates a pip Runner for the given environment directory.
// extraArgs may be nil; stream may be nil to suppress live output.
func NewRunner(envDir string, extraArgs []string, stream io.Writer) *Runner {
	return &Runner{envDir: envDir, extraArgs: extraArgs, stream: stream}
}

// UpgradeInstaller upgrades the installer tooling inside the
// environment: `python -m pip install --upgrade <targets>`.
// An empty targets slice falls back to DefaultUpgradeTargets.
func (r *Runner) UpgradeInstaller(ctx context.Context, targets []string) error {
	if len(targets) == 0 {
		targets = DefaultUpgradeTargets
	}
	args := append([]string{"install", "--upgrade"}, targets...)
	if _, err := r.run(ctx, args...); err != nil {
		return wrapPipError(err, fmt.Sprintf("failed to upgrade %s", strings.Join(targets, ", ")))
	}
	return nil
}

// InstallRequirements installs dependencies from a requirements file:
// `python -m pip install -r <file> [extraArgs]`.
//
// The file must exist; pip's own error for a missing file is confusing
// (it mentions the temp dir), so the check happens here first.
func (r *Runner) InstallRequirements(ctx context.Context, reqFile string) error {
	if _, err := os.Stat(reqFile); err != nil {
		return model.WrapCLIError(model.ExitRequirementsError,
			fmt.Sprintf("requirements file %s not found", reqFile), err)
	}

	args := []string{"install", "-r", reqFile}
	args = append(args, r.extraArgs...)
	if _, err := r.run(ctx, args...); err != nil {
		return wrapPipError(err, fmt.Sprintf("failed to install requirements from %s", reqFile))
	}
	return nil
}

// Install installs the given requirement specifiers directly:
// `python -m pip install [extraArgs] <specs>`.
func (r *Runner) Install(ctx context.Context, specs []string) error {
	if len(specs) == 0 {
		return nil
	}
	args := []string{"install"}
	args = append(args, r.extraArgs...)
	args = append(args, specs...)
	if _, err := r.run(ctx, args...); err != nil {
		return wrapPipError(err, fmt.Sprintf("failed to install %s", strings.Join(specs, ", ")))
	}
	return nil
}

// List returns the packages installed in the environment, parsed from
// `python -m pip list --format=json`.
func (r *Runner) List(ctx context.Context) ([]model.Package, error) {
	// --format=json goes to stdout; list is quiet enough that live
	// streaming would only garble the JSON, so it is captured silently.
	output, err := r.runQuiet(ctx, "list", "--format=json")
	if err != nil {
		return nil, wrapPipError(err, "failed to list installed packages")
	}

	var packages []model.Package
	if jsonErr := json.Unmarshal([]byte(output), &packages); jsonErr != nil {
		return nil, model.WrapCLIError(model.ExitPipError, "failed to parse pip list output", jsonErr)
	}
	return packages, nil
}

// Freeze returns the environment's installed packages in requirements
// format, exactly as `python -m pip freeze` prints them.
func (r *Runner) Freeze(ctx context.Context) (string, error) {
	output, err := r.runQuiet(ctx, "freeze")
	if err != nil {
		return "", wrapPipError(err, "pip freeze failed")
	}
	return output, nil
}

// Version returns the pip version string inside the environment
// (`python -m pip --version`), e.g. "pip 24.2 from ... (python 3.12)".
func (r *Runner) Version(ctx context.Context) (string, error) {
	output, err := r.runQuiet(ctx, "--version")
	if err != nil {
		return "", wrapPipError(err, "failed to query pip version")
	}
	return strings.TrimSpace(output), nil
}

// run executes `python -m pip <args>` with the environment activated,
// streaming output to r.stream when set. On failure the captured
// stderr tail is included in the returned error.
func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	return r.exec(ctx, r.stream, args...)
}

// runQuiet is run without live streaming, for subcommands whose stdout
// is parsed.
func (r *Runner) runQuiet(ctx context.Context, args ...string) (string, error) {
	return r.exec(ctx, nil, args...)
}

func (r *Runner) exec(ctx context.Context, stream io.Writer, args ...string) (string, error) {
	python := venv.PythonPath(r.envDir)
	if _, err := os.Stat(python); err != nil {
		return "", model.WrapCLIError(model.ExitEnvNotFound,
			fmt.Sprintf("no interpreter at %s (is %s a virtual environment?)", python, r.envDir), err)
	}

	fullArgs := append([]string{"-m", "pip"}, args...)

	// #nosec G204 — the executable path is derived from the env dir
	cmd := exec.CommandContext(ctx, python, fullArgs...)
	cmd.Env = activatedEnv(r.envDir)

	var stdout, stderr strings.Builder
	if stream != nil {
		cmd.Stdout = io.MultiWriter(&stdout, stream)
		cmd.Stderr = io.MultiWriter(&stderr, stream)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("pip %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, lastLines(stderrStr, 5))
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}
	return stdout.String(), nil
}

// activatedEnv builds the subprocess environment equivalent to shell
// activation: VIRTUAL_ENV set, the venv bin dir first on PATH, and
// PYTHONHOME cleared (it would override the venv's prefix resolution).
// PIP_DISABLE_PIP_VERSION_CHECK suppresses pip's self-update nag, which
// would otherwise interleave with parsed output.
func activatedEnv(envDir string) []string {
	binDir := filepath.Join(envDir, venv.BinDir())

	env := make([]string, 0, len(os.Environ())+3)
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		switch key {
		case "VIRTUAL_ENV", "PYTHONHOME", "PIP_DISABLE_PIP_VERSION_CHECK":
			continue
		case "PATH":
			env = append(env, "PATH="+binDir+string(os.PathListSeparator)+kv[len("PATH="):])
			continue
		}
		env = append(env, kv)
	}
	env = append(env,
		"VIRTUAL_ENV="+envDir,
		"PIP_DISABLE_PIP_VERSION_CHECK=1",
	)
	return env
}

// wrapPipError wraps err as a pip failure unless it already carries an
// exit code (e.g. ExitEnvNotFound from the interpreter check), which
// must survive to the process exit status.
func wrapPipError(err error, message string) error {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	return model.WrapCLIError(model.ExitPipError, message, err)
}

// lastLines returns at most n trailing lines of s. pip errors end with
// the useful part; the full transcript stays on the streamed output.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
