package venv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mmr-tortoise/venvup/internal/model"
)

// CfgFileName is the marker file the venv module writes at the root of
// every virtual environment. Its presence is how venvup distinguishes a
// venv from an arbitrary directory.
const CfgFileName = "pyvenv.cfg"

// BinDir returns the name of the executables directory inside a venv
// for the current platform: "Scripts" on Windows, "bin" elsewhere.
func BinDir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

// pythonExe returns the interpreter file name inside the venv bin dir.
func pythonExe() string {
	if runtime.GOOS == "windows" {
		return "python.exe"
	}
	return "python"
}

// PythonPath returns the path to the environment's own interpreter.
// Invoking this binary is the programmatic equivalent of activating
// the environment: it resolves sys.prefix to the venv automatically.
func PythonPath(envDir string) string {
	return filepath.Join(envDir, BinDir(), pythonExe())
}

// ActivateScriptPath returns the path to the POSIX shell activation
// script (or activate.bat on Windows). venvup never runs this script —
// activation cannot cross a process boundary — but prints it so users
// can activate the environment in their own shell.
func ActivateScriptPath(envDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(envDir, BinDir(), "activate.bat")
	}
	return filepath.Join(envDir, BinDir(), "activate")
}

// Exists reports whether the environment directory exists at all,
// regardless of whether it is a valid venv.
func Exists(envDir string) bool {
	info, err := os.Stat(envDir)
	return err == nil && info.IsDir()
}

// IsVenv reports whether the directory looks like a virtual
// environment, i.e. contains a pyvenv.cfg file.
func IsVenv(envDir string) bool {
	info, err := os.Stat(filepath.Join(envDir, CfgFileName))
	return err == nil && !info.IsDir()
}

// CreateOptions controls environment creation.
type CreateOptions struct {
	// Clear requests `python -m venv --clear`: an existing environment
	// at the target path is emptied before creation.
	Clear bool

	// Prompt overrides the shell prompt prefix recorded in pyvenv.cfg.
	Prompt string

	// SystemSitePackages gives the environment access to the base
	// interpreter's site-packages.
	SystemSitePackages bool
}

// Create builds a virtual environment at envDir using the given base
// interpreter, by running `<python> -m venv [flags] <envDir>`.
//
// The venv module is part of the standard library since Python 3.3, so
// no installation check is needed beyond having found an interpreter.
// Returns a model.CLIError with ExitVenvError on failure, including the
// subprocess stderr in the message.
func Create(ctx context.Context, interp model.Interpreter, envDir string, opts CreateOptions) error {
	args := []string{"-m", "venv"}
	if opts.Clear {
		args = append(args, "--clear")
	}
	if opts.SystemSitePackages {
		args = append(args, "--system-site-packages")
	}
	if opts.Prompt != "" {
		args = append(args, "--prompt", opts.Prompt)
	}
	args = append(args, envDir)

	// #nosec G204 — the executable was resolved by interpreter discovery
	cmd := exec.CommandContext(ctx, interp.Executable, args...)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("python -m venv failed for %s", envDir)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return model.WrapCLIError(model.ExitVenvError, message, err)
	}
	return nil
}

// Inspect reconstructs a model.Env from the environment directory.
//
// It never invokes Python: everything comes from pyvenv.cfg and file
// metadata, so Inspect works even when the recorded base interpreter
// has since been uninstalled (the env is then broken for use, but still
// reportable).
func Inspect(envDir string) (model.Env, error) {
	env := model.Env{Path: envDir}

	if !Exists(envDir) {
		env.Status = model.StatusMissing
		return env, nil
	}
	if !IsVenv(envDir) {
		env.Status = model.StatusBroken
		return env, nil
	}

	cfgPath := filepath.Join(envDir, CfgFileName)
	cfg, err := parseCfg(cfgPath)
	if err != nil {
		return env, model.WrapCLIError(model.ExitVenvError, fmt.Sprintf("failed to read %s", cfgPath), err)
	}

	env.Status = model.StatusReady
	env.PythonHome = cfg["home"]
	env.Prompt = strings.Trim(cfg["prompt"], "()")
	env.SystemSitePackages = strings.EqualFold(cfg["include-system-site-packages"], "true")

	// Python 3.12 renamed the key from "version" to "version_info".
	if v, ok := cfg["version"]; ok {
		env.PythonVersion = v
	} else if v, ok := cfg["version_info"]; ok {
		env.PythonVersion = v
	}

	if info, statErr := os.Stat(cfgPath); statErr == nil {
		env.CreatedAt = info.ModTime().UTC()
	}
	return env, nil
}

// Remove deletes the environment directory and everything under it.
//
// The caller is responsible for confirmation; Remove refuses only to
// delete a directory that is not a venv, as a guard against a mistyped
// path wiping unrelated files.
func Remove(envDir string, force bool) error {
	if !Exists(envDir) {
		return model.NewCLIError(model.ExitEnvNotFound, fmt.Sprintf("no environment at %s", envDir))
	}
	if !IsVenv(envDir) && !force {
		return model.NewCLIError(model.ExitVenvError,
			fmt.Sprintf("%s does not look like a virtual environment (no %s); use --force to delete anyway", envDir, CfgFileName))
	}
	if err := os.RemoveAll(envDir); err != nil {
		return model.WrapCLIError(model.ExitVenvError, fmt.Sprintf("failed to remove %s", envDir), err)
	}
	return nil
}

// parseCfg parses a pyvenv.cfg file into a key-value map.
//
// The format is one "key = value" pair per line. Values may contain
// "=" (Windows paths with drive letters do not, but prompts can), so
// only the first separator splits. Unknown keys are kept — callers
// pick the ones they understand.
func parseCfg(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			// pyvenv.cfg is machine-written; a line without "=" means
			// the file is damaged, but one bad line should not make
			// the whole environment unreadable.
			continue
		}
		cfg[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return cfg, nil
}
