// Package model defines the domain types for the venvup CLI.
//
// The types here are transient representations of a Python virtual
// environment: everything is reconstructed at runtime from the
// environment directory (pyvenv.cfg, interpreter queries). venvup keeps
// no state of its own beyond the environment directory it creates.
package model

import (
	"fmt"
	"strings"
	"time"
)

// EnvStatus represents the observed state of a virtual environment
// directory. It is derived, never stored:
//
//	missing → created (ready) → removed (missing)
//	ready → broken (directory exists but pyvenv.cfg is gone)
type EnvStatus string

const (
	// StatusReady indicates the directory exists and contains a valid
	// pyvenv.cfg, so the environment can be used as-is.
	StatusReady EnvStatus = "ready"

	// StatusMissing indicates the environment directory does not exist.
	StatusMissing EnvStatus = "missing"

	// StatusBroken indicates the directory exists but does not look like
	// a virtual environment (no pyvenv.cfg). This typically happens when
	// a user points venvup at an unrelated directory, or deletes files
	// inside the environment by hand.
	StatusBroken EnvStatus = "broken"
)

// String returns the string representation of EnvStatus.
// This satisfies fmt.Stringer for CLI output.
func (s EnvStatus) String() string {
	return string(s)
}

// IsValid checks whether the EnvStatus value is one of the predefined
// valid states.
func (s EnvStatus) IsValid() bool {
	switch s {
	case StatusReady, StatusMissing, StatusBroken:
		return true
	default:
		return false
	}
}

// ParseEnvStatus converts a string to an EnvStatus.
// Returns an error if the string does not match any valid status.
func ParseEnvStatus(s string) (EnvStatus, error) {
	status := EnvStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid environment status: %q (valid: ready, missing, broken)", s)
	}
	return status, nil
}

// Env represents a Python virtual environment — the single aggregate
// entity in the domain. Fields are populated from pyvenv.cfg and from
// querying the environment's interpreter; an Env value describes a
// directory on disk, it does not own it.
type Env struct {
	// Path is the absolute filesystem path to the environment directory.
	Path string `json:"path"`

	// Prompt is the shell prompt prefix recorded in pyvenv.cfg, if any.
	Prompt string `json:"prompt,omitempty"`

	// PythonVersion is the interpreter version recorded in pyvenv.cfg
	// (e.g., "3.12.4").
	PythonVersion string `json:"pythonVersion,omitempty"`

	// PythonHome is the "home" value from pyvenv.cfg: the directory of
	// the base interpreter the environment was created from.
	PythonHome string `json:"pythonHome,omitempty"`

	// SystemSitePackages mirrors include-system-site-packages from
	// pyvenv.cfg.
	SystemSitePackages bool `json:"systemSitePackages"`

	// Status is the observed lifecycle state of the environment.
	Status EnvStatus `json:"status"`

	// Packages lists packages installed in the environment. Only
	// populated by commands that query pip (e.g., status).
	Packages []Package `json:"packages,omitempty"`

	// CreatedAt is the modification time of pyvenv.cfg, the closest
	// observable approximation of creation time.
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Package describes one installed distribution as reported by
// `pip list --format=json`. The JSON field names match pip's output
// exactly so the structs can be unmarshalled directly.
type Package struct {
	// Name is the distribution name (e.g., "requests").
	Name string `json:"name"`

	// Version is the installed version string (e.g., "2.32.3").
	Version string `json:"version"`
}

// String returns the pip-requirement form "name==version".
func (p Package) String() string {
	return fmt.Sprintf("%s==%s", p.Name, p.Version)
}

// Interpreter describes a discovered Python interpreter on the host.
type Interpreter struct {
	// Command is the name or path the interpreter was invoked as
	// (e.g., "python3" or "/usr/bin/python3.12").
	Command string `json:"command"`

	// Executable is the resolved absolute path reported by the
	// interpreter itself (sys.executable).
	Executable string `json:"executable"`

	// Version is the full version string (e.g., "3.12.4").
	Version string `json:"version"`
}

// VersionAtLeast reports whether the interpreter version satisfies the
// given minimum, compared component-wise. min is a dotted version
// prefix such as "3.9" or "3.10.2"; missing components compare as 0.
func (i Interpreter) VersionAtLeast(min string) bool {
	if min == "" {
		return true
	}
	have := splitVersion(i.Version)
	want := splitVersion(min)
	for idx := range want {
		h := 0
		if idx < len(have) {
			h = have[idx]
		}
		if h != want[idx] {
			return h > want[idx]
		}
	}
	return true
}

// splitVersion converts "3.12.4" into [3, 12, 4]. Non-numeric suffixes
// (e.g., "3.13.0rc1") are truncated at the first non-digit character.
func splitVersion(v string) []int {
	parts := strings.Split(v, ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n := 0
		for _, r := range p {
			if r < '0' || r > '9' {
				break
			}
			n = n*10 + int(r-'0')
		}
		nums = append(nums, n)
	}
	return nums
}

// ValidatePrompt checks whether the given string is usable as a venv
// prompt prefix. The venv module writes the prompt into pyvenv.cfg and
// the activation scripts, so control characters are rejected.
func ValidatePrompt(prompt string) error {
	for _, r := range prompt {
		if r < ' ' {
			return fmt.Errorf("invalid prompt %q: must not contain control characters", prompt)
		}
	}
	return nil
}

// ExitCode defines the CLI exit codes. These codes allow scripts and CI
// systems to programmatically determine which stage of the bootstrap
// sequence failed.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInterpreterNotFound indicates no usable Python interpreter
	// could be located on the host.
	ExitInterpreterNotFound ExitCode = 2

	// ExitVenvError indicates creating or inspecting the virtual
	// environment directory failed.
	ExitVenvError ExitCode = 3

	// ExitPipError indicates a pip invocation (upgrade or install)
	// inside the environment failed.
	ExitPipError ExitCode = 4

	// ExitRequirementsError indicates a requirements file is missing
	// or could not be parsed.
	ExitRequirementsError ExitCode = 5

	// ExitEnvNotFound indicates the specified environment directory
	// does not exist or is not a virtual environment.
	ExitEnvNotFound ExitCode = 6

	// ExitUserCancelled indicates the user declined an interactive
	// confirmation prompt.
	ExitUserCancelled ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
