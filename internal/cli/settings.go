// Package cli — settings.go merges the three configuration layers
// (flags, project config, user config) into the effective settings a
// command runs with.
package cli

import (
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/mmr-tortoise/venvup/internal/config"
	"github.com/mmr-tortoise/venvup/internal/model"
)

// envFlags holds the flag values shared by commands that operate on an
// environment. Each command binds the subset it supports.
type envFlags struct {
	python       string   // --python: interpreter command or path
	requirements []string // --requirements/-r: requirements files
	prompt       string   // --prompt: venv prompt override
}

// settings is the effective, fully resolved configuration for one
// command invocation. All paths are absolute.
type settings struct {
	// EnvDir is the virtual environment directory.
	EnvDir string

	// Python is the interpreter to bootstrap from ("" = auto-discover).
	Python string

	// MinVersion is the minimum interpreter version ("" = any).
	MinVersion string

	// Prompt is the venv prompt override ("" = venv default).
	Prompt string

	// Requirements lists requirements files, installed in order.
	Requirements []string

	// UpgradeTargets lists installer packages for the upgrade step.
	UpgradeTargets []string

	// PipArgs are extra arguments for every pip install.
	PipArgs []string

	// SystemSitePackages exposes the base site-packages to the env.
	SystemSitePackages bool

	// ConfigPath is the project config file the settings came from,
	// empty when running on defaults alone.
	ConfigPath string
}

// resolveSettings builds the effective settings for a command.
//
// dirArg is the optional positional environment-directory argument;
// when set it overrides the configured dir. flags may be nil for
// commands without env flags. Precedence for each field, highest
// first: flag, project config, user config, built-in default.
func resolveSettings(dirArg string, flags *envFlags) (*settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	user, err := config.LoadUser()
	if err != nil {
		return nil, err
	}
	applyUserColor(user)

	proj := config.Defaults()
	projFile, err := config.FindProjectFile(cwd)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to locate project config", err)
	}
	if projFile != "" {
		proj, err = config.LoadProject(projFile)
		if err != nil {
			return nil, err
		}
		VerboseLog("Project config: %s", projFile)
	} else {
		// Defaults carry relative paths; anchor them at the cwd the
		// way LoadProject anchors at the config file.
		proj.Dir = filepath.Join(cwd, proj.Dir)
		for i, req := range proj.Requirements {
			proj.Requirements[i] = filepath.Join(cwd, req)
		}
	}

	s := &settings{
		EnvDir:             proj.Dir,
		Python:             firstNonEmpty(proj.Python, user.Python),
		MinVersion:         firstNonEmpty(proj.MinVersion, user.MinVersion),
		Prompt:             proj.Prompt,
		Requirements:       proj.Requirements,
		UpgradeTargets:     proj.UpgradeTargets,
		PipArgs:            proj.PipArgs,
		SystemSitePackages: proj.SystemSitePackages,
		ConfigPath:         projFile,
	}

	if user.IndexURL != "" {
		s.PipArgs = append(s.PipArgs, "--index-url", user.IndexURL)
	}

	if flags != nil {
		if flags.python != "" {
			s.Python = flags.python
		}
		if len(flags.requirements) > 0 {
			s.Requirements = absAll(cwd, flags.requirements)
		}
		if flags.prompt != "" {
			s.Prompt = flags.prompt
		}
	}

	if dirArg != "" {
		abs, err := filepath.Abs(dirArg)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve environment path", err)
		}
		s.EnvDir = abs
	}

	if err := model.ValidatePrompt(s.Prompt); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid prompt", err)
	}

	VerboseLog("Environment dir: %s", s.EnvDir)
	return s, nil
}

// applyUserColor applies the user config color preference. JSON mode
// always disables color: the root PersistentPreRun fires before RunE,
// so without the early return a "color = always" user setting would
// re-enable color after the --json override.
func applyUserColor(user *config.User) {
	if jsonOutput {
		color.NoColor = true
		return
	}
	switch user.Color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
	// "auto"/empty: leave fatih/color's TTY detection alone.
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func absAll(base string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = filepath.Clean(p)
		} else {
			out[i] = filepath.Join(base, p)
		}
	}
	return out
}
