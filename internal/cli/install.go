// Package cli — install.go implements the "venvup install" command:
// the requirements step of the bootstrap run on its own, against an
// existing environment.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/venvup/internal/model"
	"github.com/mmr-tortoise/venvup/internal/pip"
	"github.com/mmr-tortoise/venvup/internal/requirements"
	"github.com/mmr-tortoise/venvup/internal/venv"
)

// installFlags holds the flag values for the install command.
type installFlags struct {
	envFlags

	packages []string // --package: direct pip specs, bypassing requirements files
}

// NewInstallCommand creates the "install" cobra command.
func NewInstallCommand() *cobra.Command {
	flags := &installFlags{}

	cmd := &cobra.Command{
		Use:   "install [dir]",
		Short: "Install requirements into an existing environment",
		Long: `Install the project's requirements into an existing virtual environment.

Use this after pulling changes that touch requirements.txt, or after
creating the environment with --no-install.

With --package, the given pip specs are installed directly and the
configured requirements files are skipped unless -r names them.

Examples:
  venvup install
  venvup install -r requirements-dev.txt
  venvup install --package "requests>=2.31" --package flask
  venvup install .venv311`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			dirArg := ""
			if len(args) > 0 {
				dirArg = args[0]
			}
			return runInstall(cmd.Context(), dirArg, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.requirements, "requirements", "r", nil, "Requirements file (repeatable; default: requirements.txt)")
	cmd.Flags().StringArrayVarP(&flags.packages, "package", "p", nil, "Pip requirement spec to install directly (repeatable)")

	return cmd
}

// runInstall validates the environment and requirements, then installs
// each requirements file in order, followed by any direct specs.
func runInstall(ctx context.Context, dirArg string, flags *installFlags) error {
	s, err := resolveSettings(dirArg, &flags.envFlags)
	if err != nil {
		return err
	}

	if err := requireReadyEnv(s.EnvDir); err != nil {
		return err
	}

	reqFiles := s.Requirements
	if len(flags.packages) > 0 && len(flags.requirements) == 0 {
		// Direct specs without -r: don't drag the configured
		// requirements files along.
		reqFiles = nil
	}

	var parsed []*requirements.File
	for _, reqFile := range reqFiles {
		f, parseErr := requirements.Parse(reqFile)
		if parseErr != nil {
			return model.WrapCLIError(model.ExitRequirementsError,
				fmt.Sprintf("invalid requirements file %s", reqFile), parseErr)
		}
		parsed = append(parsed, f)
	}

	runner := pip.NewRunner(s.EnvDir, s.PipArgs, verboseStream())

	installed := 0
	for _, f := range parsed {
		VerboseLog("Installing requirements from %s...", f.Path)
		if err := runner.InstallRequirements(ctx, f.Path); err != nil {
			return err
		}
		installed += len(f.Packages())
	}

	if len(flags.packages) > 0 {
		VerboseLog("Installing %d direct spec(s)...", len(flags.packages))
		if err := runner.Install(ctx, flags.packages); err != nil {
			return err
		}
		installed += len(flags.packages)
	}

	if IsJSONOutput() {
		result := map[string]interface{}{
			"path":         s.EnvDir,
			"requirements": reqFiles,
			"packages":     flags.packages,
			"entries":      installed,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		successColor.Printf("Installed %d requirement(s) into %s\n", installed, s.EnvDir)
	}
	return nil
}

// requireReadyEnv errors unless envDir holds a usable virtual
// environment. Shared by the commands that operate on an existing env.
func requireReadyEnv(envDir string) error {
	if !venv.Exists(envDir) {
		return model.NewCLIError(model.ExitEnvNotFound,
			fmt.Sprintf("no environment at %s (run \"venvup create\" first)", envDir))
	}
	if !venv.IsVenv(envDir) {
		return model.NewCLIError(model.ExitEnvNotFound,
			fmt.Sprintf("%s is not a virtual environment", envDir))
	}
	return nil
}
