// Package cli — status.go implements the "venvup status" command.
//
// Status inspects an environment directory without modifying anything:
// pyvenv.cfg metadata plus (for ready environments) the installed
// package list from pip.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/venvup/internal/model"
	"github.com/mmr-tortoise/venvup/internal/pip"
	"github.com/mmr-tortoise/venvup/internal/venv"
)

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	noPackages bool   // --no-packages: skip the pip list query
	expect     string // --expect: fail unless the env has this status
}

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status [dir]",
		Short: "Show the state of a virtual environment",
		Long: `Show the state of a virtual environment: whether it exists, which
Python it was created from, and which packages are installed.

With --expect, the command exits non-zero unless the environment has
the given status, which makes it usable as a check in CI or scripts.

Examples:
  venvup status
  venvup status --json
  venvup status --expect ready
  venvup status .venv311 --no-packages`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			dirArg := ""
			if len(args) > 0 {
				dirArg = args[0]
			}
			return runStatus(cmd.Context(), dirArg, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noPackages, "no-packages", false, "Skip querying installed packages")
	cmd.Flags().StringVar(&flags.expect, "expect", "", "Fail unless the environment has this status (ready, missing, broken)")

	return cmd
}

func runStatus(ctx context.Context, dirArg string, flags *statusFlags) error {
	var expected model.EnvStatus
	if flags.expect != "" {
		var err error
		expected, err = model.ParseEnvStatus(flags.expect)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "invalid --expect value", err)
		}
	}

	s, err := resolveSettings(dirArg, nil)
	if err != nil {
		return err
	}

	env, err := venv.Inspect(s.EnvDir)
	if err != nil {
		return err
	}

	if flags.expect != "" && env.Status != expected {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("environment at %s is %s, expected %s", env.Path, env.Status, expected))
	}

	// The package list needs a working interpreter, so only ready
	// environments are queried; missing/broken ones still report.
	if env.Status == model.StatusReady && !flags.noPackages {
		runner := pip.NewRunner(s.EnvDir, nil, nil)
		packages, listErr := runner.List(ctx)
		if listErr != nil {
			return listErr
		}
		env.Packages = packages
	}

	printStatus(&env)
	return nil
}

// printStatus outputs the environment state in text or JSON format.
func printStatus(env *model.Env) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(env, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Environment: %s\n", env.Path)
	fmt.Printf("  Status:  %s\n", env.Status)

	switch env.Status {
	case model.StatusMissing:
		fmt.Println("  Run \"venvup create\" to create it.")
		return
	case model.StatusBroken:
		fmt.Printf("  The directory exists but has no %s.\n", venv.CfgFileName)
		return
	}

	if env.PythonVersion != "" {
		fmt.Printf("  Python:  %s\n", env.PythonVersion)
	}
	if env.PythonHome != "" {
		fmt.Printf("  Home:    %s\n", env.PythonHome)
	}
	if env.Prompt != "" {
		fmt.Printf("  Prompt:  %s\n", env.Prompt)
	}
	fmt.Printf("  System site-packages: %v\n", env.SystemSitePackages)
	if !env.CreatedAt.IsZero() {
		fmt.Printf("  Created: %s\n", env.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}

	if env.Packages != nil {
		fmt.Println()
		fmt.Printf("  Packages (%d):\n", len(env.Packages))
		for _, p := range env.Packages {
			fmt.Printf("    %-30s %s\n", p.Name, p.Version)
		}
	}
}
