// Package cli — upgrade.go implements the "venvup upgrade" command:
// the installer-upgrade step of the bootstrap run on its own.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/venvup/internal/pip"
)

// upgradeFlags holds the flag values for the upgrade command.
type upgradeFlags struct {
	targets []string // --target: packages for pip install --upgrade
}

// NewUpgradeCommand creates the "upgrade" cobra command.
func NewUpgradeCommand() *cobra.Command {
	flags := &upgradeFlags{}

	cmd := &cobra.Command{
		Use:   "upgrade [dir]",
		Short: "Upgrade the installer inside an environment",
		Long: `Upgrade pip (and any other configured installer packages) inside an
existing virtual environment.

Examples:
  venvup upgrade
  venvup upgrade --target pip --target setuptools --target wheel
  venvup upgrade .venv311`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			dirArg := ""
			if len(args) > 0 {
				dirArg = args[0]
			}
			return runUpgrade(cmd.Context(), dirArg, flags)
		},
	}

	cmd.Flags().StringArrayVar(&flags.targets, "target", nil, "Installer package to upgrade (repeatable; default: pip)")

	return cmd
}

func runUpgrade(ctx context.Context, dirArg string, flags *upgradeFlags) error {
	s, err := resolveSettings(dirArg, nil)
	if err != nil {
		return err
	}
	if err := requireReadyEnv(s.EnvDir); err != nil {
		return err
	}

	targets := s.UpgradeTargets
	if len(flags.targets) > 0 {
		targets = flags.targets
	}

	runner := pip.NewRunner(s.EnvDir, s.PipArgs, verboseStream())

	VerboseLog("Upgrading %s in %s...", strings.Join(targets, ", "), s.EnvDir)
	if err := runner.UpgradeInstaller(ctx, targets); err != nil {
		return err
	}

	// Report the resulting pip version so the upgrade is verifiable.
	pipVersion, err := runner.Version(ctx)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		result := map[string]interface{}{
			"path":     s.EnvDir,
			"upgraded": targets,
			"pip":      pipVersion,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		successColor.Printf("Upgraded %s in %s\n", strings.Join(targets, ", "), s.EnvDir)
		fmt.Printf("  %s\n", pipVersion)
	}
	return nil
}
