// Package cli — freeze.go implements the "venvup freeze" command:
// a snapshot of the environment's installed packages in requirements
// format, suitable for pinning.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/venvup/internal/model"
	"github.com/mmr-tortoise/venvup/internal/pip"
)

// freezeFlags holds the flag values for the freeze command.
type freezeFlags struct {
	output string // --output/-o: write to file instead of stdout
}

// NewFreezeCommand creates the "freeze" cobra command.
func NewFreezeCommand() *cobra.Command {
	flags := &freezeFlags{}

	cmd := &cobra.Command{
		Use:   "freeze [dir]",
		Short: "Snapshot installed packages in requirements format",
		Long: `Print the environment's installed packages as pinned requirements
(pip freeze output), or write them to a file with -o.

Examples:
  venvup freeze
  venvup freeze -o requirements.lock
  venvup freeze .venv311`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			dirArg := ""
			if len(args) > 0 {
				dirArg = args[0]
			}
			return runFreeze(cmd.Context(), dirArg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the snapshot to a file instead of stdout")

	return cmd
}

func runFreeze(ctx context.Context, dirArg string, flags *freezeFlags) error {
	s, err := resolveSettings(dirArg, nil)
	if err != nil {
		return err
	}
	if err := requireReadyEnv(s.EnvDir); err != nil {
		return err
	}

	runner := pip.NewRunner(s.EnvDir, nil, nil)
	snapshot, err := runner.Freeze(ctx)
	if err != nil {
		return err
	}

	if flags.output == "" {
		// Freeze output IS the result, so it goes to stdout verbatim
		// in both text and JSON modes — it is already line-oriented
		// machine-readable data.
		fmt.Print(snapshot)
		return nil
	}

	if err := os.WriteFile(flags.output, []byte(snapshot), 0o644); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to write %s", flags.output), err)
	}
	if !IsJSONOutput() {
		successColor.Printf("Wrote snapshot to %s\n", flags.output)
	}
	return nil
}
