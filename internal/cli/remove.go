// Package cli — remove.go implements the "venvup remove" command.
//
// Removal deletes the environment directory. Nothing outside the
// directory is touched — a venv holds no state elsewhere — so the
// operation is a confirmed RemoveAll with venv-shape guards.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/venvup/internal/model"
	"github.com/mmr-tortoise/venvup/internal/venv"
)

// removeFlags holds the flag values for the remove command.
type removeFlags struct {
	force bool // --force/-f: skip confirmation, allow non-venv dirs
}

// NewRemoveCommand creates the "remove" cobra command.
func NewRemoveCommand() *cobra.Command {
	flags := &removeFlags{}

	cmd := &cobra.Command{
		Use:   "remove [dir]",
		Short: "Delete a virtual environment",
		Long: `Delete a virtual environment directory.

Asks for confirmation unless --force is given. Refuses to delete a
directory that does not look like a virtual environment.

Examples:
  venvup remove
  venvup remove --force
  venvup remove .venv311`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			dirArg := ""
			if len(args) > 0 {
				dirArg = args[0]
			}
			return runRemove(dirArg, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Skip confirmation")

	return cmd
}

func runRemove(dirArg string, flags *removeFlags) error {
	s, err := resolveSettings(dirArg, nil)
	if err != nil {
		return err
	}

	if !venv.Exists(s.EnvDir) {
		return model.NewCLIError(model.ExitEnvNotFound,
			fmt.Sprintf("no environment at %s", s.EnvDir))
	}

	if !flags.force {
		if !confirm(fmt.Sprintf("Delete %s?", s.EnvDir)) {
			return model.NewCLIError(model.ExitUserCancelled, "cancelled")
		}
	}

	if err := venv.Remove(s.EnvDir, flags.force); err != nil {
		return err
	}

	if IsJSONOutput() {
		result := map[string]interface{}{"path": s.EnvDir, "removed": true}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		successColor.Printf("Removed %s\n", s.EnvDir)
	}
	return nil
}

// confirm prompts on stderr and reads a y/N answer from stdin.
// Anything but an explicit yes counts as no, including EOF — a piped
// stdin must pass --force instead.
func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
