// Package cli implements the cobra-based CLI commands for venvup.
//
// Each subcommand (create, install, upgrade, status, freeze, remove) is
// defined in its own file within this package. This file defines the
// root command that serves as the parent for all subcommands and
// handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/venvup/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, all output uses structured JSON for machine
	// consumption; when false (default), human-readable text.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	// When true, each step of the bootstrap sequence is traced to stderr.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only
// provides help text and global flags. Actual functionality is provided
// by subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "venvup",
		Short: "Python virtual environment bootstrapper",
		Long: `venvup creates and maintains Python virtual environments.

One command replaces the usual bootstrap boilerplate: venvup locates a
Python interpreter, creates the environment, upgrades the installer
inside it, and installs your requirements — each step checked, in order.

Settings come from flags, an optional venvup.yaml (or venvup.json) in
the project, and host-wide defaults in ~/.config/venvup/config.toml.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// JSON output is for pipelines; interleaved ANSI codes would
		// corrupt it.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				color.NoColor = true
			}
		},
	}

	// PersistentFlags are inherited by all subcommands.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Register subcommands. Each subcommand is defined in its own file
	// (create.go, status.go, etc.) and returns a *cobra.Command.
	rootCmd.AddCommand(NewCreateCommand())
	rootCmd.AddCommand(NewInstallCommand())
	rootCmd.AddCommand(NewUpgradeCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewFreezeCommand())
	rootCmd.AddCommand(NewRemoveCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into appropriate OS exit codes. CLIError types carry their own exit
// codes; other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode; stdout is reserved
		// for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		errColor := color.New(color.FgRed)
		if underlying != nil {
			errColor.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			errColor.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled. Used throughout the CLI to trace which bootstrap step is
// running.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// successColor is the shared style for affirmative result lines.
var successColor = color.New(color.FgGreen)
