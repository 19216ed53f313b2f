// Package cli — create.go implements the "venvup create" command.
//
// The create command is the primary user-facing operation. It runs the
// full bootstrap sequence for a Python project:
//
//  1. Resolve effective settings (flags / project config / user config)
//  2. Discover a Python interpreter
//  3. Create the virtual environment (python -m venv)
//  4. Upgrade the installer inside the environment (pip)
//  5. Install dependencies from the requirements file(s)
//  6. Output results (text or JSON)
//
// The steps run strictly in order and any failure aborts the sequence.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/venvup/internal/interpreter"
	"github.com/mmr-tortoise/venvup/internal/model"
	"github.com/mmr-tortoise/venvup/internal/pip"
	"github.com/mmr-tortoise/venvup/internal/requirements"
	"github.com/mmr-tortoise/venvup/internal/venv"
)

// createFlags holds the flag values for the create command.
type createFlags struct {
	envFlags
	clear      bool // --clear: recreate an existing environment
	noInstall  bool // --no-install: skip the requirements step
	noUpgrade  bool // --no-upgrade: skip the installer upgrade step
	systemSite bool // --system-site-packages
}

// NewCreateCommand creates the "create" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCreateCommand() *cobra.Command {
	flags := &createFlags{}

	cmd := &cobra.Command{
		Use:   "create [dir]",
		Short: "Create a virtual environment and install dependencies",
		Long: `Create a Python virtual environment and bootstrap it.

The command runs the standard setup sequence with every step checked:
discovers a Python interpreter, creates the environment, upgrades pip
inside it, and installs the project's requirements.

The environment directory defaults to .venv (or the "dir" setting in
venvup.yaml) and may be given as a positional argument.

Examples:
  venvup create
  venvup create .venv311 --python python3.11
  venvup create -r requirements.txt -r requirements-dev.txt
  venvup create --clear
  venvup create --no-install`,

		// The environment directory is optional; config supplies it.
		Args: cobra.MaximumNArgs(1),

		// RunE is used instead of Run so we can return errors. Cobra
		// will pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			dirArg := ""
			if len(args) > 0 {
				dirArg = args[0]
			}
			return runCreate(cmd.Context(), dirArg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.python, "python", "", "Python interpreter command or path (default: auto-discover)")
	cmd.Flags().StringArrayVarP(&flags.requirements, "requirements", "r", nil, "Requirements file (repeatable; default: requirements.txt)")
	cmd.Flags().StringVar(&flags.prompt, "prompt", "", "Shell prompt prefix for the environment")
	cmd.Flags().BoolVar(&flags.clear, "clear", false, "Recreate the environment if it already exists")
	cmd.Flags().BoolVar(&flags.noInstall, "no-install", false, "Create and upgrade only, skip installing requirements")
	cmd.Flags().BoolVar(&flags.noUpgrade, "no-upgrade", false, "Skip upgrading the installer")
	cmd.Flags().BoolVar(&flags.systemSite, "system-site-packages", false, "Give the environment access to system site-packages")

	return cmd
}

// runCreate is the main orchestration function for the create command.
// It runs the bootstrap steps strictly in order; each step must
// complete before the next begins, and the first failure aborts.
func runCreate(ctx context.Context, dirArg string, flags *createFlags) error {
	// Step 1: Resolve effective settings.
	s, err := resolveSettings(dirArg, &flags.envFlags)
	if err != nil {
		return err
	}

	// Refuse to write into a directory that exists but is not an
	// environment; --clear only covers recreating an actual venv.
	if venv.Exists(s.EnvDir) {
		if !venv.IsVenv(s.EnvDir) {
			return model.NewCLIError(model.ExitVenvError,
				fmt.Sprintf("%s exists but is not a virtual environment", s.EnvDir))
		}
		if !flags.clear {
			return model.NewCLIError(model.ExitVenvError,
				fmt.Sprintf("environment already exists at %s (use --clear to recreate)", s.EnvDir))
		}
		VerboseLog("Existing environment at %s will be cleared", s.EnvDir)
	}

	// Validate the requirements files up front, before any side
	// effects, so a typoed path fails fast instead of after venv
	// creation. Parsing also surfaces cyclic -r includes.
	var parsed []*requirements.File
	if !flags.noInstall {
		for _, reqFile := range s.Requirements {
			f, parseErr := requirements.Parse(reqFile)
			if parseErr != nil {
				return model.WrapCLIError(model.ExitRequirementsError,
					fmt.Sprintf("invalid requirements file %s", reqFile), parseErr)
			}
			VerboseLog("Requirements: %s (%d entries)", reqFile, len(f.Packages()))
			parsed = append(parsed, f)
		}
	}

	// Step 2: Discover a Python interpreter.
	VerboseLog("Discovering Python interpreter...")
	finder := interpreter.NewFinder()
	interp, err := finder.Discover(ctx, s.Python, s.MinVersion)
	if err != nil {
		return err
	}
	VerboseLog("Using Python %s at %s", interp.Version, interp.Executable)

	// Step 3: Create the virtual environment.
	VerboseLog("Creating virtual environment at %s...", s.EnvDir)
	createOpts := venv.CreateOptions{
		Clear:              flags.clear,
		Prompt:             s.Prompt,
		SystemSitePackages: flags.systemSite || s.SystemSitePackages,
	}
	if err := venv.Create(ctx, interp, s.EnvDir, createOpts); err != nil {
		return err
	}
	VerboseLog("Virtual environment created")

	// From here on every subprocess runs through the environment's own
	// interpreter with the env activated (VIRTUAL_ENV + PATH).
	runner := pip.NewRunner(s.EnvDir, s.PipArgs, verboseStream())

	// Step 4: Upgrade the installer inside the environment.
	if !flags.noUpgrade {
		VerboseLog("Upgrading installer (%v)...", s.UpgradeTargets)
		if err := runner.UpgradeInstaller(ctx, s.UpgradeTargets); err != nil {
			return err
		}
	} else {
		VerboseLog("Skipping installer upgrade (--no-upgrade)")
	}

	// Step 5: Install requirements, each file in configured order.
	installedFrom := []string{}
	if !flags.noInstall {
		for _, f := range parsed {
			VerboseLog("Installing requirements from %s...", f.Path)
			if err := runner.InstallRequirements(ctx, f.Path); err != nil {
				return err
			}
			installedFrom = append(installedFrom, f.Path)
		}
	} else {
		VerboseLog("Skipping requirements install (--no-install)")
	}

	// Step 6: Output results.
	env, err := venv.Inspect(s.EnvDir)
	if err != nil {
		return err
	}
	printCreateResult(&env, interp, installedFrom)
	return nil
}

// verboseStream returns the writer pip subprocess output streams to:
// stderr under --verbose, nothing otherwise. Progress is diagnostic
// output, stdout stays clean for results.
func verboseStream() io.Writer {
	if verbose {
		return os.Stderr
	}
	// Explicit nil interface, not a typed-nil *os.File, so the
	// runner's nil check behaves.
	return nil
}

// printCreateResult outputs the create command results in text or JSON
// format.
func printCreateResult(env *model.Env, interp model.Interpreter, installedFrom []string) {
	if IsJSONOutput() {
		printCreateResultJSON(env, interp, installedFrom)
	} else {
		printCreateResultText(env, interp, installedFrom)
	}
}

// printCreateResultJSON outputs the create result as structured JSON.
func printCreateResultJSON(env *model.Env, interp model.Interpreter, installedFrom []string) {
	type resultJSON struct {
		Path          string   `json:"path"`
		Python        string   `json:"python"`
		PythonVersion string   `json:"pythonVersion"`
		Status        string   `json:"status"`
		InstalledFrom []string `json:"installedFrom"`
		Activate      string   `json:"activate"`
	}

	result := resultJSON{
		Path:          env.Path,
		Python:        interp.Executable,
		PythonVersion: interp.Version,
		Status:        env.Status.String(),
		InstalledFrom: installedFrom,
		Activate:      venv.ActivateScriptPath(env.Path),
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printCreateResultText outputs the create result as human-readable text.
func printCreateResultText(env *model.Env, interp model.Interpreter, installedFrom []string) {
	successColor.Printf("Created virtual environment at %s\n", env.Path)
	fmt.Printf("  Python:    %s (%s)\n", interp.Version, interp.Executable)
	for _, f := range installedFrom {
		fmt.Printf("  Installed: %s\n", f)
	}
	fmt.Println()
	fmt.Printf("To activate it in your shell:\n")
	fmt.Printf("  source %s\n", venv.ActivateScriptPath(env.Path))
}
