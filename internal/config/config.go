package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/venvup/internal/model"
)

// projectFileNames are the recognized project config file names, in
// lookup order within one directory.
var projectFileNames = []string{"venvup.yaml", "venvup.yml", "venvup.json"}

// Project is the per-project configuration. All fields are optional;
// zero values mean "use the default". Field tags cover both YAML and
// the JSONC variant.
type Project struct {
	// Dir is the virtual environment directory, relative to the config
	// file (or the working directory when no config file exists).
	Dir string `yaml:"dir" json:"dir,omitempty"`

	// Python names the interpreter command or path to bootstrap from.
	Python string `yaml:"python" json:"python,omitempty"`

	// MinVersion is the minimum acceptable interpreter version,
	// e.g. "3.9".
	MinVersion string `yaml:"min-version" json:"minVersion,omitempty"`

	// Prompt overrides the environment's shell prompt prefix.
	Prompt string `yaml:"prompt" json:"prompt,omitempty"`

	// Requirements lists requirements files installed in order.
	Requirements []string `yaml:"requirements" json:"requirements,omitempty"`

	// UpgradeTargets lists the installer packages upgraded before the
	// install step (default: pip).
	UpgradeTargets []string `yaml:"upgrade" json:"upgrade,omitempty"`

	// PipArgs are extra arguments appended to every pip install.
	PipArgs []string `yaml:"pip-args" json:"pipArgs,omitempty"`

	// SystemSitePackages exposes the base interpreter's site-packages
	// to the environment.
	SystemSitePackages bool `yaml:"system-site-packages" json:"systemSitePackages,omitempty"`

	// Path is the absolute path of the loaded config file. Empty when
	// the Project holds only defaults. Not part of the file format.
	Path string `yaml:"-" json:"-"`
}

// Defaults returns the built-in project configuration: a ".venv"
// directory and a single "requirements.txt", matching the conventions
// of the Python ecosystem.
func Defaults() *Project {
	return &Project{
		Dir:            ".venv",
		Requirements:   []string{"requirements.txt"},
		UpgradeTargets: []string{"pip"},
	}
}

// FindProjectFile walks up from startDir looking for a project config
// file. Returns the empty string (and no error) when none exists —
// a config file is optional.
func FindProjectFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}

	for {
		for _, name := range projectFileNames {
			candidate := filepath.Join(dir, name)
			if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadProject reads and validates a project config file. The format is
// chosen by extension: .json parses as JSONC, everything else as YAML.
//
// Relative paths in the file (Dir, Requirements entries) are resolved
// against the config file's directory, and "~" expands to the user's
// home, so the loaded Project is position-independent.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to read config %s", path), err)
	}

	proj := Defaults()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		// jsonc.ToJSON strips comments and trailing commas in place of
		// the bytes, after which standard encoding/json applies.
		if err := json.Unmarshal(jsonc.ToJSON(data), proj); err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("invalid JSON in %s", path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, proj); err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("invalid YAML in %s", path), err)
		}
	}

	proj.Path = path
	if err := proj.normalize(filepath.Dir(path)); err != nil {
		return nil, err
	}
	if err := proj.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid config %s", path), err)
	}
	return proj, nil
}

// normalize expands "~" and resolves relative paths against baseDir.
func (p *Project) normalize(baseDir string) error {
	resolved, err := resolvePath(p.Dir, baseDir)
	if err != nil {
		return err
	}
	p.Dir = resolved

	for i, req := range p.Requirements {
		resolved, err := resolvePath(req, baseDir)
		if err != nil {
			return err
		}
		p.Requirements[i] = resolved
	}
	return nil
}

// Validate checks field values that the file formats cannot enforce.
func (p *Project) Validate() error {
	if p.Dir == "" {
		return fmt.Errorf("dir must not be empty")
	}
	if err := model.ValidatePrompt(p.Prompt); err != nil {
		return err
	}
	for _, target := range p.UpgradeTargets {
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf("upgrade targets must not contain empty entries")
		}
	}
	for _, req := range p.Requirements {
		if strings.TrimSpace(req) == "" {
			return fmt.Errorf("requirements entries must not be empty")
		}
	}
	return nil
}

// resolvePath expands a leading "~" and makes the path absolute
// relative to baseDir.
func resolvePath(path, baseDir string) (string, error) {
	if path == "" {
		return path, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	return filepath.Join(baseDir, expanded), nil
}
