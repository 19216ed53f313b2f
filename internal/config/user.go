package config

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/mmr-tortoise/venvup/internal/model"
)

// User holds host-wide defaults from ~/.config/venvup/config.toml.
// Everything here can be overridden per project or per invocation.
type User struct {
	// Python names the default interpreter command or path.
	Python string `toml:"python"`

	// MinVersion is the default minimum interpreter version.
	MinVersion string `toml:"min-version"`

	// IndexURL, when set, adds --index-url to every pip install.
	// Typical use: a private package index.
	IndexURL string `toml:"index-url"`

	// Color controls colored terminal output ("auto", "always",
	// "never"). Empty means auto.
	Color string `toml:"color"`
}

// UserConfigPath returns the location of the user config file,
// honoring XDG_CONFIG_HOME when set.
func UserConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "venvup", "config.toml"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "venvup", "config.toml"), nil
}

// LoadUser reads the user config file. A missing file is not an error;
// it returns an empty User so callers never need a nil check.
func LoadUser() (*User, error) {
	path, err := UserConfigPath()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to locate user config", err)
	}
	return LoadUserFrom(path)
}

// LoadUserFrom reads a user config from an explicit path. Split out
// from LoadUser for tests.
func LoadUserFrom(path string) (*User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &User{}, nil
		}
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to read user config %s", path), err)
	}

	user := &User{}
	if err := toml.Unmarshal(data, user); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid TOML in %s", path), err)
	}
	if err := user.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid user config %s", path), err)
	}
	return user, nil
}

// Validate checks enum-like fields.
func (u *User) Validate() error {
	switch u.Color {
	case "", "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("invalid color value %q (valid: auto, always, never)", u.Color)
	}
}
