// Package cli — settings_test.go covers the three-layer settings merge
// (flags / project config / user config) without touching Python, pip,
// or the network.
package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/venvup/internal/config"
)

// setupProject chdirs into a fresh project directory and isolates the
// user config under a temp XDG_CONFIG_HOME, so host configuration
// cannot leak into the test. Returns the cwd as the process sees it
// (t.TempDir may sit behind a symlink, e.g. /tmp on macOS).
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	return cwd
}

// writeProjectFile writes a project config into dir.
func writeProjectFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// writeUserConfig writes the user config under the test's
// XDG_CONFIG_HOME.
func writeUserConfig(t *testing.T, dir, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, "xdg", "venvup")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o644))
}

// TestResolveSettings_Defaults verifies built-in defaults apply when no
// config exists: .venv and requirements.txt anchored at the cwd.
func TestResolveSettings_Defaults(t *testing.T) {
	dir := setupProject(t)

	s, err := resolveSettings("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".venv"), s.EnvDir)
	assert.Equal(t, []string{filepath.Join(dir, "requirements.txt")}, s.Requirements)
	assert.Equal(t, []string{"pip"}, s.UpgradeTargets)
	assert.Empty(t, s.Python)
	assert.Empty(t, s.ConfigPath)
}

// TestResolveSettings_ProjectConfig verifies the project file overrides
// defaults and records its own path.
func TestResolveSettings_ProjectConfig(t *testing.T) {
	dir := setupProject(t)
	writeProjectFile(t, dir, "venvup.yaml", `dir: envs/dev
python: python3.12
prompt: demo
`)

	s, err := resolveSettings("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "envs", "dev"), s.EnvDir)
	assert.Equal(t, "python3.12", s.Python)
	assert.Equal(t, "demo", s.Prompt)
	assert.Equal(t, filepath.Join(dir, "venvup.yaml"), s.ConfigPath)
}

// TestResolveSettings_UserConfigFallback verifies user-level defaults
// fill fields the project file leaves empty, and lose when it doesn't.
func TestResolveSettings_UserConfigFallback(t *testing.T) {
	dir := setupProject(t)
	writeUserConfig(t, dir, `python = "python3.10"
index-url = "https://pypi.example.com/simple"
`)
	writeProjectFile(t, dir, "venvup.yaml", "prompt: demo\n")

	s, err := resolveSettings("", nil)
	require.NoError(t, err)

	assert.Equal(t, "python3.10", s.Python, "user config supplies python when project is silent")
	assert.Equal(t, []string{"--index-url", "https://pypi.example.com/simple"}, s.PipArgs)
}

// TestResolveSettings_ProjectBeatsUser verifies precedence between the
// two config layers.
func TestResolveSettings_ProjectBeatsUser(t *testing.T) {
	dir := setupProject(t)
	writeUserConfig(t, dir, "python = \"python3.10\"\n")
	writeProjectFile(t, dir, "venvup.yaml", "python: python3.12\n")

	s, err := resolveSettings("", nil)
	require.NoError(t, err)
	assert.Equal(t, "python3.12", s.Python)
}

// TestResolveSettings_FlagsBeatEverything verifies flag values override
// both config layers, and relative flag paths anchor at the cwd.
func TestResolveSettings_FlagsBeatEverything(t *testing.T) {
	dir := setupProject(t)
	writeUserConfig(t, dir, "python = \"python3.10\"\n")
	writeProjectFile(t, dir, "venvup.yaml", `python: python3.12
requirements: [requirements.txt]
`)

	flags := &envFlags{
		python:       "python3.13",
		requirements: []string{"requirements-dev.txt"},
	}
	s, err := resolveSettings("", flags)
	require.NoError(t, err)

	assert.Equal(t, "python3.13", s.Python)
	assert.Equal(t, []string{filepath.Join(dir, "requirements-dev.txt")}, s.Requirements)
}

// TestResolveSettings_DirArg verifies the positional directory argument
// overrides the configured env dir.
func TestResolveSettings_DirArg(t *testing.T) {
	dir := setupProject(t)
	writeProjectFile(t, dir, "venvup.yaml", "dir: envs/dev\n")

	s, err := resolveSettings(".venv311", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".venv311"), s.EnvDir)
}

// TestFirstNonEmpty covers the precedence helper.
func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("a", "b"))
	assert.Equal(t, "b", firstNonEmpty("", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "", firstNonEmpty())
}

// TestAbsAll verifies relative paths anchor at base and absolute paths
// pass through cleaned.
func TestAbsAll(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(base, "already", "abs")

	got := absAll(base, []string{"rel.txt", abs + string(os.PathSeparator)})
	assert.Equal(t, []string{filepath.Join(base, "rel.txt"), abs}, got)
}

// TestApplyUserColor verifies the user color preference, and that JSON
// mode disables color even when the user config says "always".
func TestApplyUserColor(t *testing.T) {
	origNoColor := color.NoColor
	origJSON := jsonOutput
	t.Cleanup(func() {
		color.NoColor = origNoColor
		jsonOutput = origJSON
	})

	tests := []struct {
		name    string
		json    bool
		pref    string
		initial bool
		want    bool
	}{
		{name: "always enables color", pref: "always", initial: true, want: false},
		{name: "never disables color", pref: "never", initial: false, want: true},
		{name: "auto leaves detection alone", pref: "auto", initial: true, want: true},
		{name: "json wins over always", json: true, pref: "always", initial: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonOutput = tt.json
			color.NoColor = tt.initial

			applyUserColor(&config.User{Color: tt.pref})
			assert.Equal(t, tt.want, color.NoColor)
		})
	}
}
