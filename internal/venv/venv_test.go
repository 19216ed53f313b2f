package venv

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/venvup/internal/model"
)

// writeFakeVenv creates a directory that looks like a virtual
// environment: a pyvenv.cfg plus an (empty) interpreter file in the
// platform's bin directory. Test helper — no real Python is involved.
func writeFakeVenv(t *testing.T, dir, cfg string) {
	t.Helper()

	binDir := filepath.Join(dir, BinDir())
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFileName), []byte(cfg), 0o644))

	exe := "python"
	if runtime.GOOS == "windows" {
		exe = "python.exe"
	}
	require.NoError(t, os.WriteFile(filepath.Join(binDir, exe), []byte{}, 0o755))
}

// TestPythonPath verifies the interpreter path composition for the
// current platform.
func TestPythonPath(t *testing.T) {
	got := PythonPath("/env")
	assert.Equal(t, filepath.Join("/env", BinDir(), pythonExe()), got)
}

// TestExists_And_IsVenv covers the three directory states the CLI
// distinguishes: absent, present-but-plain, and an actual venv.
func TestExists_And_IsVenv(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	assert.False(t, Exists(missing))
	assert.False(t, IsVenv(missing))

	plain := t.TempDir()
	assert.True(t, Exists(plain))
	assert.False(t, IsVenv(plain))

	env := t.TempDir()
	writeFakeVenv(t, env, "home = /usr/bin\n")
	assert.True(t, Exists(env))
	assert.True(t, IsVenv(env))
}

// TestInspect_Ready verifies pyvenv.cfg fields are mapped onto the Env,
// including the prompt parens the venv module writes.
func TestInspect_Ready(t *testing.T) {
	dir := t.TempDir()
	writeFakeVenv(t, dir, `home = /opt/python/bin
include-system-site-packages = true
version = 3.12.4
prompt = (myproject)
`)

	env, err := Inspect(dir)
	require.NoError(t, err)

	assert.Equal(t, model.StatusReady, env.Status)
	assert.Equal(t, "/opt/python/bin", env.PythonHome)
	assert.Equal(t, "3.12.4", env.PythonVersion)
	assert.Equal(t, "myproject", env.Prompt)
	assert.True(t, env.SystemSitePackages)
	assert.False(t, env.CreatedAt.IsZero())
}

// TestInspect_VersionInfoKey verifies the Python 3.12+ "version_info"
// key is read when the older "version" key is absent.
func TestInspect_VersionInfoKey(t *testing.T) {
	dir := t.TempDir()
	writeFakeVenv(t, dir, "home = /usr/bin\nversion_info = 3.13.1\n")

	env, err := Inspect(dir)
	require.NoError(t, err)
	assert.Equal(t, "3.13.1", env.PythonVersion)
}

// TestInspect_Missing verifies a nonexistent directory reports missing
// without an error — absence is a state, not a failure.
func TestInspect_Missing(t *testing.T) {
	env, err := Inspect(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusMissing, env.Status)
}

// TestInspect_Broken verifies a directory without pyvenv.cfg reports
// broken.
func TestInspect_Broken(t *testing.T) {
	env, err := Inspect(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, model.StatusBroken, env.Status)
}

// TestInspect_DamagedCfg verifies that lines without "=" are skipped
// rather than failing the whole inspection.
func TestInspect_DamagedCfg(t *testing.T) {
	dir := t.TempDir()
	writeFakeVenv(t, dir, "garbage line\nhome = /usr/bin\n")

	env, err := Inspect(dir)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, env.Status)
	assert.Equal(t, "/usr/bin", env.PythonHome)
}

// TestRemove_RefusesNonVenv verifies the guard against deleting an
// arbitrary directory without --force.
func TestRemove_RefusesNonVenv(t *testing.T) {
	dir := t.TempDir()

	err := Remove(dir, false)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitVenvError, cliErr.Code)
	assert.True(t, Exists(dir), "directory must survive a refused removal")
}

// TestRemove_Venv verifies a venv directory is deleted.
func TestRemove_Venv(t *testing.T) {
	dir := t.TempDir()
	writeFakeVenv(t, dir, "home = /usr/bin\n")

	require.NoError(t, Remove(dir, false))
	assert.False(t, Exists(dir))
}

// TestRemove_ForceNonVenv verifies --force overrides the non-venv guard.
func TestRemove_ForceNonVenv(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Remove(dir, true))
	assert.False(t, Exists(dir))
}

// TestRemove_Missing verifies removal of a nonexistent environment
// reports ExitEnvNotFound.
func TestRemove_Missing(t *testing.T) {
	err := Remove(filepath.Join(t.TempDir(), "absent"), false)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitEnvNotFound, cliErr.Code)
}
