package requirements

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeReq writes a requirements file into dir and returns its path.
func writeReq(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestParse_Basic verifies comment stripping, blank-line skipping, and
// line classification on a typical requirements file.
func TestParse_Basic(t *testing.T) {
	dir := t.TempDir()
	path := writeReq(t, dir, "requirements.txt", `# comment line
requests==2.32.3

flask>=3.0  # trailing comment
-e ./local-package
--index-url https://pypi.example.com/simple
`)

	f, err := Parse(path)
	require.NoError(t, err)

	require.Len(t, f.Requirements, 4)
	assert.Equal(t, "requests==2.32.3", f.Requirements[0].Raw)
	assert.Equal(t, KindPackage, f.Requirements[0].Kind)
	assert.Equal(t, "flask>=3.0", f.Requirements[1].Raw)
	assert.Equal(t, KindEditable, f.Requirements[2].Kind)
	assert.Equal(t, KindOption, f.Requirements[3].Kind)

	// Packages() excludes the option line but keeps the editable.
	assert.Len(t, f.Packages(), 3)
}

// TestParse_LineNumbers verifies requirements carry their source file
// and 1-based line numbers for error reporting.
func TestParse_LineNumbers(t *testing.T) {
	dir := t.TempDir()
	path := writeReq(t, dir, "requirements.txt", "# header\nrequests\n")

	f, err := Parse(path)
	require.NoError(t, err)

	require.Len(t, f.Requirements, 1)
	assert.Equal(t, 2, f.Requirements[0].Line)
	assert.Equal(t, filepath.Clean(path), filepath.Clean(f.Requirements[0].File))
}

// TestParse_Continuation verifies backslash continuations are joined
// the way pip assembles them.
func TestParse_Continuation(t *testing.T) {
	dir := t.TempDir()
	path := writeReq(t, dir, "requirements.txt", "requests \\\n==2.32.3\n")

	f, err := Parse(path)
	require.NoError(t, err)

	require.Len(t, f.Requirements, 1)
	assert.Equal(t, "requests ==2.32.3", f.Requirements[0].Raw)
}

// TestParse_HashInURL verifies "#" without preceding whitespace is not
// treated as a comment, so URL fragments survive.
func TestParse_HashInURL(t *testing.T) {
	dir := t.TempDir()
	path := writeReq(t, dir, "requirements.txt",
		"git+https://example.com/repo.git#egg=thing\n")

	f, err := Parse(path)
	require.NoError(t, err)

	require.Len(t, f.Requirements, 1)
	assert.Equal(t, "git+https://example.com/repo.git#egg=thing", f.Requirements[0].Raw)
}

// TestParse_Includes verifies nested -r includes are followed relative
// to the including file, in evaluation order.
func TestParse_Includes(t *testing.T) {
	dir := t.TempDir()
	writeReq(t, dir, "base.txt", "requests\n")
	path := writeReq(t, dir, "requirements.txt", "-r base.txt\nflask\n")

	f, err := Parse(path)
	require.NoError(t, err)

	require.Len(t, f.Requirements, 2)
	assert.Equal(t, "requests", f.Requirements[0].Raw)
	assert.Equal(t, "flask", f.Requirements[1].Raw)
	assert.Len(t, f.Includes, 2)
}

// TestParse_DiamondInclude verifies a file included twice through
// different paths is parsed only once.
func TestParse_DiamondInclude(t *testing.T) {
	dir := t.TempDir()
	writeReq(t, dir, "common.txt", "requests\n")
	writeReq(t, dir, "a.txt", "-r common.txt\nflask\n")
	writeReq(t, dir, "b.txt", "-r common.txt\ndjango\n")
	path := writeReq(t, dir, "requirements.txt", "-r a.txt\n-r b.txt\n")

	f, err := Parse(path)
	require.NoError(t, err)

	raws := make([]string, 0, len(f.Requirements))
	for _, r := range f.Requirements {
		raws = append(raws, r.Raw)
	}
	assert.Equal(t, []string{"requests", "flask", "django"}, raws)
}

// TestParse_CyclicInclude verifies a cyclic include chain is reported
// as an error instead of recursing forever.
func TestParse_CyclicInclude(t *testing.T) {
	dir := t.TempDir()
	writeReq(t, dir, "a.txt", "-r b.txt\n")
	writeReq(t, dir, "b.txt", "-r a.txt\n")
	path := writeReq(t, dir, "requirements.txt", "-r a.txt\n")

	_, err := Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic requirements include")
}

// TestParse_SelfInclude verifies the degenerate one-file cycle.
func TestParse_SelfInclude(t *testing.T) {
	dir := t.TempDir()
	path := writeReq(t, dir, "requirements.txt", "-r requirements.txt\n")

	_, err := Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic requirements include")
}

// TestParse_IncludeEqualsForm verifies the --requirement=file spelling.
func TestParse_IncludeEqualsForm(t *testing.T) {
	dir := t.TempDir()
	writeReq(t, dir, "base.txt", "requests\n")
	path := writeReq(t, dir, "requirements.txt", "--requirement=base.txt\n")

	f, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, f.Requirements, 1)
	assert.Equal(t, "requests", f.Requirements[0].Raw)
}

// TestParse_MissingFile verifies a nonexistent file fails with the
// path in the error.
func TestParse_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")

	_, err := Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.txt")
}

// TestParse_MissingInclude verifies a broken -r reference fails with
// the including location in the error chain.
func TestParse_MissingInclude(t *testing.T) {
	dir := t.TempDir()
	path := writeReq(t, dir, "requirements.txt", "-r nope.txt\n")

	_, err := Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.txt")
	assert.Contains(t, err.Error(), "requirements.txt:1")
}

// TestParse_EmptyFile verifies an empty file parses to zero
// requirements — pip accepts it, so venvup must too.
func TestParse_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeReq(t, dir, "requirements.txt", "")

	f, err := Parse(path)
	require.NoError(t, err)
	assert.Empty(t, f.Requirements)
	assert.Empty(t, f.Packages())
}
