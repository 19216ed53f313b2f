package requirements

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// Kind classifies a requirements-file line coarsely. venvup only needs
// enough structure to report what a file asks pip to do, not to
// understand it.
type Kind string

const (
	// KindPackage is a package requirement line (name, specifier, URL,
	// or local path — venvup does not distinguish further).
	KindPackage Kind = "package"

	// KindEditable is an editable install line (-e / --editable).
	KindEditable Kind = "editable"

	// KindOption is a pip option line (e.g., --index-url, --no-binary).
	KindOption Kind = "option"
)

// Requirement is one effective line of a requirements file, after
// comment stripping and continuation joining.
type Requirement struct {
	// Raw is the line text as pip will see it.
	Raw string

	// Kind is the coarse classification of the line.
	Kind Kind

	// File is the path of the file the line came from. With nested
	// includes this may differ from the top-level file.
	File string

	// Line is the 1-based line number in File where the line starts.
	Line int
}

// File is the parsed form of a top-level requirements file, with all
// nested includes flattened in pip's evaluation order.
type File struct {
	// Path is the top-level requirements file path.
	Path string

	// Requirements lists the effective lines across the file and all
	// of its includes.
	Requirements []Requirement

	// Includes lists every file visited, top-level file first, in
	// first-visit order.
	Includes []string
}

// Packages returns only the package and editable requirements,
// i.e. the lines that cause pip to install something.
func (f *File) Packages() []Requirement {
	var out []Requirement
	for _, r := range f.Requirements {
		if r.Kind == KindPackage || r.Kind == KindEditable {
			out = append(out, r)
		}
	}
	return out
}

// Parse reads a requirements file and all of its nested includes.
//
// Returned errors are wrapped with file context; a missing file, an
// unreadable include, or a cyclic include chain all fail the parse.
func Parse(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}

	// Vertices are absolute file paths; PreventCycles makes AddEdge
	// fail on the edge that would close an include cycle.
	includes := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	if err := includes.AddVertex(abs); err != nil {
		return nil, errors.Wrapf(err, "registering %s", abs)
	}

	result := &File{Path: path}
	if err := parseFile(abs, includes, result); err != nil {
		return nil, err
	}
	return result, nil
}

// parseFile parses one file and recurses into its includes, appending
// to result in evaluation order.
func parseFile(abs string, includes graph.Graph[string, string], result *File) error {
	data, err := os.ReadFile(abs)
	if err != nil {
		return errors.Wrapf(err, "reading requirements file %s", abs)
	}
	result.Includes = append(result.Includes, abs)

	lines := strings.Split(string(data), "\n")
	for i := 0; i < len(lines); i++ {
		startLine := i + 1
		line := lines[i]

		// Join backslash continuations before any other processing,
		// matching pip's line assembly.
		for strings.HasSuffix(strings.TrimRight(line, " \t"), "\\") && i+1 < len(lines) {
			line = strings.TrimSuffix(strings.TrimRight(line, " \t"), "\\")
			i++
			line += lines[i]
		}

		line = stripComment(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if target, ok := includeTarget(line); ok {
			if err := recurseInclude(abs, target, includes, result); err != nil {
				return errors.Wrapf(err, "%s:%d", abs, startLine)
			}
			continue
		}

		result.Requirements = append(result.Requirements, Requirement{
			Raw:  line,
			Kind: classify(line),
			File: abs,
			Line: startLine,
		})
	}
	return nil
}

// recurseInclude registers the include edge (failing on cycles) and
// parses the included file. Include paths are relative to the file
// that contains the -r line, which is pip's behavior.
func recurseInclude(fromAbs, target string, includes graph.Graph[string, string], result *File) error {
	targetAbs := target
	if !filepath.IsAbs(targetAbs) {
		targetAbs = filepath.Join(filepath.Dir(fromAbs), target)
	}
	targetAbs = filepath.Clean(targetAbs)

	// AddVertex returns ErrVertexAlreadyExists when the file was seen
	// before; that alone is fine (diamond includes are legal), only a
	// cycle is not — and the AddEdge below catches that.
	if err := includes.AddVertex(targetAbs); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrapf(err, "registering include %s", targetAbs)
	}

	seen := false
	if err := includes.AddEdge(fromAbs, targetAbs); err != nil {
		if errors.Is(err, graph.ErrEdgeCreatesCycle) {
			return errors.Errorf("cyclic requirements include: %s -> %s", fromAbs, targetAbs)
		}
		if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return errors.Wrapf(err, "including %s", targetAbs)
		}
		seen = true
	}

	// A diamond include is parsed once; pip deduplicates the install
	// anyway and re-parsing would double the reported requirements.
	for _, visited := range result.Includes {
		if visited == targetAbs {
			seen = true
			break
		}
	}
	if seen {
		return nil
	}
	return parseFile(targetAbs, includes, result)
}

// includeTarget extracts the file path from a -r/--requirement line.
func includeTarget(line string) (string, bool) {
	for _, prefix := range []string{"-r ", "--requirement ", "-r\t", "--requirement\t"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	if target, ok := strings.CutPrefix(line, "--requirement="); ok {
		return strings.TrimSpace(target), true
	}
	return "", false
}

// classify gives a line its coarse Kind.
func classify(line string) Kind {
	if strings.HasPrefix(line, "-e ") || strings.HasPrefix(line, "-e\t") ||
		strings.HasPrefix(line, "--editable ") || strings.HasPrefix(line, "--editable=") {
		return KindEditable
	}
	if strings.HasPrefix(line, "-") {
		return KindOption
	}
	return KindPackage
}

// stripComment removes a trailing comment. pip treats "#" as a comment
// only at line start or after whitespace, so "package#egg" style URLs
// survive.
func stripComment(line string) string {
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return ""
	}
	for i := 1; i < len(line); i++ {
		if line[i] == '#' && (line[i-1] == ' ' || line[i-1] == '\t') {
			return line[:i]
		}
	}
	return line
}
