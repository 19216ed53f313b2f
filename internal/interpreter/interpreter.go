package interpreter

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmr-tortoise/venvup/internal/model"
)

// probeScript is passed to `python -c` to report the interpreter's
// version and resolved executable path on two lines. It avoids any
// imports beyond sys so it works on minimal installations.
const probeScript = "import sys; print('%d.%d.%d' % sys.version_info[:3]); print(sys.executable)"

// probeTimeout bounds a single candidate probe. A healthy interpreter
// answers in well under a second; anything slower is effectively broken
// (e.g., a Windows Store alias that blocks on first use).
const probeTimeout = 10 * time.Second

// DefaultCandidates is the ordered list of interpreter commands probed
// when no explicit interpreter is configured. Generic names come first
// so the user's default python3 wins over versioned fallbacks.
var DefaultCandidates = []string{
	"python3",
	"python",
	"python3.13",
	"python3.12",
	"python3.11",
	"python3.10",
	"python3.9",
}

// Finder discovers Python interpreters by probing candidate commands.
//
// It is stateless — all methods receive their inputs as parameters.
// The struct exists as a receiver to support future extensions such as
// a configurable candidate list or probe logging.
type Finder struct{}

// NewFinder creates a new interpreter Finder instance.
func NewFinder() *Finder {
	return &Finder{}
}

// Discover returns a usable Python interpreter.
//
// When explicit is non-empty it names a command or path chosen by the
// user (--python flag or config); only that candidate is probed and a
// failure is an error. Otherwise the default candidate list is probed
// concurrently and the first candidate (in list order, not completion
// order) that satisfies minVersion wins.
//
// Returns a model.CLIError with ExitInterpreterNotFound when nothing
// usable is found.
func (f *Finder) Discover(ctx context.Context, explicit, minVersion string) (model.Interpreter, error) {
	if explicit != "" {
		interp, err := f.Probe(ctx, explicit)
		if err != nil {
			return model.Interpreter{}, model.WrapCLIError(
				model.ExitInterpreterNotFound,
				fmt.Sprintf("interpreter %q is not usable", explicit),
				err,
			)
		}
		if !interp.VersionAtLeast(minVersion) {
			return model.Interpreter{}, model.NewCLIError(
				model.ExitInterpreterNotFound,
				fmt.Sprintf("interpreter %q is Python %s, but %s or newer is required", explicit, interp.Version, minVersion),
			)
		}
		return interp, nil
	}

	results, err := f.probeAll(ctx, DefaultCandidates)
	if err != nil {
		return model.Interpreter{}, err
	}

	for _, r := range results {
		if r.interp.VersionAtLeast(minVersion) {
			return r.interp, nil
		}
	}

	msg := "no Python interpreter found (tried: " + strings.Join(DefaultCandidates, ", ") + ")"
	if minVersion != "" {
		msg = fmt.Sprintf("no Python >= %s found (tried: %s)", minVersion, strings.Join(DefaultCandidates, ", "))
	}
	return model.Interpreter{}, model.NewCLIError(model.ExitInterpreterNotFound, msg)
}

// Probe runs a single candidate command and parses its version and
// executable path. The candidate may be a bare command name (resolved
// via PATH) or an absolute/relative path.
func (f *Finder) Probe(ctx context.Context, candidate string) (model.Interpreter, error) {
	// LookPath is called first so a missing binary produces a clean
	// "not found" error instead of an exec failure from the OS.
	resolved, err := exec.LookPath(candidate)
	if err != nil {
		return model.Interpreter{}, fmt.Errorf("command %q not found in PATH", candidate)
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	// #nosec G204 — candidate comes from the fixed list or user config
	cmd := exec.CommandContext(probeCtx, resolved, "-c", probeScript)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return model.Interpreter{}, fmt.Errorf("probe of %q failed: %s", candidate, stderrStr)
		}
		return model.Interpreter{}, fmt.Errorf("probe of %q failed: %w", candidate, err)
	}

	return parseProbeOutput(candidate, stdout.String())
}

// probeResult pairs a successfully probed interpreter with its position
// in the candidate list, so concurrent completion order does not affect
// which interpreter is selected.
type probeResult struct {
	index  int
	interp model.Interpreter
}

// probeAll probes every candidate concurrently and returns the
// successful results sorted by candidate-list order. Individual probe
// failures are expected (most hosts have only one or two of the
// candidates installed) and are silently skipped.
func (f *Finder) probeAll(ctx context.Context, candidates []string) ([]probeResult, error) {
	var (
		mu      sync.Mutex
		results []probeResult
	)

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(4)

	for i, cand := range candidates {
		i, cand := i, cand
		grp.Go(func() error {
			interp, err := f.Probe(grpCtx, cand)
			if err != nil {
				// A failed candidate is not an error for discovery;
				// only context cancellation aborts the group.
				return grpCtx.Err()
			}
			mu.Lock()
			results = append(results, probeResult{index: i, interp: interp})
			mu.Unlock()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "interpreter discovery interrupted", err)
	}

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })
	return results, nil
}

// parseProbeOutput parses the two-line probe output (version, then
// executable path) into a model.Interpreter.
func parseProbeOutput(candidate, output string) (model.Interpreter, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 2 {
		return model.Interpreter{}, fmt.Errorf("unexpected probe output from %q: %q", candidate, output)
	}

	version := strings.TrimSpace(lines[0])
	executable := strings.TrimSpace(lines[1])
	if version == "" || executable == "" {
		return model.Interpreter{}, fmt.Errorf("unexpected probe output from %q: %q", candidate, output)
	}

	return model.Interpreter{
		Command:    candidate,
		Executable: executable,
		Version:    version,
	}, nil
}
