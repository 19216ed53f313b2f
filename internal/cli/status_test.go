// Package cli — status_test.go covers the status command's --expect
// check. The mismatch paths return before pip is ever invoked, so no
// Python installation is needed.
package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/venvup/internal/model"
	"github.com/mmr-tortoise/venvup/internal/venv"
)

// TestRunStatus_Expect verifies --expect fails on status mismatch,
// passes on match, and rejects unknown status names.
func TestRunStatus_Expect(t *testing.T) {
	tests := []struct {
		name      string
		makeVenv  bool
		expect    string
		wantErr   bool
		wantInMsg string
	}{
		{
			name:     "match ready",
			makeVenv: true,
			expect:   "ready",
		},
		{
			name:      "mismatch missing env",
			expect:    "ready",
			wantErr:   true,
			wantInMsg: "is missing, expected ready",
		},
		{
			name:      "mismatch ready env",
			makeVenv:  true,
			expect:    "missing",
			wantErr:   true,
			wantInMsg: "is ready, expected missing",
		},
		{
			name:      "invalid status name",
			expect:    "pristine",
			wantErr:   true,
			wantInMsg: "invalid --expect value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupProject(t)
			if tt.makeVenv {
				envDir := filepath.Join(dir, ".venv")
				require.NoError(t, os.MkdirAll(envDir, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(envDir, venv.CfgFileName), []byte("home = /usr/bin\nversion = 3.12.4\n"), 0o644))
			}

			err := runStatus(context.Background(), "", &statusFlags{noPackages: true, expect: tt.expect})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr))
			assert.Equal(t, model.ExitGeneralError, cliErr.Code)
			assert.Contains(t, err.Error(), tt.wantInMsg)
		})
	}
}
