package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/resdata/internal/errors"
)

func TestGenDoc(t *testing.T) {
	tests := []struct {
		format string
		file   string
	}{
		{format: "markdown", file: "resdata_data.md"},
		{format: "man", file: "resdata-data.1"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "docs")

			stdout, _, err := execute(t, "gen-doc", "--dir", dir, "--format", tt.format)
			require.NoError(t, err)
			assert.Contains(t, stdout, dir)

			got, err := os.ReadFile(filepath.Join(dir, tt.file))
			require.NoError(t, err)
			assert.Contains(t, string(got), "segments")
		})
	}
}

func TestGenDoc_Errors(t *testing.T) {
	_, _, err := execute(t, "gen-doc")
	assert.Equal(t, errors.ExitUser, exitCode(t, err))

	_, _, err = execute(t, "gen-doc", "--dir", t.TempDir(), "--format", "pdf")
	assert.Equal(t, errors.ExitUser, exitCode(t, err))
}
