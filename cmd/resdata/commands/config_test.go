package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/resdata/internal/errors"
	"github.com/thoreinstein/resdata/pkg/datapaths"
)

func TestConfigShow(t *testing.T) {
	p := newTestProject(t)
	// Relative values come back resolved.
	p.writeFile(t, "config/config.yml", "data_root: '../data'\noutput_root: '../out'\n")
	want := datapaths.Config{DataRoot: p.data, OutputRoot: p.out}

	tests := []struct {
		name   string
		args   []string
		decode func([]byte, any) error
	}{
		{name: "default is yaml", args: []string{"config"}, decode: yaml.Unmarshal},
		{name: "yaml", args: []string{"config", "show", "--format", "yaml"}, decode: yaml.Unmarshal},
		{name: "json", args: []string{"config", "show", "-o", "json"}, decode: json.Unmarshal},
		{name: "toml", args: []string{"config", "show", "--format", "toml"}, decode: toml.Unmarshal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, append([]string{"-C", p.root}, tt.args...)...)
			require.NoError(t, err)

			var got datapaths.Config
			require.NoError(t, tt.decode([]byte(stdout), &got), stdout)
			assert.Equal(t, want, got)
		})
	}
}

func TestConfigShow_UnknownFormat(t *testing.T) {
	p := newTestProject(t)
	p.writeConfig(t)

	_, _, err := execute(t, "-C", p.root, "config", "show", "--format", "ini")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, exitCode(t, err))
}

func TestConfigShow_Malformed(t *testing.T) {
	p := newTestProject(t)
	p.writeFile(t, "config/config.yml", "output_root: /tmp/out\n")

	_, _, err := execute(t, "-C", p.root, "config", "show")
	assert.True(t, errors.Is(err, datapaths.ErrMalformedConfiguration), "got %v", err)
	assert.Equal(t, errors.ExitUser, exitCode(t, err))
}

func TestConfigPath(t *testing.T) {
	p := newTestProject(t)

	// The path is printed even before the file exists.
	stdout, _, err := execute(t, "-C", p.root, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.root, "config", "config.yml")+"\n", stdout)
}

func TestConfigEdit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the editor")
	}
	p := newTestProject(t)
	p.writeFile(t, "config/config.yml", "data_root: /path/to/placeholder\n")

	// The fake editor overwrites the file it is given.
	script := filepath.Join(t.TempDir(), "fake-editor.sh")
	body := fmt.Sprintf("#!/bin/sh\nprintf \"data_root: '%s'\\n\" > \"$1\"\n", p.data)
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	t.Setenv("EDITOR", script)

	stdout, _, err := execute(t, "-C", p.root, "config", "edit")
	require.NoError(t, err)
	assert.Contains(t, stdout, "data_root resolves to "+p.data)
}

func TestConfigEdit_StillBroken(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the editor")
	}
	p := newTestProject(t)
	p.writeFile(t, "config/config.yml", "data_root: /path/to/placeholder\n")
	t.Setenv("EDITOR", "true")

	_, _, err := execute(t, "-C", p.root, "config", "edit")
	assert.True(t, errors.Is(err, datapaths.ErrDataRootUnreachable), "got %v", err)
}

func TestConfigEdit_NoConfig(t *testing.T) {
	p := newTestProject(t)

	_, _, err := execute(t, "-C", p.root, "config", "edit")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, exitCode(t, err))
}
