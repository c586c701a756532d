package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportsColor(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		isTTY bool
		want  bool
	}{
		{name: "tty without overrides", isTTY: true, want: true},
		{name: "NO_COLOR prevents color", env: map[string]string{"NO_COLOR": "1"}, isTTY: true, want: false},
		{name: "TERM=dumb prevents color", env: map[string]string{"TERM": "dumb"}, isTTY: true, want: false},
		{name: "non-TTY prevents color", isTTY: false, want: false},
		{name: "forced on non-TTY", env: map[string]string{"RESDATA_COLOR": "always"}, isTTY: false, want: true},
		{name: "NO_COLOR beats force", env: map[string]string{"RESDATA_COLOR": "always", "NO_COLOR": ""}, isTTY: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"NO_COLOR", "TERM", "RESDATA_COLOR"} {
				t.Setenv(k, "")
				os.Unsetenv(k)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, supportsColor(tt.isTTY))
		})
	}
}

func TestIsTTY_Buffer(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
}
