package datapaths

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/resdata/internal/logging"
)

func TestDataPath(t *testing.T) {
	root, data, _ := scenario(t)
	r := New(root, WithLogger(logging.ForTest(t)))

	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{name: "no segments", segments: nil, want: data},
		{name: "single file", segments: []string{"foo.csv"}, want: filepath.Join(data, "foo.csv")},
		{name: "ordered segments", segments: []string{"a", "b", "c"}, want: filepath.Join(data, "a", "b", "c")},
		{name: "nonexistent file", segments: []string{"later", "written.csv"}, want: filepath.Join(data, "later", "written.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.DataPath(tt.segments...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// Nothing is created below the data root.
	_, err := os.Stat(filepath.Join(data, "later"))
	assert.True(t, os.IsNotExist(err))
}

func TestDataPath_PackageLevel(t *testing.T) {
	root, data, _ := scenario(t)

	got, err := DataPath(root, "foo.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "foo.csv"), got)
}

func TestOutputPath(t *testing.T) {
	root, _, out := scenario(t)

	got, err := OutputPath(root, "run1", "result.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "run1", "result.csv"), got)

	info, err := os.Stat(filepath.Join(out, "run1"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// The file itself is left for the caller to write.
	_, err = os.Stat(got)
	assert.True(t, os.IsNotExist(err))

	again, err := OutputPath(root, "run1", "result.csv")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestOutputPath_NoSegments(t *testing.T) {
	root, _, out := scenario(t)

	got, err := OutputPath(root)
	require.NoError(t, err)
	assert.Equal(t, out, got)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOutputPath_DeepTree(t *testing.T) {
	root, _, out := scenario(t)

	got, err := OutputPath(root, "figures", "2024", "q1", "plot.png")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(out, "figures", "2024", "q1"))
	assert.Equal(t, filepath.Join(out, "figures", "2024", "q1", "plot.png"), got)
}

func TestOutputPath_Concurrent(t *testing.T) {
	root, _, out := scenario(t)
	r := New(root)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.OutputPath("shared", "nested", "file.txt")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.DirExists(t, filepath.Join(out, "shared", "nested"))
}

func TestOutputPath_Unwritable(t *testing.T) {
	base := realTempDir(t)
	data := filepath.Join(base, "data")
	require.NoError(t, os.Mkdir(data, 0o755))
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	// output_root sits below a regular file, so no directory can be created there.
	root := writeConfig(t, yamlConfig(data, filepath.Join(blocker, "out")))

	_, err := OutputPath(root, "run1", "result.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutputDirectoryUnwritable), "got %v", err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestOutputPath_MissingOutputRoot(t *testing.T) {
	base := realTempDir(t)
	root := writeConfig(t, yamlConfig(base, ""))

	_, err := OutputPath(root, "x.csv")
	assert.True(t, errors.Is(err, ErrMalformedConfiguration), "got %v", err)
}

func TestOperations_ConfigurationNotFound(t *testing.T) {
	root := realTempDir(t)

	_, err := DataPath(root, "foo.csv")
	assert.True(t, errors.Is(err, ErrConfigurationNotFound))
	assert.Contains(t, err.Error(), "template")

	_, err = OutputPath(root, "run1", "result.csv")
	assert.True(t, errors.Is(err, ErrConfigurationNotFound))
}

func TestResolver_ReloadsEveryCall(t *testing.T) {
	root, data, _ := scenario(t)
	r := New(root)

	got, err := r.DataPath()
	require.NoError(t, err)
	assert.Equal(t, data, got)

	other := filepath.Join(filepath.Dir(data), "other-data")
	require.NoError(t, os.Mkdir(other, 0o755))
	require.NoError(t, os.WriteFile(r.ConfigFile(), []byte(yamlConfig(other, "")), 0o600))

	got, err = r.DataPath()
	require.NoError(t, err)
	assert.Equal(t, other, got)
}

func TestResolver_Cache(t *testing.T) {
	root, data, _ := scenario(t)
	r := New(root, WithCache(), WithLogger(logging.ForTest(t)))

	first, err := r.Config()
	require.NoError(t, err)
	assert.Equal(t, data, first.DataRoot)

	// Callers get copies.
	first.DataRoot = "mutated"
	second, err := r.Config()
	require.NoError(t, err)
	assert.Equal(t, data, second.DataRoot)

	t.Run("invalidated by file change", func(t *testing.T) {
		other := filepath.Join(filepath.Dir(data), "a-much-longer-data-directory")
		require.NoError(t, os.Mkdir(other, 0o755))
		require.NoError(t, os.WriteFile(r.ConfigFile(), []byte(yamlConfig(other, "")), 0o600))

		got, err := r.DataPath()
		require.NoError(t, err)
		assert.Equal(t, other, got)

		t.Run("invalidated when data root disappears", func(t *testing.T) {
			require.NoError(t, os.Remove(other))
			_, err := r.DataPath()
			assert.True(t, errors.Is(err, ErrDataRootUnreachable), "got %v", err)
		})
	})

	t.Run("invalidated when file is removed", func(t *testing.T) {
		require.NoError(t, os.Remove(r.ConfigFile()))
		_, err := r.Config()
		assert.True(t, errors.Is(err, ErrConfigurationNotFound), "got %v", err)
	})
}

func TestResolver_Invalidate(t *testing.T) {
	root, _, _ := scenario(t)
	r := New(root, WithCache())

	_, err := r.Config()
	require.NoError(t, err)
	r.Invalidate()

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Nil(t, r.cached)
}

func TestResolver_StrictSegments(t *testing.T) {
	root, data, out := scenario(t)
	strict := New(root, WithStrictSegments())
	lenient := New(root)

	rejected := [][]string{
		{".."},
		{"a", "..", "..", "x"},
		{"a/../../x"},
		{filepath.Join(string(filepath.Separator), "etc", "passwd")},
	}
	for _, segs := range rejected {
		_, err := strict.DataPath(segs...)
		assert.True(t, errors.Is(err, ErrSegmentEscapesRoot), "DataPath(%q) = %v", segs, err)

		_, err = strict.OutputPath(segs...)
		assert.True(t, errors.Is(err, ErrSegmentEscapesRoot), "OutputPath(%q) = %v", segs, err)
	}

	got, err := strict.DataPath("a", "..", "b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "b"), got)

	got, err = strict.OutputPath("run1", "result.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "run1", "result.csv"), got)

	// Without strict mode segments are trusted and joined as given.
	got, err = lenient.DataPath("..", "sibling")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(data), "sibling"), got)
}

func TestCheckSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		wantErr  bool
	}{
		{name: "empty", segments: nil},
		{name: "plain", segments: []string{"a", "b.csv"}},
		{name: "empty string segment", segments: []string{""}},
		{name: "inner dot dot", segments: []string{"a", "..", "b"}},
		{name: "back to root", segments: []string{"a", ".."}},
		{name: "climbs", segments: []string{".."}, wantErr: true},
		{name: "absolute", segments: []string{string(filepath.Separator) + "x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSegments(tt.segments)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrSegmentEscapesRoot))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolver_DirPerm(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	root, _, out := scenario(t)

	_, err := New(root, WithDirPerm(0o700)).OutputPath("private", "x.csv")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(out, "private"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}
