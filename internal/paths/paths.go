package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is used for per-user state directories.
const AppName = "resdata"

// Project layout, relative to the project root.
const (
	// ConfigDirName holds both the local config file and its committed template.
	ConfigDirName = "config"

	// ConfigFileName is the per-user file. It must never be committed.
	ConfigFileName = "config.yml"

	// TemplateFileName is the committed template with placeholder values.
	TemplateFileName = "config.template.yml"

	// GitignoreFileName is the project's ignore file.
	GitignoreFileName = ".gitignore"
)

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrProjectRootNotFound indicates no ancestor directory looked like a project root.
	ErrProjectRootNotFound = errors.New("project root not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created output directories.
// Output trees are usually shared with collaborators, so they are group/world readable.
const DefaultDirPerm = 0o755

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
// This function is idempotent; it returns nil if the directory already exists,
// including when another process created it concurrently.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory as seen by xdg.
// It returns an empty string if it cannot be determined.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	if xdg.Home != "" {
		return xdg.Home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// StateHome returns the XDG state home directory.
// On Linux: ~/.local/state
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func StateHome() string {
	return xdg.StateHome
}

// DefaultLogFile returns the log file used when --log-file is given without a value.
// Returns: <StateHome>/resdata/resdata.log
func DefaultLogFile() string {
	return filepath.Join(StateHome(), AppName, AppName+".log")
}

// ConfigFile returns <projectRoot>/config/config.yml.
func ConfigFile(projectRoot string) string {
	return filepath.Join(projectRoot, ConfigDirName, ConfigFileName)
}

// TemplateFile returns <projectRoot>/config/config.template.yml.
func TemplateFile(projectRoot string) string {
	return filepath.Join(projectRoot, ConfigDirName, TemplateFileName)
}

// GitignoreFile returns <projectRoot>/.gitignore.
func GitignoreFile(projectRoot string) string {
	return filepath.Join(projectRoot, GitignoreFileName)
}

// ConfigFileRel is the config file path relative to the project root,
// always slash separated, as it would appear in .gitignore.
func ConfigFileRel() string {
	return ConfigDirName + "/" + ConfigFileName
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// On Windows "~\" is accepted too. Other forms such as "~user" are
// returned unchanged.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !hasBackslashHome(p) {
		return p, nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return home, nil
	}
	return filepath.Join(home, p[2:]), nil
}

// hasBackslashHome reports whether p starts with `~\` on a system where
// backslash separates path elements.
func hasBackslashHome(p string) bool {
	return filepath.Separator == '\\' && strings.HasPrefix(p, `~\`)
}

// Absolute turns a configured path value into an absolute, cleaned path in
// host separator style. Relative values are anchored at base, not at the
// process working directory.
func Absolute(base, p string) (string, error) {
	if strings.ContainsRune(p, '\x00') {
		return "", errors.Wrapf(ErrInvalidPath, "%q contains a NUL byte", p)
	}
	expanded, err := ExpandHome(filepath.FromSlash(p))
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(base, expanded)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, "making %s absolute", p)
	}
	return abs, nil
}

// Canonical resolves every symbolic link in an existing path.
// The error wraps fs.ErrNotExist when the path does not exist.
func Canonical(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolved), nil
}

// CanonicalPrefix resolves symbolic links in the longest existing prefix of p
// and appends the remaining, not yet existing, components unchanged.
// It never fails: if nothing along the path can be resolved, p is returned cleaned.
func CanonicalPrefix(p string) string {
	p = filepath.Clean(p)
	var missing []string
	cur := p
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			parts := make([]string, 0, len(missing)+1)
			parts = append(parts, resolved)
			for i := len(missing) - 1; i >= 0; i-- {
				parts = append(parts, missing[i])
			}
			return filepath.Join(parts...)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		missing = append(missing, filepath.Base(cur))
		cur = parent
	}
}

// FindProjectRoot walks upward from start and returns the first directory
// that contains config/config.yml, config/config.template.yml or .git.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrapf(err, "making %s absolute", start)
	}
	for {
		if isProjectRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Wrapf(ErrProjectRootNotFound, "searched upward from %s", start)
		}
		dir = parent
	}
}

func isProjectRoot(dir string) bool {
	for _, marker := range []string{ConfigFile(dir), TemplateFile(dir), filepath.Join(dir, ".git")} {
		if _, err := os.Lstat(marker); err == nil {
			return true
		}
	}
	return false
}
