// Package git wraps the few git queries used to keep per-user
// configuration out of version control.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotRepository is returned when a directory is not a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// ErrUnavailable is returned when the git binary cannot be found.
var ErrUnavailable = errors.New("git is not installed")

// ValidateRepo checks that root is the top of a git work tree by
// verifying the existence of a .git entry. Worktrees and submodules
// use a .git file, so both files and directories are accepted.
func ValidateRepo(root string) error {
	gitDir := filepath.Join(root, ".git")
	if _, err := os.Stat(gitDir); err != nil {
		if os.IsNotExist(err) {
			return errors.Mark(errors.Newf("not a git repository: %s", root), ErrNotRepository)
		}
		return errors.Wrap(err, "checking git directory")
	}
	return nil
}

// IsTracked reports whether rel (relative to root) is in the git index.
func IsTracked(ctx context.Context, root, rel string) (bool, error) {
	return query(ctx, root, "ls-files", "--error-unmatch", "--", filepath.ToSlash(rel))
}

// IsIgnored reports whether rel (relative to root) is excluded by the
// repository's ignore rules, including .git/info/exclude and the global
// excludes file. The index is not consulted, so a tracked path is still
// reported as ignored when a rule matches it.
func IsIgnored(ctx context.Context, root, rel string) (bool, error) {
	return query(ctx, root, "check-ignore", "-q", "--no-index", "--", filepath.ToSlash(rel))
}

// query runs a git subcommand in root that answers yes with exit status 0
// and no with exit status 1.
func query(ctx context.Context, root string, args ...string) (bool, error) {
	if err := ValidateRepo(root); err != nil {
		return false, err
	}
	bin, err := exec.LookPath("git")
	if err != nil {
		return false, errors.Mark(errors.Wrap(err, "looking up git"), ErrUnavailable)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, append([]string{"-C", root}, args...)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return false, nil
		}
		return false, errors.Wrapf(err, "git %s: %s", args[0], strings.TrimSpace(stderr.String()))
	}
	return true, nil
}
