package commands

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/resdata/internal/errors"
	"github.com/thoreinstein/resdata/internal/logging"
)

// pickMaxEntries caps how many files are offered, so a huge share stays usable.
const pickMaxEntries = 50000

func init() {
	rootCmd.AddCommand(pickCmd)
}

var pickCmd = &cobra.Command{
	Use:   "pick [segment...]",
	Short: "Interactively choose a file under data_root",
	Long: `Open a fuzzy finder over the files below data_root (or below the
directory named by the segments) and print the absolute path of the
chosen file.

Hidden files and directories are skipped. Aborting the finder exits with
status 1 and prints nothing.`,
	Example: `  # Pick any data file
  resdata pick

  # Pick within one survey wave
  resdata pick survey 2024

  See Also: resdata data`,
	RunE: runPick,
}

// findEntry lets the user choose one of items and returns its index.
// It is a variable so tests can replace the terminal UI.
var findEntry = func(base string, items []string) (int, error) {
	return fuzzyfinder.Find(
		items,
		func(i int) string { return items[i] },
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return filepath.Join(base, items[i])
		}),
	)
}

func runPick(cmd *cobra.Command, args []string) error {
	r, err := newResolver(cmd)
	if err != nil {
		return err
	}
	base, err := r.DataPath(args...)
	if err != nil {
		return exitError(err)
	}

	items, err := listFiles(base, pickMaxEntries)
	if err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "listing %s", base), "check that the shared drive is connected")
	}
	logging.FromContext(cmd.Context()).Debug("pick candidates", "base", base, "count", len(items))
	if len(items) == 0 {
		return errors.NewUserError(errors.Newf("no files under %s", base), "")
	}

	idx, err := findEntry(base, items)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return errors.NewExitError(nil, errors.ExitUser)
		}
		return errors.Wrap(err, "fuzzy finder")
	}

	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(base, items[idx]))
	return nil
}

// listFiles returns the regular files below base as slash separated
// relative paths in lexical order, skipping hidden entries. At most limit
// entries are returned.
func listFiles(base string, limit int) ([]string, error) {
	var items []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == base {
				return err
			}
			// Unreadable subdirectories are skipped.
			return nil
		}
		if p != base && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == base || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		items = append(items, filepath.ToSlash(rel))
		if len(items) >= limit {
			return filepath.SkipAll
		}
		return nil
	})
	return items, err
}
