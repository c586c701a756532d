package datapaths

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	// ErrConfigurationNotFound indicates config/config.yml does not exist.
	ErrConfigurationNotFound = errors.New("configuration not found")

	// ErrMalformedConfiguration indicates the file cannot be parsed or lacks a required entry.
	ErrMalformedConfiguration = errors.New("malformed configuration")

	// ErrDataRootUnreachable indicates data_root does not resolve to an existing location.
	ErrDataRootUnreachable = errors.New("data root unreachable")

	// ErrOutputDirectoryUnwritable indicates a directory under output_root could not be created.
	ErrOutputDirectoryUnwritable = errors.New("output directory unwritable")

	// ErrSegmentEscapesRoot indicates a segment would leave its root. Only
	// returned by resolvers built with WithStrictSegments.
	ErrSegmentEscapesRoot = errors.New("path segment escapes root")

	// ErrNoProjectRoot indicates the project root is empty or cannot be made
	// absolute.
	ErrNoProjectRoot = errors.New("project root is required")
)

// classify builds an error that matches kind, reads "<kind>: <detail>" and,
// when cause is non-nil, keeps cause in the chain so callers can still
// inspect the underlying OS error.
func classify(kind, cause error, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	if cause == nil {
		return errors.Mark(errors.Newf("%s: %s", kind.Error(), detail), kind)
	}
	return errors.Mark(errors.Wrapf(cause, "%s: %s", kind.Error(), detail), kind)
}
