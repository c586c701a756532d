// Package datapaths resolves paths to research data that lives outside the
// repository.
//
// Each collaborator keeps a private config/config.yml in the project (it is
// gitignored; config/config.template.yml is the committed template):
//
//	data_root: /Volumes/lab-share/project-x
//	output_root: ~/work/project-x/output
//
// Analysis code then asks for paths by logical segments instead of
// hard-coding machine-specific locations:
//
//	r := datapaths.New(projectRoot)
//	in, err := r.DataPath("survey", "2024", "responses.csv")
//	out, err := r.OutputPath("run1", "summary.csv") // creates <output_root>/run1
//
// # Loading
//
// [Load] reads the file on every call unless the resolver was built with
// [WithCache]. data_root must exist and is returned with symbolic links
// resolved; output_root may point at a tree that does not exist yet.
//
// Keys are matched without regard to case, so DATA_ROOT is read as
// data_root. The template and the documentation use the lowercase names.
//
// # Errors
//
// Failures match one of [ErrConfigurationNotFound], [ErrMalformedConfiguration],
// [ErrDataRootUnreachable] or [ErrOutputDirectoryUnwritable] with errors.Is,
// and carry a remediation hint readable with errors.GetAllHints from
// github.com/cockroachdb/errors.
//
// # Segments
//
// Segments are trusted by default: they are joined with filepath.Join and
// may contain "..". Build the resolver with [WithStrictSegments] when the
// segments come from somewhere less trusted than the project's own code.
package datapaths
