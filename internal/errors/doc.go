// Package errors provides error handling conventions for the resdata CLI.
//
// It re-exports the parts of github.com/cockroachdb/errors the codebase
// uses, defines a few shared sentinels, and provides [ExitError] for
// mapping failures to process exit codes.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): Configuration or input problem the user can fix
//   - ExitSystem (2): Filesystem problem (permissions, disconnected drive)
//
// # Hints
//
// Remediation text travels with the error as a hint:
//
//	err = errors.WithHint(err, "copy config/config.template.yml to config/config.yml")
//	for _, h := range errors.GetAllHints(err) {
//	    fmt.Fprintln(os.Stderr, "hint:", h)
//	}
package errors
