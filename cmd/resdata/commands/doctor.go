package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/resdata/internal/doctor"
	"github.com/thoreinstein/resdata/internal/errors"
	"github.com/thoreinstein/resdata/internal/logging"
)

var (
	doctorJSON bool
	doctorFix  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"repair what can be repaired (create output_root, gitignore the config)")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the project's data path setup",
	Long: `Run diagnostic checks on the project's data path configuration.

Checks that config/config.yml exists and loads, that data_root is reachable,
that output_root is set and writable, that the template is committed and
that the per-user config is gitignored.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Check the setup
  resdata doctor

  # Show every check
  resdata doctor -v

  # Create output_root and add config/config.yml to .gitignore
  resdata doctor --fix

  See Also: resdata init, resdata config`,
	Args:    cobra.NoArgs,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	if doctorJSON {
		count++
	}
	if quiet {
		count++
	}
	if verbosity > 0 {
		count++
	}

	if count > 1 {
		return errors.NewUserError(errors.New("flags --json, --quiet, and --verbose are mutually exclusive"), "")
	}

	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	logging.FromContext(cmd.Context()).Debug("running doctor", "project_root", root)

	runner := doctor.NewRunner(doctor.Checks(root)...)
	report := runner.Run()

	if doctorFix {
		fixes := runner.Fix(report)
		if len(fixes) > 0 {
			report = runner.Run()
		}
		report.Fixes = fixes
	}

	if err := outputDoctorReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	// Determine exit code based on results
	if report.HasErrors() {
		return errors.NewExitError(nil, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(nil, errors.ExitUser)
	}
	return nil
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport) error {
	if quiet {
		return nil
	}

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}

	outputDoctorText(w, report, logging.SupportsColor(w))
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport, useColor bool) {
	// In normal mode, show only errors and warnings
	// In verbose mode, show all checks
	showAll := verbosity > 0

	for _, fix := range report.Fixes {
		icon := paint(useColor, color.FgGreen, "✓")
		if !fix.Success {
			icon = paint(useColor, color.FgRed, "✗")
		}
		fmt.Fprintf(w, "%s fix %s: %s\n", icon, fix.Name, fix.Message)
	}
	if len(report.Fixes) > 0 {
		fmt.Fprintln(w)
	}

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status, useColor), result.Category, result.Name, result.Message)

		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity, useColor bool) string {
	switch s {
	case doctor.SeverityPass:
		return paint(useColor, color.FgGreen, "✓")
	case doctor.SeverityInfo:
		return paint(useColor, color.FgCyan, "ℹ")
	case doctor.SeverityWarning:
		return paint(useColor, color.FgYellow, "⚠")
	case doctor.SeverityError:
		return paint(useColor, color.FgRed, "✗")
	default:
		return "?"
	}
}

func paint(useColor bool, attr color.Attribute, s string) string {
	if !useColor {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}
