// Package commands implements the CLI commands for resdata.
package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/resdata/cmd"
	"github.com/thoreinstein/resdata/internal/errors"
	"github.com/thoreinstein/resdata/internal/logging"
	"github.com/thoreinstein/resdata/internal/paths"
	"github.com/thoreinstein/resdata/pkg/datapaths"
)

// envPrefix is the prefix of environment variables read by the CLI.
const envPrefix = "RESDATA"

// settings resolves CLI settings from flags and RESDATA_* environment variables.
var settings = viper.New()

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFile holds the handle opened for --log-file so it can be closed.
var logFile *os.File

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("project-root", "C", "",
		"project root containing config/config.yml (default: discovered from the working directory)")
	flags.Bool("strict", false,
		"reject path segments that are absolute or climb out of the root")
	flags.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	flags.BoolVarP(&quiet, "quiet", "q", false,
		"suppress everything but errors")
	flags.String("log-format", string(logging.FormatText),
		"log format: text, json")
	flags.String("log-file", "",
		"also write JSON logs to a file (--log-file=PATH; bare flag uses the state directory)")
	flags.Lookup("log-file").NoOptDefVal = paths.DefaultLogFile()

	for key, flag := range map[string]string{
		"project_root": "project-root",
		"strict":       "strict",
		"log_format":   "log-format",
		"log_file":     "log-file",
	} {
		_ = settings.BindPFlag(key, flags.Lookup(flag))
	}
	settings.SetEnvPrefix(envPrefix)
	settings.AutomaticEnv()

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("resdata version {{.Version}}\n")

	// Errors are printed by main so hints and exit codes stay consistent.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "resdata",
	Short: "Resolve paths to externally stored research data",
	Long: `resdata resolves paths to research data that lives outside the
repository, using a per-user config/config.yml that is never committed.

	data_root:   where the (read-only) input data lives
	output_root: where outputs are written

Scripts ask for paths by segments instead of hard-coding locations:

	in=$(resdata data survey 2024 responses.csv)
	out=$(resdata output run1 summary.csv)   # creates <output_root>/run1

The configuration is re-read on every call.`,
	Example: `  # Create config/config.yml from the template
  resdata init --data-root /Volumes/lab/project-x --output-root ~/work/out

  # Path to an input file
  resdata data raw 2024 responses.csv

  # Path to write a result to (creates the parent directory)
  resdata output run1 result.csv

  # Check the setup
  resdata doctor

  See Also: resdata config, resdata pick`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger from verbosity flags,
// RESDATA_DEBUG and --log-format / --log-file.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "pick one of -q or -v")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			switch settings.GetString("debug") {
			case "1", "true":
				v = 2
			case "2":
				v = 3
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format := logging.Format(settings.GetString("log_format"))
	if format != logging.FormatText && format != logging.FormatJSON {
		return errors.NewUserError(errors.Newf("unknown log format %q", format), "use --log-format text or json")
	}

	opts := &slog.HandlerOptions{Level: level}
	handler := logging.NewFormatHandler(cmd.ErrOrStderr(), format, opts)

	if path := settings.GetString("log_file"); path != "" {
		if err := paths.EnsureDir(filepath.Dir(path), 0o700); err != nil {
			return errors.NewSystemError(errors.Wrap(err, "creating log directory"), "check --log-file")
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewSystemError(errors.Wrap(err, "opening log file"), "check --log-file")
		}
		closeLogFile()
		logFile = f
		handler = logging.NewMultiHandler(handler, slog.NewJSONHandler(f, opts))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// projectRoot returns --project-root / RESDATA_PROJECT_ROOT, or discovers
// the root by walking up from the working directory.
func projectRoot() (string, error) {
	if root := settings.GetString("project_root"); root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", errors.NewUserError(errors.Wrap(err, "resolving --project-root"), "")
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", errors.NewSystemError(errors.Wrap(err, "getting working directory"), "")
	}
	root, err := paths.FindProjectRoot(wd)
	if err != nil {
		return "", errors.NewUserError(err,
			"run inside a project (a directory with config/ or .git), or pass --project-root")
	}
	return root, nil
}

// newResolver builds a resolver for the current project with CLI options applied.
func newResolver(cmd *cobra.Command) (*datapaths.Resolver, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	opts := []datapaths.Option{datapaths.WithLogger(logging.FromContext(cmd.Context()))}
	if settings.GetBool("strict") {
		opts = append(opts, datapaths.WithStrictSegments())
	}
	return datapaths.New(root, opts...), nil
}

// exitError maps resolver failures to CLI exit codes. Filesystem problems
// are system errors; everything else is something the user fixes in config.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if errors.Is(err, datapaths.ErrOutputDirectoryUnwritable) || errors.Is(err, datapaths.ErrDataRootUnreachable) {
		return errors.NewSystemError(err, errors.FlattenHints(err))
	}
	return errors.NewConfigError(err)
}

// Execute runs the root command.
func Execute() error {
	defer closeLogFile()
	return rootCmd.Execute()
}
