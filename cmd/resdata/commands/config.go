package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/resdata/internal/editor"
	"github.com/thoreinstein/resdata/internal/errors"
	"github.com/thoreinstein/resdata/internal/logging"
	"github.com/thoreinstein/resdata/internal/paths"
	"github.com/thoreinstein/resdata/pkg/datapaths"
)

// Output formats accepted by config show.
const (
	formatYAML = "yaml"
	formatJSON = "json"
	formatTOML = "toml"
)

var configShowFormat string

func init() {
	configShowCmd.Flags().StringVarP(&configShowFormat, "format", "o", formatYAML,
		"output format: yaml, json, toml")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the project's data path configuration",
	Long: `Inspect config/config.yml for the current project.

Without a subcommand, shows the resolved configuration.`,
	Example: `  # Show resolved roots
  resdata config

  # As JSON, for other tools
  resdata config show --format json

  # Where the file lives
  resdata config path

  See Also: resdata init, resdata doctor`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Load config/config.yml and print it with both roots made absolute,
home-expanded and symlink-resolved, exactly as data and output use them.`,
	Example: `  resdata config show
  resdata config show --format toml

  See Also: resdata config path`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the configuration file",
	Long: `Print the path of config/config.yml for the current project,
whether or not it exists yet.`,
	Example: `  # Open it in an editor
  $EDITOR "$(resdata config path)"

  See Also: resdata init`,
	Args: cobra.NoArgs,
	RunE: runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in $EDITOR",
	Long: `Open config/config.yml in your editor, then load it again and report
any problem with the new values.

Uses $EDITOR, then $VISUAL, then nano or vi.`,
	Example: `  resdata config edit
  EDITOR="code --wait" resdata config edit

  See Also: resdata init, resdata doctor`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	r, err := newResolver(cmd)
	if err != nil {
		return err
	}
	cfg, err := r.Config()
	if err != nil {
		return exitError(err)
	}
	logging.FromContext(cmd.Context()).Debug("config loaded", "path", cfg.Path)
	return writeConfig(cmd.OutOrStdout(), cfg, configShowFormat)
}

// writeConfig encodes cfg to w in the given format.
func writeConfig(w io.Writer, cfg *datapaths.Config, format string) error {
	switch format {
	case formatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	case formatTOML:
		enc := toml.NewEncoder(w)
		if err := enc.Encode(cfg); err != nil {
			return errors.Wrap(err, "encoding TOML")
		}
		return nil
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format), "use --format yaml, json or toml")
	}
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	file := paths.ConfigFile(root)
	if _, err := os.Stat(file); err != nil {
		logging.FromContext(cmd.Context()).Warn("config file does not exist yet", "path", file)
	}
	fmt.Fprintln(cmd.OutOrStdout(), file)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	r, err := newResolver(cmd)
	if err != nil {
		return err
	}
	file := r.ConfigFile()
	if _, err := os.Stat(file); err != nil {
		return errors.NewUserError(errors.Newf("%s does not exist", file), "create it first: resdata init")
	}

	streams := editor.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	if err := editor.Open(cmd.Context(), file, streams); err != nil {
		return errors.NewSystemError(err, errors.FlattenHints(err))
	}

	cfg, err := r.Config()
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "data_root resolves to %s\n", cfg.DataRoot)
	return nil
}
