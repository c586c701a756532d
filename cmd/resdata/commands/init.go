package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/resdata/internal/errors"
	"github.com/thoreinstein/resdata/internal/logging"
	"github.com/thoreinstein/resdata/internal/paths"
	"github.com/thoreinstein/resdata/pkg/fileutil"
)

var (
	initDataRoot   string
	initOutputRoot string
	initForce      bool
)

func init() {
	initCmd.Flags().StringVar(&initDataRoot, "data-root", "", "value for data_root")
	initCmd.Flags().StringVar(&initOutputRoot, "output-root", "", "value for output_root")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config/config.yml from the template",
	Long: `Create the per-user config/config.yml for this project.

The committed config/config.template.yml is copied with its comments kept,
and data_root / output_root are replaced by --data-root and --output-root
when given. Without a template, --data-root is required.

The file is written with owner-only permissions and is never overwritten
unless --force is passed.`,
	Example: `  # Copy the template, then edit the placeholders
  resdata init

  # Fill in the roots directly
  resdata init --data-root /Volumes/lab/project-x --output-root ~/work/out

  # Replace an existing config
  resdata init --force --data-root /mnt/share/project-x

  See Also: resdata config, resdata doctor`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// configTemplate is written when the project has no template.
type configTemplate struct {
	DataRoot   string `yaml:"data_root"`
	OutputRoot string `yaml:"output_root,omitempty"`
}

func runInit(cmd *cobra.Command, _ []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	logger := logging.FromContext(cmd.Context())
	target := paths.ConfigFile(root)

	if _, err := os.Stat(target); err == nil && !initForce {
		return errors.NewUserError(
			errors.Mark(errors.Newf("%s already exists", target), errors.ErrAlreadyExists),
			"use --force to overwrite")
	}

	doc, fromTemplate, err := initDocument(paths.TemplateFile(root))
	if err != nil {
		return err
	}
	logger.Debug("building config", "template", fromTemplate, "path", target)

	if err := paths.EnsureDir(filepath.Dir(target), 0); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "creating config directory"), "")
	}
	if err := fileutil.AtomicWriteYAML(target, doc, 0o600); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "writing config file"), "")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", target)
	if initDataRoot == "" {
		fmt.Fprintln(out, "Edit it and replace the placeholder paths, then run: resdata doctor")
	}
	return nil
}

// initDocument returns the YAML document to write: the template with any
// flag values substituted, or a minimal document built from the flags.
func initDocument(templateFile string) (*yaml.Node, bool, error) {
	data, err := fileutil.ReadFileWithLimit(templateFile)
	if errors.Is(err, os.ErrNotExist) {
		if initDataRoot == "" {
			return nil, false, errors.NewUserError(
				errors.Newf("no template at %s", templateFile),
				"pass --data-root (and --output-root), or commit a template")
		}
		var doc yaml.Node
		if err := doc.Encode(configTemplate{DataRoot: initDataRoot, OutputRoot: initOutputRoot}); err != nil {
			return nil, false, errors.Wrap(err, "encoding config")
		}
		return &doc, false, nil
	}
	if err != nil {
		return nil, false, errors.NewSystemError(errors.Wrap(err, "reading template"), "")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, true, errors.NewUserError(
			errors.Wrapf(err, "parsing %s", templateFile),
			"fix the template YAML, or pass --data-root without a template")
	}
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if len(doc.Content) == 0 {
		// Empty or comment-only template.
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, true, errors.NewUserError(
			errors.Newf("%s is not a mapping", templateFile),
			"the template must look like: data_root: /path/to/data")
	}

	mapping := doc.Content[0]
	if initDataRoot != "" {
		setMappingValue(mapping, "data_root", initDataRoot)
	}
	if initOutputRoot != "" {
		setMappingValue(mapping, "output_root", initOutputRoot)
	}
	return &doc, true, nil
}

// setMappingValue sets key to a string value in a mapping node, keeping the
// key's position and comments when it is already present.
func setMappingValue(mapping *yaml.Node, key, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			v := mapping.Content[i+1]
			v.Kind = yaml.ScalarNode
			v.Tag = "!!str"
			v.Value = value
			v.Style = yaml.SingleQuotedStyle
			v.Content = nil
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.SingleQuotedStyle},
	)
}
