package datapaths

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/thoreinstein/resdata/internal/paths"
)

// Config is the per-user configuration of a project. Both roots are
// absolute, canonical and in host separator style once loaded.
type Config struct {
	// DataRoot is the read-only root of externally stored data. It exists.
	DataRoot string `mapstructure:"data_root" yaml:"data_root" json:"data_root" toml:"data_root"`

	// OutputRoot is where outputs are written. It may not exist yet, and is
	// empty when the file does not set it.
	OutputRoot string `mapstructure:"output_root" yaml:"output_root,omitempty" json:"output_root,omitempty" toml:"output_root,omitempty"`

	// Path is the file the configuration was read from.
	Path string `mapstructure:"-" yaml:"-" json:"-" toml:"-"`
}

// Load reads <projectRoot>/config/config.yml and returns it normalised.
//
// Relative values are resolved against projectRoot, never against the
// process working directory, and a leading "~" expands to the user's home.
// data_root must exist; output_root need not.
func Load(projectRoot string) (*Config, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return nil, ErrNoProjectRoot
	}
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, classify(ErrNoProjectRoot, err, "resolving %s", projectRoot)
	}

	file := paths.ConfigFile(root)
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(root, file)
	}

	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(root, file)
		}
		return nil, errors.WithHint(
			classify(ErrMalformedConfiguration, err, "reading %s", file),
			"the file must be a YAML mapping with a data_root entry",
		)
	}

	var raw Config
	if err := v.Unmarshal(&raw); err != nil {
		return nil, errors.WithHint(
			classify(ErrMalformedConfiguration, err, "decoding %s", file),
			"data_root and output_root must be plain strings",
		)
	}

	cfg := &Config{Path: file}

	dataValue := strings.TrimSpace(raw.DataRoot)
	if dataValue == "" {
		return nil, errors.WithHintf(
			classify(ErrMalformedConfiguration, nil, "%s has no data_root entry", file),
			"add data_root to %s; see %s for the expected keys", file, paths.TemplateFile(root),
		)
	}
	if cfg.DataRoot, err = normaliseDataRoot(root, dataValue); err != nil {
		return nil, err
	}

	if outputValue := strings.TrimSpace(raw.OutputRoot); outputValue != "" {
		abs, err := paths.Absolute(root, outputValue)
		if err != nil {
			return nil, classify(ErrMalformedConfiguration, err, "output_root %q", outputValue)
		}
		cfg.OutputRoot = paths.CanonicalPrefix(abs)
	}

	return cfg, nil
}

func normaliseDataRoot(root, value string) (string, error) {
	abs, err := paths.Absolute(root, value)
	if err != nil {
		return "", classify(ErrMalformedConfiguration, err, "data_root %q", value)
	}
	canonical, err := paths.Canonical(abs)
	if err != nil {
		return "", errors.WithHint(
			classify(ErrDataRootUnreachable, err,
				"%s does not exist; check the path in config and that the shared drive is connected", abs),
			"check data_root in "+paths.ConfigFileRel()+" and reconnect the network or shared drive that holds it",
		)
	}
	return canonical, nil
}

func notFound(root, file string) error {
	template := paths.TemplateFile(root)
	return errors.WithHintf(
		classify(ErrConfigurationNotFound, nil,
			"%s does not exist; copy the template %s to it and fill in real paths", file, template),
		"cp %s %s, then edit data_root and output_root (or run: resdata init)", template, file,
	)
}
