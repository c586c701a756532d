package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/resdata/internal/git"
	"github.com/thoreinstein/resdata/internal/paths"
	"github.com/thoreinstein/resdata/pkg/datapaths"
	"github.com/thoreinstein/resdata/pkg/fileutil"
)

// Checks returns the standard checks for the project at projectRoot, in display order.
func Checks(projectRoot string) []Check {
	return []Check{
		&ConfigFileCheck{root: projectRoot},
		&TemplateCheck{root: projectRoot},
		&DataRootCheck{root: projectRoot},
		&OutputRootCheck{root: projectRoot},
		&GitignoreCheck{root: projectRoot},
		&TrackedConfigCheck{root: projectRoot},
	}
}

// ConfigFileCheck verifies that config/config.yml exists.
type ConfigFileCheck struct {
	root string
}

var _ Check = (*ConfigFileCheck)(nil)

func (c *ConfigFileCheck) Name() string     { return "config-file" }
func (c *ConfigFileCheck) Category() string { return "config" }

func (c *ConfigFileCheck) Run() *CheckResult {
	file := paths.ConfigFile(c.root)
	res := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": file},
	}

	info, err := os.Stat(file)
	switch {
	case os.IsNotExist(err):
		res.Status = SeverityError
		res.Message = paths.ConfigFileRel() + " not found"
		res.FixHint = fmt.Sprintf("cp %s %s and fill in real paths, or run: resdata init",
			paths.TemplateFile(c.root), file)
	case err != nil:
		res.Status = SeverityError
		res.Message = fmt.Sprintf("cannot stat config file: %v", err)
	case info.IsDir():
		res.Status = SeverityError
		res.Message = file + " is a directory"
	default:
		res.Status = SeverityPass
		res.Message = "config file present"
	}
	return res
}

// TemplateCheck verifies the committed template exists and names data_root.
type TemplateCheck struct {
	root string
}

var _ Check = (*TemplateCheck)(nil)

func (c *TemplateCheck) Name() string     { return "config-template" }
func (c *TemplateCheck) Category() string { return "config" }

func (c *TemplateCheck) Run() *CheckResult {
	file := paths.TemplateFile(c.root)
	res := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": file},
	}

	data, err := fileutil.ReadFileWithLimit(file)
	if err != nil {
		res.Status = SeverityWarning
		if errors.Is(err, os.ErrNotExist) {
			res.Message = "no config template; collaborators cannot bootstrap their config"
		} else {
			res.Message = fmt.Sprintf("cannot read template: %v", err)
		}
		res.FixHint = "commit " + file + " with placeholder data_root and output_root values"
		return res
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("template is not valid YAML: %v", err)
		return res
	}
	if _, ok := keys["data_root"]; !ok {
		res.Status = SeverityWarning
		res.Message = "template has no data_root entry"
		res.FixHint = "add data_root (and output_root) placeholders to " + file
		return res
	}

	res.Status = SeverityPass
	res.Message = "config template present"
	return res
}

// DataRootCheck loads the configuration and reports whether data_root resolves.
type DataRootCheck struct {
	root string
}

var _ Check = (*DataRootCheck)(nil)

func (c *DataRootCheck) Name() string     { return "data-root" }
func (c *DataRootCheck) Category() string { return "paths" }

func (c *DataRootCheck) Run() *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}

	cfg, err := datapaths.Load(c.root)
	if err != nil {
		if errors.Is(err, datapaths.ErrConfigurationNotFound) {
			res.Status = SeverityInfo
			res.Message = "skipped: no configuration file"
			return res
		}
		res.Status = SeverityError
		res.Message = err.Error()
		res.FixHint = errors.FlattenHints(err)
		return res
	}

	res.Details = map[string]any{"data_root": cfg.DataRoot}
	if info, err := os.Stat(cfg.DataRoot); err == nil && !info.IsDir() {
		res.Status = SeverityWarning
		res.Message = cfg.DataRoot + " exists but is not a directory"
		return res
	}

	res.Status = SeverityPass
	res.Message = "data_root resolves to " + cfg.DataRoot
	return res
}

// OutputRootCheck reports whether output_root is set and writable.
// A missing output_root directory is fixable.
type OutputRootCheck struct {
	root    string
	outRoot string
}

var (
	_ Check = (*OutputRootCheck)(nil)
	_ Fixer = (*OutputRootCheck)(nil)
)

func (c *OutputRootCheck) Name() string     { return "output-root" }
func (c *OutputRootCheck) Category() string { return "paths" }

func (c *OutputRootCheck) Run() *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}

	cfg, err := datapaths.Load(c.root)
	if err != nil {
		res.Status = SeverityInfo
		res.Message = "skipped: configuration does not load"
		return res
	}
	if cfg.OutputRoot == "" {
		res.Status = SeverityWarning
		res.Message = "output_root is not set; output paths cannot be built"
		res.FixHint = "add output_root to " + cfg.Path
		return res
	}
	c.outRoot = cfg.OutputRoot
	res.Details = map[string]any{"output_root": cfg.OutputRoot}

	info, err := os.Stat(cfg.OutputRoot)
	switch {
	case os.IsNotExist(err):
		res.Status = SeverityWarning
		res.Message = cfg.OutputRoot + " does not exist yet"
		res.Fixable = true
		res.FixHint = "it is created on first use, or run: resdata doctor --fix"
		return res
	case err != nil:
		res.Status = SeverityError
		res.Message = fmt.Sprintf("cannot stat output_root: %v", err)
		return res
	case !info.IsDir():
		res.Status = SeverityError
		res.Message = cfg.OutputRoot + " exists but is not a directory"
		return res
	}

	probe, err := os.CreateTemp(cfg.OutputRoot, ".resdata-doctor-*")
	if err != nil {
		res.Status = SeverityError
		res.Message = "output_root is not writable"
		res.FixHint = "check permissions on " + cfg.OutputRoot
		return res
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	res.Status = SeverityPass
	res.Message = "output_root is writable"
	return res
}

// Fix creates the output root directory.
func (c *OutputRootCheck) Fix() *FixResult {
	fr := &FixResult{Name: c.Name()}
	if c.outRoot == "" {
		fr.Message = "output_root unknown; run the check first"
		return fr
	}
	if err := paths.EnsureDir(c.outRoot, 0); err != nil {
		fr.Message = fmt.Sprintf("creating %s: %v", c.outRoot, err)
		return fr
	}
	fr.Success = true
	fr.Message = "created " + c.outRoot
	return fr
}

// GitignoreCheck verifies config/config.yml is ignored and the template is not.
// A missing ignore rule is fixable.
type GitignoreCheck struct {
	root string
}

var (
	_ Check = (*GitignoreCheck)(nil)
	_ Fixer = (*GitignoreCheck)(nil)
)

func (c *GitignoreCheck) Name() string     { return "gitignore" }
func (c *GitignoreCheck) Category() string { return "vcs" }

func (c *GitignoreCheck) Run() *CheckResult {
	file := paths.GitignoreFile(c.root)
	res := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": file},
	}

	data, err := fileutil.ReadFileWithLimit(file)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("cannot read .gitignore: %v", err)
		return res
	}

	rules := parseIgnore(string(data))
	ignored := func(rel string) (bool, error) {
		ok, err := git.IsIgnored(context.Background(), c.root, rel)
		if errors.Is(err, git.ErrNotRepository) || errors.Is(err, git.ErrUnavailable) {
			return rules.ignores(rel), nil
		}
		return ok, err
	}
	configRel := paths.ConfigFileRel()
	templateRel := paths.ConfigDirName + "/" + paths.TemplateFileName

	configIgnored, err := ignored(configRel)
	if err != nil {
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("cannot query git: %v", err)
		return res
	}
	if !configIgnored {
		res.Status = SeverityWarning
		res.Message = configRel + " is not gitignored; machine-specific paths could be committed"
		res.Fixable = true
		res.FixHint = "add " + configRel + " to .gitignore, or run: resdata doctor --fix"
		return res
	}
	templateIgnored, err := ignored(templateRel)
	if err != nil {
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("cannot query git: %v", err)
		return res
	}
	if templateIgnored {
		res.Status = SeverityWarning
		res.Message = templateRel + " is gitignored; collaborators will not receive it"
		res.FixHint = "make sure no rule excludes " + templateRel + " or the config/ directory itself"
		return res
	}

	res.Status = SeverityPass
	res.Message = configRel + " is gitignored"
	return res
}

// Fix appends an ignore rule for the config file.
func (c *GitignoreCheck) Fix() *FixResult {
	fr := &FixResult{Name: c.Name()}
	file := paths.GitignoreFile(c.root)

	data, err := fileutil.ReadFileWithLimit(file)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fr.Message = fmt.Sprintf("reading %s: %v", file, err)
		return fr
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += "# per-user data paths\n" + paths.ConfigFileRel() + "\n"

	if err := fileutil.AtomicWriteFile(file, []byte(content), 0o644); err != nil {
		fr.Message = fmt.Sprintf("writing %s: %v", file, err)
		return fr
	}
	fr.Success = true
	fr.Message = "added " + paths.ConfigFileRel() + " to " + file
	return fr
}

// TrackedConfigCheck reports an error when config/config.yml has already
// been committed, which no ignore rule can undo.
type TrackedConfigCheck struct {
	root string
}

var _ Check = (*TrackedConfigCheck)(nil)

func (c *TrackedConfigCheck) Name() string     { return "config-untracked" }
func (c *TrackedConfigCheck) Category() string { return "vcs" }

func (c *TrackedConfigCheck) Run() *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}
	rel := paths.ConfigFileRel()

	tracked, err := git.IsTracked(context.Background(), c.root, rel)
	switch {
	case errors.Is(err, git.ErrNotRepository):
		res.Status = SeverityInfo
		res.Message = "skipped: project is not a git repository"
	case errors.Is(err, git.ErrUnavailable):
		res.Status = SeverityInfo
		res.Message = "skipped: git is not installed"
	case err != nil:
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("cannot query git: %v", err)
	case tracked:
		res.Status = SeverityError
		res.Message = rel + " is committed; every clone gets your machine's paths"
		res.FixHint = "git rm --cached " + rel + " and commit"
	default:
		res.Status = SeverityPass
		res.Message = rel + " is not tracked"
	}
	return res
}

// ignoreRules matches paths against the rules of a single .gitignore at
// the repository root. It is used when git itself cannot be asked.
type ignoreRules struct {
	matcher gitignore.Matcher
}

func parseIgnore(content string) ignoreRules {
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return ignoreRules{matcher: gitignore.NewMatcher(patterns)}
}

// ignores reports whether rel (slash separated, relative to the repo root)
// is ignored. Once a parent directory is excluded git never looks inside
// it, so no later rule can bring rel back.
func (rs ignoreRules) ignores(rel string) bool {
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if rs.matcher.Match(parts[:i], true) {
			return true
		}
	}
	return rs.matcher.Match(parts, false)
}
