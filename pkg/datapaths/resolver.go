package datapaths

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/resdata/internal/paths"
)

// Resolver builds data and output paths for one project.
//
// By default every call reloads config/config.yml, so edits take effect
// immediately. A Resolver is safe for concurrent use.
type Resolver struct {
	projectRoot string
	strict      bool
	cache       bool
	dirPerm     os.FileMode
	logger      *slog.Logger

	mu     sync.Mutex
	cached *Config
	stamp  fileStamp
}

// fileStamp identifies one version of the config file.
type fileStamp struct {
	modTime time.Time
	size    int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache keeps the loaded configuration between calls. The cache is
// invalidated whenever the config file's modification time or size
// changes, or when the cached data root stops existing.
func WithCache() Option {
	return func(r *Resolver) { r.cache = true }
}

// WithStrictSegments rejects segments that are absolute or that climb
// above the root with "..". Without it segments are trusted as given.
func WithStrictSegments() Option {
	return func(r *Resolver) { r.strict = true }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDirPerm sets the permission used for directories created under the output root.
func WithDirPerm(perm os.FileMode) Option {
	return func(r *Resolver) { r.dirPerm = perm }
}

// New returns a Resolver for the project rooted at projectRoot.
func New(projectRoot string, opts ...Option) *Resolver {
	r := &Resolver{
		projectRoot: projectRoot,
		dirPerm:     paths.DefaultDirPerm,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProjectRoot returns the project root the resolver was built with.
func (r *Resolver) ProjectRoot() string {
	return r.projectRoot
}

// ConfigFile returns the location the configuration is read from.
func (r *Resolver) ConfigFile() string {
	root, err := filepath.Abs(r.projectRoot)
	if err != nil {
		root = r.projectRoot
	}
	return paths.ConfigFile(root)
}

// Config loads the configuration. The returned value is a copy the caller may keep.
func (r *Resolver) Config() (*Config, error) {
	if !r.cache {
		return r.load()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	info, statErr := os.Stat(r.ConfigFile())
	if statErr == nil && r.cached != nil && r.stamp.same(stampOf(info)) {
		if _, err := os.Stat(r.cached.DataRoot); err == nil {
			c := *r.cached
			return &c, nil
		}
		r.logger.Debug("cached data root vanished, reloading", "data_root", r.cached.DataRoot)
	}

	r.cached = nil
	cfg, err := r.load()
	if err != nil {
		return nil, err
	}
	if statErr == nil {
		r.cached = cfg
		r.stamp = stampOf(info)
	}
	c := *cfg
	return &c, nil
}

// Invalidate drops any cached configuration.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func (r *Resolver) load() (*Config, error) {
	cfg, err := Load(r.projectRoot)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded configuration",
		"file", cfg.Path,
		"data_root", cfg.DataRoot,
		"output_root", cfg.OutputRoot)
	return cfg, nil
}

func stampOf(info os.FileInfo) fileStamp {
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}

func (s fileStamp) same(o fileStamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// DataPath joins the data root with segments, in order. It does not check
// whether the result exists. With no segments it returns the data root.
func (r *Resolver) DataPath(segments ...string) (string, error) {
	cfg, err := r.Config()
	if err != nil {
		return "", err
	}
	return r.join(cfg.DataRoot, segments)
}

// OutputPath joins the output root with segments and creates the parent
// directory of the result, so the last segment can be written as a file.
// With no segments the output root itself is created and returned.
func (r *Resolver) OutputPath(segments ...string) (string, error) {
	cfg, err := r.Config()
	if err != nil {
		return "", err
	}
	if cfg.OutputRoot == "" {
		return "", errors.WithHintf(
			classify(ErrMalformedConfiguration, nil, "%s has no output_root entry", cfg.Path),
			"add output_root to %s", cfg.Path,
		)
	}

	full, err := r.join(cfg.OutputRoot, segments)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(full)
	if full == cfg.OutputRoot {
		dir = full
	}
	if err := paths.EnsureDir(dir, r.dirPerm); err != nil {
		return "", errors.WithHint(
			classify(ErrOutputDirectoryUnwritable, err, "creating %s", dir),
			"check permissions on output_root and that the drive holding it is connected",
		)
	}
	r.logger.Debug("ensured output directory", "dir", dir)

	return full, nil
}

func (r *Resolver) join(root string, segments []string) (string, error) {
	if r.strict {
		if err := checkSegments(segments); err != nil {
			return "", err
		}
	}
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, root)
	parts = append(parts, segments...)
	return filepath.Join(parts...), nil
}

// checkSegments rejects absolute segments and any sequence whose joined
// form climbs above its root.
func checkSegments(segments []string) error {
	for _, s := range segments {
		if filepath.IsAbs(s) || filepath.VolumeName(s) != "" {
			return classify(ErrSegmentEscapesRoot, nil, "%q is absolute", s)
		}
	}
	rel := filepath.Join(segments...)
	if rel != "" && !filepath.IsLocal(rel) {
		return classify(ErrSegmentEscapesRoot, nil, "%q leaves the root", filepath.ToSlash(rel))
	}
	return nil
}

// DataPath loads the configuration of projectRoot and joins its data root with segments.
func DataPath(projectRoot string, segments ...string) (string, error) {
	return New(projectRoot).DataPath(segments...)
}

// OutputPath loads the configuration of projectRoot, joins its output root
// with segments and creates the parent directory of the result.
func OutputPath(projectRoot string, segments ...string) (string, error) {
	return New(projectRoot).OutputPath(segments...)
}
