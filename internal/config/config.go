package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/testrouter/internal/errors"
)

const (
	// FileBase is the config file name without extension.
	FileBase = "testrouter.config"

	// EnvFile is the dotenv file read next to the config.
	EnvFile = ".env.test"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "TESTROUTER_"

	// DefaultAppDirectory is the app directory when none is configured.
	DefaultAppDirectory = "app"

	// DefaultRoutesDirectory is the flat-routes directory inside the app.
	DefaultRoutesDirectory = "routes"

	// DefaultOrigin is the origin synthetic requests use.
	DefaultOrigin = "http://localhost"
)

// Extensions are the config file extensions, in probe order.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

// Config is the testrouter project configuration.
type Config struct {
	// AppDirectory holds root and route modules, relative to the project root.
	AppDirectory string `json:"appDirectory,omitempty" yaml:"appDirectory,omitempty" toml:"appDirectory,omitempty"`

	// FlatRoutes derives routes from RoutesDirectory instead of a routes
	// config file.
	FlatRoutes bool `json:"flatRoutes,omitempty" yaml:"flatRoutes,omitempty" toml:"flatRoutes,omitempty"`

	// RoutesDirectory is scanned when FlatRoutes is set, relative to the
	// app directory.
	RoutesDirectory string `json:"routesDirectory,omitempty" yaml:"routesDirectory,omitempty" toml:"routesDirectory,omitempty"`

	// Origin is the scheme and host of synthetic requests.
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty" toml:"origin,omitempty"`

	// Headers are sent with every synthetic request.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`

	// Ignore lists glob patterns of module files flat-route discovery skips.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		AppDirectory:    DefaultAppDirectory,
		RoutesDirectory: DefaultRoutesDirectory,
		Origin:          DefaultOrigin,
	}
}

// Find returns the config file in root, trying Extensions in order.
func Find(root string) (string, bool) {
	name, ok := find(os.DirFS(root))
	if !ok {
		return "", false
	}
	return filepath.Join(root, name), true
}

// FindRoot walks up from dir to the first directory holding a config
// file. It returns dir's absolute form and false when there is none.
func FindRoot(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir, false
	}
	for d := abs; ; {
		if _, ok := Find(d); ok {
			return d, true
		}
		parent := filepath.Dir(d)
		if parent == d {
			return abs, false
		}
		d = parent
	}
}

func find(fsys fs.FS) (string, bool) {
	for _, ext := range Extensions {
		name := FileBase + ext
		if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
			return name, true
		}
	}
	return "", false
}

// Load reads the configuration from the project root.
func Load(root string) (*Config, error) {
	return load(os.DirFS(root), root)
}

// LoadFS reads the configuration from the root of fsys.
func LoadFS(fsys fs.FS) (*Config, error) {
	return load(fsys, ".")
}

// LoadFile reads the configuration from a specific file.
func LoadFile(p string) (*Config, error) {
	dir := filepath.Dir(p)
	return loadFile(os.DirFS(dir), dir, filepath.Base(p))
}

func load(fsys fs.FS, root string) (*Config, error) {
	name, ok := find(fsys)
	if !ok {
		return nil, errors.New("E101").
			WithDetailf("No %s.(json|yaml|yml|toml) found in %s", FileBase, root).
			WithSuggestion("Create " + FileBase + ".json at the project root, for example {\"appDirectory\": \"app\"}")
	}
	return loadFile(fsys, root, name)
}

// loadFile parses name from fsys, then applies the environment overlay and
// defaults. root is used for reporting and for Config.Path.
func loadFile(fsys fs.FS, root, name string) (*Config, error) {
	display := filepath.Join(root, name)

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("E101").WithDetail("No config file at " + display)
		}
		return nil, errors.New("E104").WithFile(display).Wrap(err)
	}

	cfg, err := Parse(data, path.Ext(name))
	if err != nil {
		return nil, errors.New("E104").
			WithLocationFromError(display, err).
			WithDetail(err.Error()).
			WithSuggestion("Check that " + name + " is valid")
	}
	cfg.configPath = display

	env, err := readEnv(fsys)
	if err != nil {
		return nil, errors.New("E104").WithFile(filepath.Join(root, EnvFile)).Wrap(err)
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a config document by extension. Defaults are not applied.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	var err error
	switch ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// readEnv returns the TESTROUTER_* variables from the dotenv file in fsys
// (if it exists) overlaid with the process environment.
func readEnv(fsys fs.FS) (map[string]string, error) {
	env := make(map[string]string)
	data, err := fs.ReadFile(fsys, EnvFile)
	switch {
	case err == nil:
		vals, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		for k, v := range vals {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	case !stderrors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	if v, ok := env[EnvPrefix+"APP_DIRECTORY"]; ok {
		c.AppDirectory = v
	}
	if v, ok := env[EnvPrefix+"ROUTES_DIRECTORY"]; ok {
		c.RoutesDirectory = v
	}
	if v, ok := env[EnvPrefix+"ORIGIN"]; ok {
		c.Origin = v
	}
	if v, ok := env[EnvPrefix+"FLAT_ROUTES"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("E104").
				WithDetailf("%sFLAT_ROUTES: invalid boolean %q", EnvPrefix, v)
		}
		c.FlatRoutes = b
	}
	if v, ok := env[EnvPrefix+"IGNORE"]; ok {
		var patterns []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		c.Ignore = mergeArray(c.Ignore, patterns)
	}
	return nil
}

// Merge overlays the non-zero fields of o onto c. Headers merge by key;
// Ignore patterns are appended without duplicates.
func (c *Config) Merge(o *Config) error {
	if o == nil {
		return nil
	}
	ignore := mergeArray(c.Ignore, o.Ignore)
	if err := mergo.Merge(c, *o, mergo.WithOverride); err != nil {
		return errors.New("E104").Wrap(err)
	}
	c.Ignore = ignore
	return nil
}

// mergeArray appends items to existing, keeping the first occurrence of
// each value.
func mergeArray(existing, items []string) []string {
	if len(existing) == 0 && len(items) == 0 {
		return existing
	}
	seen := make(map[string]bool, len(existing)+len(items))
	out := make([]string, 0, len(existing)+len(items))
	for _, list := range [][]string{existing, items} {
		for _, v := range list {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.AppDirectory == "" {
		c.AppDirectory = DefaultAppDirectory
	}
	if c.RoutesDirectory == "" {
		c.RoutesDirectory = DefaultRoutesDirectory
	}
	if c.Origin == "" {
		c.Origin = DefaultOrigin
	}
}

// Validate checks that directories stay inside the project and that the
// origin is an absolute URL.
func (c *Config) Validate() error {
	dirs := []struct{ name, dir string }{
		{"appDirectory", c.AppDirectory},
		{"routesDirectory", c.RoutesDirectory},
	}
	for _, d := range dirs {
		if !inside(d.dir) {
			return errors.New("E104").
				WithDetailf("%s %q must be a relative path inside the project", d.name, d.dir)
		}
	}

	u, err := url.Parse(c.Origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("E104").
			WithDetailf("origin %q must be an absolute URL such as http://localhost", c.Origin)
	}

	for _, p := range c.Ignore {
		if _, err := path.Match(p, ""); err != nil {
			return errors.New("E104").WithDetailf("ignore pattern %q: %v", p, err)
		}
	}
	return nil
}

func inside(dir string) bool {
	if dir == "" || filepath.IsAbs(dir) || strings.HasPrefix(dir, "/") {
		return false
	}
	clean := path.Clean(filepath.ToSlash(dir))
	return clean != ".." && !strings.HasPrefix(clean, "../")
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Root returns the project root, the directory containing the config file.
func (c *Config) Root() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// AppDir returns the absolute app directory.
func (c *Config) AppDir() string {
	return filepath.Join(c.Root(), filepath.FromSlash(c.AppDirectory))
}
