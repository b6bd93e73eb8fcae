// Package config loads masonry's TOML configuration file.
//
// The file is looked up in $MASONRY_CONFIG_DIR, then in the platform's user
// config directory (honoring $XDG_CONFIG_HOME). Missing files are not an
// error: [Load] falls back to the embedded defaults, which also document
// every key.
package config

import (
	"embed"
	stderrors "errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/masonry"
)

//go:embed default/config.toml
var configFS embed.FS

// EnvDir overrides the config directory.
const EnvDir = "MASONRY_CONFIG_DIR"

// FileName is the config file's name inside the config directory.
const FileName = "config.toml"

// Config is the decoded configuration file.
type Config struct {
	Wall     Wall     `toml:"wall"`
	SSR      SSR      `toml:"ssr"`
	Viewport Viewport `toml:"viewport"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`

	// Path is the file the config was read from; empty for the defaults.
	Path string `toml:"-"`
}

// Wall configures the wall itself.
type Wall struct {
	Width      float64         `toml:"width"`
	ThrottleMs int             `toml:"throttle_ms"`
	Padding    masonry.Padding `toml:"padding"`
}

// SSR is the server-side rendering hint.
type SSR struct {
	Columns int `toml:"columns"`
}

// Viewport is the simulated window.
type Viewport struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend   string `toml:"backend"`
	TTL       string `toml:"ttl"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	MongoURI  string `toml:"mongo_uri"`
	MongoDB   string `toml:"mongo_db"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string `toml:"addr"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
}

// DefaultTOML returns the embedded default configuration file.
func DefaultTOML() []byte {
	data, err := configFS.ReadFile("default/config.toml")
	if err != nil {
		panic("config: embedded defaults missing: " + err.Error())
	}
	return data
}

// Default returns the embedded default configuration.
func Default() *Config {
	data := DefaultTOML()
	c := &Config{}
	if _, err := toml.Decode(string(data), c); err != nil {
		panic("config: embedded defaults invalid: " + err.Error())
	}
	return c
}

// FilePath returns the config file location, whether or not it exists.
// It returns "" when no config directory can be determined.
func FilePath() string {
	if dir := os.Getenv(EnvDir); dir != "" {
		if s, err := os.Stat(dir); err == nil && s.IsDir() {
			return filepath.Join(dir, FileName)
		}
	}

	var dirs []string
	// os.UserConfigDir already honors XDG_CONFIG_HOME on linux
	if runtime.GOOS == "darwin" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dirs = append(dirs, xdg)
		}
		dirs = append(dirs, path.Join(os.Getenv("HOME"), ".config"))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}

	for _, dir := range dirs {
		p := filepath.Join(dir, "masonry", FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if len(dirs) > 0 {
		return filepath.Join(dirs[0], "masonry", FileName)
	}
	return ""
}

// Load reads the config file at [FilePath] over the defaults.
func Load() (*Config, error) {
	p := FilePath()
	if p == "" {
		return Default(), nil
	}
	c, err := LoadFile(p)
	if stderrors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

// LoadFile reads the config file at p over the defaults. Keys missing from
// the file keep their default values.
func LoadFile(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := c.Decode(string(data)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", p)
	}
	c.Path = p
	return c, nil
}

// Decode merges a TOML document into c and validates the result.
func (c *Config) Decode(data string) error {
	if _, err := toml.Decode(data, c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks values that decoding alone cannot.
func (c *Config) Validate() error {
	if err := c.WallOptions().Validate(); err != nil {
		return err
	}
	if c.SSR.Columns < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "ssr.columns cannot be negative, got %d", c.SSR.Columns)
	}
	if err := errors.ValidateNonNegative("viewport.width", c.Viewport.Width); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("viewport.height", c.Viewport.Height); err != nil {
		return err
	}
	for name, v := range map[string]string{
		"cache.ttl":            c.Cache.TTL,
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
	} {
		if _, err := parseDuration(name, v); err != nil {
			return err
		}
	}
	return nil
}

// WallOptions maps the [wall] table onto wall options. A negative
// throttle_ms disables throttling.
func (c *Config) WallOptions() masonry.Options {
	o := masonry.Options{
		Width:   c.Wall.Width,
		Padding: c.Wall.Padding,
	}
	switch {
	case c.Wall.ThrottleMs < 0:
		o.Throttle = masonry.NoThrottle
	default:
		o.Throttle = time.Duration(c.Wall.ThrottleMs) * time.Millisecond
	}
	return o
}

// CacheConfig maps the [cache] table onto a cache backend selection.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		RedisAddr: c.Cache.RedisAddr,
		MongoURI:  c.Cache.MongoURI,
		MongoDB:   c.Cache.MongoDB,
	}
}

// CacheTTL returns the configured cache lifetime, zero for the defaults.
func (c *Config) CacheTTL() time.Duration {
	d, _ := parseDuration("cache.ttl", c.Cache.TTL)
	return d
}

// ServerTimeouts returns the read and write timeouts.
func (c *Config) ServerTimeouts() (read, write time.Duration) {
	read, _ = parseDuration("server.read_timeout", c.Server.ReadTimeout)
	write, _ = parseDuration("server.write_timeout", c.Server.WriteTimeout)
	return read, write
}

func parseDuration(name, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidOptions, err, "%s: invalid duration %q", name, v)
	}
	if d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidOptions, "%s cannot be negative", name)
	}
	return d, nil
}
