package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

const (
	// EnvConfig names an explicit configuration file.
	EnvConfig = "ROUTECTL_CONFIG"

	// DefaultRoutes is the route table read when none is configured.
	DefaultRoutes = "routes.yaml"

	// DefaultPort is the default inspector port.
	DefaultPort = 7070

	// DefaultHost is the default inspector host.
	DefaultHost = "localhost"

	// DefaultDebounce is the default delay between a route file change
	// and the reload.
	DefaultDebounce = 100 * time.Millisecond
)

// ConfigFileNames are the configuration files Load looks for, in order.
var ConfigFileNames = []string{"routectl.yaml", "routectl.yml", "routectl.json", "routectl.toml"}

// Config is the routectl configuration.
type Config struct {
	// Routes is the route table source: a file path, relative to the
	// config file, or an s3://bucket/key URL.
	Routes string `yaml:"routes,omitempty" json:"routes,omitempty" toml:"routes,omitempty"`

	// Base is the path prefix hrefs are built under.
	Base string `yaml:"base,omitempty" json:"base,omitempty" toml:"base,omitempty"`

	// Mode is one of "abstract", "history" or "hash".
	Mode string `yaml:"mode,omitempty" json:"mode,omitempty" toml:"mode,omitempty"`

	Serve ServeConfig `yaml:"serve,omitempty" json:"serve,omitempty" toml:"serve,omitempty"`

	Watch WatchConfig `yaml:"watch,omitempty" json:"watch,omitempty" toml:"watch,omitempty"`

	S3 S3Config `yaml:"s3,omitempty" json:"s3,omitempty" toml:"s3,omitempty"`

	Log LogConfig `yaml:"log,omitempty" json:"log,omitempty" toml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServeConfig configures the inspector server.
type ServeConfig struct {
	Host string `yaml:"host,omitempty" json:"host,omitempty" toml:"host,omitempty"`
	Port int    `yaml:"port,omitempty" json:"port,omitempty" toml:"port,omitempty"`

	// Metrics exposes Prometheus metrics at MetricsPath.
	Metrics     *bool  `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`
	MetricsPath string `yaml:"metricsPath,omitempty" json:"metricsPath,omitempty" toml:"metricsPath,omitempty"`

	// WebSocketPath is where browsers connect to mirror the history.
	WebSocketPath string `yaml:"websocketPath,omitempty" json:"websocketPath,omitempty" toml:"websocketPath,omitempty"`

	// AllowedOrigins lists the origins allowed to open the history
	// socket. Empty allows same-origin requests only.
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty" json:"allowedOrigins,omitempty" toml:"allowedOrigins,omitempty"`
}

// WatchConfig configures route table reloading.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty" json:"enabled,omitempty" toml:"enabled,omitempty"`
	Debounce string `yaml:"debounce,omitempty" json:"debounce,omitempty" toml:"debounce,omitempty"`
}

// S3Config configures s3:// route table sources.
type S3Config struct {
	Region string `yaml:"region,omitempty" json:"region,omitempty" toml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty" toml:"endpoint,omitempty"`

	// UsePathStyle addresses buckets as path segments.
	UsePathStyle bool `yaml:"usePathStyle,omitempty" json:"usePathStyle,omitempty" toml:"usePathStyle,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `yaml:"level,omitempty" json:"level,omitempty" toml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `yaml:"format,omitempty" json:"format,omitempty" toml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	metrics := true
	return &Config{
		Routes: DefaultRoutes,
		Mode:   string(router.ModeHistory),
		Serve: ServeConfig{
			Host:          DefaultHost,
			Port:          DefaultPort,
			Metrics:       &metrics,
			MetricsPath:   "/metrics",
			WebSocketPath: "/ws",
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce.String(),
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the first configuration file found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No routectl.yaml, routectl.json or routectl.toml found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New(errors.CodeConfigParse).Wrap(err)
	}

	cfg := New()
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadFromEnv loads the file named by ROUTECTL_CONFIG, or searches the
// working directory and its parents. With no file anywhere it returns
// the defaults.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return LoadFile(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Routes == "" {
		c.Routes = DefaultRoutes
	}
	if c.Mode == "" {
		c.Mode = string(router.ModeHistory)
	}

	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Metrics == nil {
		metrics := true
		c.Serve.Metrics = &metrics
	}
	if c.Serve.MetricsPath == "" {
		c.Serve.MetricsPath = "/metrics"
	}
	if c.Serve.WebSocketPath == "" {
		c.Serve.WebSocketPath = "/ws"
	}

	if c.Watch.Debounce == "" {
		c.Watch.Debounce = DefaultDebounce.String()
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch router.Mode(c.Mode) {
	case router.ModeAbstract, router.ModeHistory, router.ModeHash:
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("mode must be abstract, history or hash, got " + strconv.Quote(c.Mode))
	}

	if c.Base != "" && !strings.HasPrefix(c.Base, "/") {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("base must start with /, got " + strconv.Quote(c.Base)).
			WithSuggestion("Use base: /" + c.Base)
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("serve.port must be between 0 and 65535")
	}
	for _, p := range []string{c.Serve.MetricsPath, c.Serve.WebSocketPath} {
		if !strings.HasPrefix(p, "/") {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail("server paths must start with /, got " + strconv.Quote(p))
		}
	}

	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("watch.debounce must be a non-negative duration, got " + strconv.Quote(c.Watch.Debounce))
	}

	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.level must be debug, info, warn or error, got " + strconv.Quote(c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}

	return nil
}

// RoutesSource returns the route table source with relative file paths
// resolved against the config directory.
func (c *Config) RoutesSource() string {
	if IsS3Source(c.Routes) || filepath.IsAbs(c.Routes) {
		return c.Routes
	}
	return filepath.Join(c.Dir(), c.Routes)
}

// RouterMode returns Mode as a router.Mode.
func (c *Config) RouterMode() router.Mode {
	return router.Mode(c.Mode)
}

// ServeAddress returns the inspector listen address.
func (c *Config) ServeAddress() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// MetricsEnabled reports whether the inspector exposes metrics.
func (c *Config) MetricsEnabled() bool {
	return c.Serve.Metrics == nil || *c.Serve.Metrics
}

// DebounceDuration returns the watch debounce, or DefaultDebounce when
// it does not parse.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d < 0 {
		return DefaultDebounce
	}
	return d
}

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	if lvl, ok := logLevels[strings.ToLower(c.Log.Level)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find one holding a config
// file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigNotFound).
				WithDetail("No routectl configuration found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
