package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Serve.Port != DefaultPort {
		t.Errorf("Serve.Port = %d, want %d", cfg.Serve.Port, DefaultPort)
	}
	if cfg.Serve.Host != DefaultHost {
		t.Errorf("Serve.Host = %q, want %q", cfg.Serve.Host, DefaultHost)
	}
	if cfg.Routes != DefaultRoutes {
		t.Errorf("Routes = %q, want %q", cfg.Routes, DefaultRoutes)
	}
	if cfg.RouterMode() != router.ModeHistory {
		t.Errorf("RouterMode() = %q, want %q", cfg.RouterMode(), router.ModeHistory)
	}
	if !cfg.MetricsEnabled() {
		t.Error("MetricsEnabled() = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "routectl.yaml",
			content: `routes: app/routes.toml
base: /app
mode: hash
serve:
  port: 8080
  metrics: false
watch:
  enabled: true
  debounce: 250ms
log:
  level: debug
`,
		},
		{
			name: "jsonc",
			file: "routectl.json",
			content: `{
  // route table next to the config
  "routes": "app/routes.toml",
  "base": "/app",
  "mode": "hash",
  "serve": {"port": 8080, "metrics": false,},
  "watch": {"enabled": true, "debounce": "250ms"},
  /* verbose */
  "log": {"level": "debug"},
}
`,
		},
		{
			name: "toml",
			file: "routectl.toml",
			content: `routes = "app/routes.toml"
base = "/app"
mode = "hash"

[serve]
port = 8080
metrics = false

[watch]
enabled = true
debounce = "250ms"

[log]
level = "debug"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			cfg, err := Load(dir)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got, want := cfg.RoutesSource(), filepath.Join(dir, "app/routes.toml"); got != want {
				t.Errorf("RoutesSource() = %q, want %q", got, want)
			}
			if cfg.Base != "/app" {
				t.Errorf("Base = %q, want %q", cfg.Base, "/app")
			}
			if cfg.RouterMode() != router.ModeHash {
				t.Errorf("RouterMode() = %q, want %q", cfg.RouterMode(), router.ModeHash)
			}
			if cfg.ServeAddress() != "localhost:8080" {
				t.Errorf("ServeAddress() = %q, want %q", cfg.ServeAddress(), "localhost:8080")
			}
			if cfg.MetricsEnabled() {
				t.Error("MetricsEnabled() = true, want false")
			}
			if cfg.Serve.WebSocketPath != "/ws" {
				t.Errorf("Serve.WebSocketPath = %q, want default /ws", cfg.Serve.WebSocketPath)
			}
			if !cfg.Watch.Enabled {
				t.Error("Watch.Enabled = false, want true")
			}
			if cfg.DebounceDuration() != 250*time.Millisecond {
				t.Errorf("DebounceDuration() = %v, want 250ms", cfg.DebounceDuration())
			}
			if cfg.LogLevel() != slog.LevelDebug {
				t.Errorf("LogLevel() = %v, want %v", cfg.LogLevel(), slog.LevelDebug)
			}
			if cfg.Dir() != dir {
				t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	var re *errors.RouteError
	if !stderrors.As(err, &re) || re.Code != errors.CodeConfigNotFound {
		t.Errorf("Load() error = %v, want %s", err, errors.CodeConfigNotFound)
	}
}

func TestLoadFileEmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "routectl.yaml", "")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Serve.Port != DefaultPort {
		t.Errorf("Serve.Port = %d, want %d", cfg.Serve.Port, DefaultPort)
	}
}

func TestLoadFileParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantLine int
	}{
		{"yaml syntax", "routectl.yaml", "routes: a\nserve:\n  port: [\n", 0},
		{"yaml unknown field", "routectl.yaml", "routes: a\nnope: 1\n", 2},
		{"json", "routectl.json", `{"serve": {"port": "x"}}`, 0},
		{"toml", "routectl.toml", "routes = \"a\"\nserve = = 1\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			_, err := LoadFile(path)

			var re *errors.RouteError
			if !stderrors.As(err, &re) {
				t.Fatalf("LoadFile() error = %v, want *RouteError", err)
			}
			if re.Code != errors.CodeConfigParse {
				t.Errorf("Code = %q, want %q", re.Code, errors.CodeConfigParse)
			}
			if tt.wantLine > 0 && (re.Location == nil || re.Location.Line == 0) {
				t.Errorf("Location = %v, want a line number", re.Location)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"abstract mode", func(c *Config) { c.Mode = "abstract" }, false},
		{"bad mode", func(c *Config) { c.Mode = "browser" }, true},
		{"relative base", func(c *Config) { c.Base = "app" }, true},
		{"port too large", func(c *Config) { c.Serve.Port = 70000 }, true},
		{"metrics path", func(c *Config) { c.Serve.MetricsPath = "metrics" }, true},
		{"debounce", func(c *Config) { c.Watch.Debounce = "soon" }, true},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = "-1s" }, true},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"warning level", func(c *Config) { c.Log.Level = "WARNING" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoutesSource(t *testing.T) {
	tests := []struct {
		routes string
		want   string
	}{
		{"s3://bucket/routes.yaml", "s3://bucket/routes.yaml"},
		{"/etc/routes.yaml", "/etc/routes.yaml"},
		{"routes.yaml", "/srv/app/routes.yaml"},
	}
	for _, tt := range tests {
		cfg := New()
		cfg.configPath = "/srv/app/routectl.yaml"
		cfg.Routes = tt.routes
		if got := cfg.RoutesSource(); got != tt.want {
			t.Errorf("RoutesSource() with %q = %q, want %q", tt.routes, got, tt.want)
		}
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "routectl.toml", "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", "serve:\n  port: 9000\n")
	t.Setenv(EnvConfig, path)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Serve.Port != 9000 {
		t.Errorf("Serve.Port = %d, want 9000", cfg.Serve.Port)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"routes.yaml", FormatYAML},
		{"routes.YML", FormatYAML},
		{"routes.json", FormatJSON},
		{"routes.jsonc", FormatJSON},
		{"routes.toml", FormatTOML},
		{"s3://bucket/routes.toml", FormatTOML},
		{"routes", FormatYAML},
	}
	for _, tt := range tests {
		if got := FormatOf(tt.name); got != tt.want {
			t.Errorf("FormatOf(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
