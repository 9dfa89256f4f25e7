// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/steam-proxy/config.toml",
	"configs/config.toml",
}

// DefaultUserAgent is sent on HTML endpoints; the storefront rejects clients
// that do not look like a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config   string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host     string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port     int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	APIKey   string `kong:"help='Steam Web API key (overrides config).',env='STEAM_API_KEY'"`
	LogLevel string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Steam    SteamConfig    `toml:"steam"`
	Upstream UpstreamConfig `toml:"upstream"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"` // 0 means "use default" (8000)
	BodyMaxBytes int64  `toml:"body_max_bytes"`
}

// SteamConfig holds the Steam API key and upstream hosts.
type SteamConfig struct {
	APIKey    string `toml:"api_key"`
	StoreURL  string `toml:"store_url"`
	APIURL    string `toml:"api_url"`
	UserAgent string `toml:"user_agent"`
	// CustomURLHosts restricts the hosts the customurl endpoint may fetch.
	// Empty allows any host.
	CustomURLHosts []string `toml:"custom_url_hosts"`
}

// UpstreamConfig holds upstream connection settings.
type UpstreamConfig struct {
	TimeoutSeconds  int   `toml:"timeout_seconds"`
	IdleConnections int   `toml:"idle_connections"`
	MaxBodyBytes    int64 `toml:"max_body_bytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/steam-proxy/config.toml then configs/config.toml.
func Load(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return nil, fmt.Errorf("config: no config file found (searched %v)", configSearchPaths)
	}
	return loadFile(path, cli)
}

// LoadOrDefault behaves like Load but falls back to built-in defaults plus
// CLI/env overrides when no config file exists. Serverless deployments carry
// only environment variables.
func LoadOrDefault(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path != "" {
		return loadFile(path, cli)
	}
	var cfg Config
	return cfg.finish(cli)
}

func loadFile(path string, cli *CLI) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.filePath = path
	return cfg.finish(cli)
}

func (c *Config) finish(cli *CLI) (*Config, error) {
	c.applyCLI(cli)
	// Defaults go first so the upstream URLs are always validated.
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return c, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.APIKey != "" {
		c.Steam.APIKey = cli.APIKey
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	if c.Steam.APIKey == "YOUR_API_KEY_HERE" {
		return fmt.Errorf("steam.api_key contains placeholder value; set a real key or leave it empty")
	}

	for name, raw := range map[string]string{
		"steam.store_url": c.Steam.StoreURL,
		"steam.api_url":   c.Steam.APIURL,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", name, err)
		}
		if u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute HTTPS URL; got %q", name, raw)
		}
	}
	for _, h := range c.Steam.CustomURLHosts {
		if h == "" || strings.ContainsAny(h, "/: ") {
			return fmt.Errorf("steam.custom_url_hosts entries must be bare host names; got %q", h)
		}
	}

	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	if c.Upstream.TimeoutSeconds < 0 {
		return fmt.Errorf("upstream.timeout_seconds must be non-negative; got %d", c.Upstream.TimeoutSeconds)
	}
	if c.Upstream.IdleConnections < 0 {
		return fmt.Errorf("upstream.idle_connections must be non-negative; got %d", c.Upstream.IdleConnections)
	}
	if c.Upstream.MaxBodyBytes < 0 {
		return fmt.Errorf("upstream.max_body_bytes must be non-negative; got %d", c.Upstream.MaxBodyBytes)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	if c.Metrics.Enabled {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		for _, reserved := range ReservedPaths {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// ReservedPaths are the routes served by the HTTP host.
var ReservedPaths = []string{"/api/steam-api", "/.netlify/functions/steam-api", "/healthz", "/proxy/status"}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields zero means "unset" because TOML cannot distinguish
// between an explicit 0 and an omitted key.
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 1024 * 1024 // 1 MB, inbound calls are bodyless GETs
	}
	if c.Steam.StoreURL == "" {
		c.Steam.StoreURL = "https://store.steampowered.com"
	}
	if c.Steam.APIURL == "" {
		c.Steam.APIURL = "https://api.steampowered.com"
	}
	if c.Steam.UserAgent == "" {
		c.Steam.UserAgent = DefaultUserAgent
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = 30
	}
	if c.Upstream.IdleConnections == 0 {
		c.Upstream.IdleConnections = 100
	}
	if c.Upstream.MaxBodyBytes == 0 {
		c.Upstream.MaxBodyBytes = 20 * 1024 * 1024
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WarnPermissions logs a warning if the config file is readable by group or others.
// The file may hold the Steam API key.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
