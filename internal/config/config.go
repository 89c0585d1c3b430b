// Package config loads itermlink settings from defaults, a YAML file, a
// .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"itermlink/internal/iterm"
	"itermlink/internal/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAppName    = "itermlink"
	DefaultTimeout    = 10 * time.Second
	DefaultTitleDelay = 700 * time.Millisecond

	// EnvPrefix prefixes every itermlink environment variable.
	EnvPrefix = "ITERMLINK_"
)

// Config holds the itermlink configuration
type Config struct {
	SocketPath string        `yaml:"socket_path"` // iTerm2 API socket; empty for the default
	URL        string        `yaml:"url"`         // websocket URL, overrides SocketPath
	AppName    string        `yaml:"app_name"`    // name shown in iTerm2's permission prompt
	Cookie     string        `yaml:"cookie"`
	Key        string        `yaml:"key"`
	Timeout    time.Duration `yaml:"timeout"`     // per command, default 10s
	TitleDelay time.Duration `yaml:"title_delay"` // before a session title write, default 700ms
	PrefsPath  string        `yaml:"prefs_path"`  // iTerm2 preferences plist
	LogDir     string        `yaml:"log_dir"`
	LogJSON    bool          `yaml:"log_json"`
	LogLevel   string        `yaml:"log_level"`
	Debug      bool          `yaml:"debug"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		AppName:    DefaultAppName,
		Timeout:    DefaultTimeout,
		TitleDelay: DefaultTitleDelay,
		LogDir:     logging.DefaultConfig().LogDir,
		LogLevel:   "info",
	}
}

// DefaultPath returns ~/.config/itermlink/config.yaml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "itermlink", "config.yaml")
}

// ValidationError holds validation warnings and whether defaults were applied
type ValidationError struct {
	Warnings []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Warnings, "; ")
}

func (e *ValidationError) HasWarnings() bool {
	return len(e.Warnings) > 0
}

// Validate validates the configuration and returns warnings if defaults were applied
func (c *Config) Validate() *ValidationError {
	var warnings []string

	if c.Timeout <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid timeout %s (must be positive), using default %s", c.Timeout, DefaultTimeout))
		c.Timeout = DefaultTimeout
	}

	if c.TitleDelay < 0 {
		warnings = append(warnings, fmt.Sprintf("invalid title delay %s (must not be negative), using default %s", c.TitleDelay, DefaultTitleDelay))
		c.TitleDelay = DefaultTitleDelay
	}

	if strings.TrimSpace(c.AppName) == "" {
		warnings = append(warnings, fmt.Sprintf("empty app name, using default '%s'", DefaultAppName))
		c.AppName = DefaultAppName
	}

	if _, ok := logging.ValidLogLevels[strings.ToLower(c.LogLevel)]; !ok {
		warnings = append(warnings, fmt.Sprintf("invalid log level '%s', using default 'info'", c.LogLevel))
		c.LogLevel = "info"
	}

	if c.URL != "" && !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://") {
		warnings = append(warnings, fmt.Sprintf("url '%s' is not a websocket URL, ignoring it", c.URL))
		c.URL = ""
	}

	// One without the other fails the handshake
	if (c.Cookie == "") != (c.Key == "") {
		warnings = append(warnings, "only one of cookie and key is set - both will be requested from iTerm2")
		c.Cookie, c.Key = "", ""
	}

	if len(warnings) > 0 {
		return &ValidationError{Warnings: warnings}
	}
	return nil
}

// ValidateStrict returns an error if any value is invalid (without auto-fixing)
func (c *Config) ValidateStrict() error {
	var errs []string

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}

	if c.TitleDelay < 0 {
		errs = append(errs, fmt.Sprintf("title delay must not be negative, got %s", c.TitleDelay))
	}

	if strings.TrimSpace(c.AppName) == "" {
		errs = append(errs, "app name must not be empty")
	}

	if _, ok := logging.ValidLogLevels[strings.ToLower(c.LogLevel)]; !ok {
		errs = append(errs, fmt.Sprintf("log level must be debug, info, warn or error, got '%s'", c.LogLevel))
	}

	if c.URL != "" && !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://") {
		errs = append(errs, fmt.Sprintf("url must start with ws:// or wss://, got '%s'", c.URL))
	}

	if (c.Cookie == "") != (c.Key == "") {
		errs = append(errs, "cookie and key must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ItermOptions returns the dial options for this configuration.
func (c Config) ItermOptions() iterm.Options {
	return iterm.Options{
		URL:              c.URL,
		SocketPath:       c.SocketPath,
		AppName:          c.AppName,
		Cookie:           c.Cookie,
		Key:              c.Key,
		HandshakeTimeout: c.Timeout,
	}
}

// LoggingConfig returns the logger configuration.
func (c Config) LoggingConfig() logging.Config {
	return logging.Config{
		LogDir:     c.LogDir,
		MaxAge:     logging.DefaultMaxAge,
		JSONOutput: c.LogJSON,
		Level:      c.LogLevel,
		Debug:      c.Debug,
	}
}

// Loader reads a Config from its sources.
type Loader struct {
	// Path is the YAML file. A missing file is not an error unless
	// Required is set.
	Path     string
	Required bool
	// DotEnv is the .env file. A missing file is skipped.
	DotEnv string
	// LookupEnv reads the environment. Nil means os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Load reads the configuration from path (DefaultPath when empty), .env
// in the working directory and the environment. An explicit path must
// exist.
func Load(path string) (Config, error) {
	l := Loader{Path: path, Required: path != "", DotEnv: ".env"}
	if l.Path == "" {
		l.Path = DefaultPath()
	}
	return l.Load()
}

// Load applies defaults, then the file, then .env, then the environment.
func (l Loader) Load() (Config, error) {
	cfg := DefaultConfig()

	if l.Path != "" {
		data, err := os.ReadFile(l.Path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !l.Required:
			logging.Debug("No config file", "path", logging.MaskPath(l.Path))
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(l.Path), err)
			}
		}
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	// Real environment wins over .env, as with godotenv.Load
	dotenv := map[string]string{}
	if l.DotEnv != "" {
		vars, err := godotenv.Read(l.DotEnv)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read %s: %w", l.DotEnv, err)
		default:
			dotenv = vars
		}
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(&cfg, env); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, env func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := env(name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := env(name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = d
		return nil
	}
	boolean := func(name string, dst *bool) error {
		v, ok := env(name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = b
		return nil
	}

	str(EnvPrefix+"SOCKET_PATH", &cfg.SocketPath)
	str(EnvPrefix+"URL", &cfg.URL)
	str(EnvPrefix+"APP_NAME", &cfg.AppName)
	str(EnvPrefix+"PREFS_PATH", &cfg.PrefsPath)
	str(EnvPrefix+"LOG_DIR", &cfg.LogDir)
	str(EnvPrefix+"LOG_LEVEL", &cfg.LogLevel)
	str("ITERM2_COOKIE", &cfg.Cookie)
	str("ITERM2_KEY", &cfg.Key)

	if err := dur(EnvPrefix+"TIMEOUT", &cfg.Timeout); err != nil {
		return err
	}
	if err := dur(EnvPrefix+"TITLE_DELAY", &cfg.TitleDelay); err != nil {
		return err
	}
	if err := boolean(EnvPrefix+"LOG_JSON", &cfg.LogJSON); err != nil {
		return err
	}
	return boolean(EnvPrefix+"DEBUG", &cfg.Debug)
}
