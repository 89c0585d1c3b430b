package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "itermlink", cfg.AppName)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 700*time.Millisecond, cfg.TitleDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Nil(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateStrict())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
socket_path: /tmp/iterm.socket
app_name: deploy-bot
timeout: 3s
title_delay: 250ms
log_json: true
debug: true
`)

	cfg, err := Loader{Path: path, LookupEnv: envMap(nil)}.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/iterm.socket", cfg.SocketPath)
	assert.Equal(t, "deploy-bot", cfg.AppName)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.TitleDelay)
	assert.True(t, cfg.LogJSON)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")

	cfg, err := Loader{Path: missing, LookupEnv: envMap(nil)}.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = Loader{Path: missing, Required: true, LookupEnv: envMap(nil)}.Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "timeout: [not a duration\n")

	_, err := Loader{Path: path, LookupEnv: envMap(nil)}.Load()
	assert.ErrorContains(t, err, "failed to parse config.yaml")
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, "config.yaml", "app_name: from-file\nurl: ws://file/\ntimeout: 1s\n")
	dotenv := writeFile(t, ".env", "ITERMLINK_URL=ws://dotenv/\nITERMLINK_TIMEOUT=2s\nITERM2_COOKIE=dot-cookie\nITERM2_KEY=dot-key\n")

	cfg, err := Loader{
		Path:   path,
		DotEnv: dotenv,
		LookupEnv: envMap(map[string]string{
			"ITERMLINK_TIMEOUT": "5s",
			"ITERMLINK_DEBUG":   "true",
		}),
	}.Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.AppName)
	assert.Equal(t, "ws://dotenv/", cfg.URL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "dot-cookie", cfg.Cookie)
	assert.Equal(t, "dot-key", cfg.Key)
	assert.True(t, cfg.Debug)
}

func TestLoadInvalidEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"timeout", map[string]string{"ITERMLINK_TIMEOUT": "soon"}, "invalid ITERMLINK_TIMEOUT"},
		{"title delay", map[string]string{"ITERMLINK_TITLE_DELAY": "1"}, "invalid ITERMLINK_TITLE_DELAY"},
		{"debug", map[string]string{"ITERMLINK_DEBUG": "maybe"}, "invalid ITERMLINK_DEBUG"},
		{"log json", map[string]string{"ITERMLINK_LOG_JSON": "yes please"}, "invalid ITERMLINK_LOG_JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Loader{LookupEnv: envMap(tt.env)}.Load()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		check    func(t *testing.T, c Config)
		warnings int
	}{
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.Timeout = -time.Second },
			check: func(t *testing.T, c Config) {
				assert.Equal(t, DefaultTimeout, c.Timeout)
			},
			warnings: 1,
		},
		{
			name:   "zero title delay is allowed",
			mutate: func(c *Config) { c.TitleDelay = 0 },
			check: func(t *testing.T, c Config) {
				assert.Zero(t, c.TitleDelay)
			},
		},
		{
			name:   "negative title delay",
			mutate: func(c *Config) { c.TitleDelay = -1 },
			check: func(t *testing.T, c Config) {
				assert.Equal(t, DefaultTitleDelay, c.TitleDelay)
			},
			warnings: 1,
		},
		{
			name:   "blank app name and bad level",
			mutate: func(c *Config) { c.AppName = " "; c.LogLevel = "trace" },
			check: func(t *testing.T, c Config) {
				assert.Equal(t, DefaultAppName, c.AppName)
				assert.Equal(t, "info", c.LogLevel)
			},
			warnings: 2,
		},
		{
			name:   "http url",
			mutate: func(c *Config) { c.URL = "http://localhost:1912/" },
			check: func(t *testing.T, c Config) {
				assert.Empty(t, c.URL)
			},
			warnings: 1,
		},
		{
			name:   "cookie without key",
			mutate: func(c *Config) { c.Cookie = "abc" },
			check: func(t *testing.T, c Config) {
				assert.Empty(t, c.Cookie)
				assert.Empty(t, c.Key)
			},
			warnings: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			strictErr := cfg.ValidateStrict()
			verr := cfg.Validate()
			if tt.warnings == 0 {
				assert.Nil(t, verr)
				assert.NoError(t, strictErr)
			} else {
				require.NotNil(t, verr)
				assert.True(t, verr.HasWarnings())
				assert.Len(t, verr.Warnings, tt.warnings)
				assert.ErrorContains(t, strictErr, "config validation failed")
			}
			tt.check(t, cfg)
		})
	}
}

func TestItermOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "ws://localhost:1912/"
	cfg.Cookie, cfg.Key = "c", "k"

	opts := cfg.ItermOptions()
	assert.Equal(t, "ws://localhost:1912/", opts.URL)
	assert.Equal(t, "itermlink", opts.AppName)
	assert.Equal(t, "c", opts.Cookie)
	assert.Equal(t, "k", opts.Key)
	assert.Equal(t, DefaultTimeout, opts.HandshakeTimeout)
}

func TestLoggingConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogDir = "/tmp/logs"
	cfg.LogJSON = true
	cfg.Debug = true

	lc := cfg.LoggingConfig()
	assert.Equal(t, "/tmp/logs", lc.LogDir)
	assert.True(t, lc.JSONOutput)
	assert.True(t, lc.Debug)
	assert.Equal(t, "info", lc.Level)
	assert.Positive(t, lc.MaxAge)
}
