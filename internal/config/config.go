package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the EasyLoft client settings.
type Config struct {
	APIURL         string
	DataDir        string
	RequestTimeout time.Duration
	// RefreshInterval is zero when background refresh is disabled.
	RefreshInterval time.Duration
	LogLevel        string
	LogFile         string
}

// EnvAPIURL overrides api_url from the config file.
const EnvAPIURL = "EASYLOFT_API_URL"

const (
	defaultConfigPath     = "~/.config/easyloft/config.toml"
	defaultDataDir        = "~/.local/share/easyloft"
	defaultAPIURL         = "http://localhost:3000"
	defaultRequestTimeout = 10 * time.Second
	defaultRefresh        = 60 * time.Second
	defaultLogLevel       = "info"

	tokenFileName = "session.toml"
	logFileName   = "easyloft.log"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw struct {
		APIURL                string `toml:"api_url"`
		DataDir               string `toml:"data_dir"`
		RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
		RefreshSeconds        *int   `toml:"refresh_seconds"`
		LogLevel              string `toml:"log_level"`
		LogFile               string `toml:"log_file"`
	}

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := Config{
		APIURL:          strings.TrimSpace(raw.APIURL),
		DataDir:         strings.TrimSpace(raw.DataDir),
		RequestTimeout:  defaultRequestTimeout,
		RefreshInterval: defaultRefresh,
		LogLevel:        strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		LogFile:         strings.TrimSpace(raw.LogFile),
	}
	if env := strings.TrimSpace(os.Getenv(EnvAPIURL)); env != "" {
		cfg.APIURL = env
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	cfg.DataDir = mustExpand(cfg.DataDir)
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.RefreshSeconds != nil {
		cfg.RefreshInterval = 0
		if *raw.RefreshSeconds > 0 {
			cfg.RefreshInterval = time.Duration(*raw.RefreshSeconds) * time.Second
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, logFileName)
	}
	cfg.LogFile = mustExpand(cfg.LogFile)

	return cfg, nil
}

// TokenPath returns the path of the persisted session token.
func (c Config) TokenPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/" + tokenFileName)
	}
	return filepath.Join(c.DataDir, tokenFileName)
}

// LogPath returns the client log file path.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogFile) != "" {
		return c.LogFile
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/" + logFileName)
	}
	return filepath.Join(c.DataDir, logFileName)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
