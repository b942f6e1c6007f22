// Package config loads dbviewer settings from an optional YAML file, .env files
// and DBVIEWER_* environment variables, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dbviewer/internal/content"
	"dbviewer/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDelay is how long each item stays on screen.
	DefaultDelay = 15 * time.Second
	// DefaultRetryDelay is how long to wait before re-reading an unavailable content file.
	DefaultRetryDelay = time.Second
	// DefaultControlAddr is the control server listen address.
	DefaultControlAddr = "127.0.0.1:9877"
	// DefaultUserAgent is presented to remote dashboards.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// ControlDisabled turns the control server off when used as ControlAddr.
	ControlDisabled = "off"

	SurfaceChrome = "chrome"
	SurfaceLog    = "log"
)

// Config holds everything needed to start a kiosk.
type Config struct {
	ContentFile string        `yaml:"content_file" env:"DBVIEWER_CONTENT_FILE"`
	Delay       time.Duration `yaml:"delay" env:"DBVIEWER_DELAY"`
	RetryDelay  time.Duration `yaml:"retry_delay" env:"DBVIEWER_RETRY_DELAY"`
	Surface     string        `yaml:"surface" env:"DBVIEWER_SURFACE"`
	ControlAddr string        `yaml:"control_addr" env:"DBVIEWER_CONTROL_ADDR"`
	Chrome      Chrome        `yaml:"chrome"`
	Log         logger.Config `yaml:"log"`
}

// Chrome configures the kiosk browser window.
type Chrome struct {
	ExecPath          string `yaml:"exec_path" env:"DBVIEWER_CHROME_PATH"`
	UserAgent         string `yaml:"user_agent" env:"DBVIEWER_USER_AGENT"`
	UserDataDir       string `yaml:"user_data_dir" env:"DBVIEWER_USER_DATA_DIR"`
	Headless          bool   `yaml:"headless" env:"DBVIEWER_HEADLESS"`
	DisableJavaScript bool   `yaml:"disable_javascript" env:"DBVIEWER_DISABLE_JS"`
	Width             int    `yaml:"width" env:"DBVIEWER_WIDTH"`
	Height            int    `yaml:"height" env:"DBVIEWER_HEIGHT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ContentFile: content.DefaultPath(),
		Delay:       DefaultDelay,
		RetryDelay:  DefaultRetryDelay,
		Surface:     SurfaceChrome,
		ControlAddr: DefaultControlAddr,
		Chrome: Chrome{
			UserAgent:   DefaultUserAgent,
			UserDataDir: defaultUserDataDir(),
			Width:       1920,
			Height:      1080,
		},
		Log: logger.Config{
			Level:       logger.DefaultLevel,
			OutputPaths: []string{defaultLogPath()},
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path is
// empty), .env files and environment variables.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// Missing files are not an error.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.ContentFile == "" {
		errs = append(errs, errors.New("content_file is required"))
	}
	if c.Delay <= 0 {
		errs = append(errs, fmt.Errorf("delay must be positive, got %s", c.Delay))
	}
	if c.RetryDelay <= 0 {
		errs = append(errs, fmt.Errorf("retry_delay must be positive, got %s", c.RetryDelay))
	}
	switch c.Surface {
	case SurfaceChrome, SurfaceLog:
	default:
		errs = append(errs, fmt.Errorf("surface must be %q or %q, got %q", SurfaceChrome, SurfaceLog, c.Surface))
	}
	return errors.Join(errs...)
}

// ControlEnabled reports whether the control server should be started.
func (c *Config) ControlEnabled() bool {
	return c.ControlAddr != "" && c.ControlAddr != ControlDisabled
}
