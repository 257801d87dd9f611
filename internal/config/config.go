package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dirName  = ".nebula-notes"
	fileName = "config"

	DefaultTransport      = "genai"
	DefaultDebounce       = time.Second
	DefaultRequestTimeout = 60 * time.Second
)

// Config holds settings stored at ~/.nebula-notes/config.
type Config struct {
	APIKey          string        `yaml:"api_key,omitempty"`
	Model           string        `yaml:"model,omitempty"`
	Transport       string        `yaml:"transport,omitempty"`
	BaseURL         string        `yaml:"base_url,omitempty"`
	DBPath          string        `yaml:"db_path,omitempty"`
	LogFile         string        `yaml:"log_file,omitempty"`
	Debounce        time.Duration `yaml:"debounce,omitempty"`
	DiscardOnSwitch bool          `yaml:"discard_on_switch,omitempty"`
	RequestTimeout  time.Duration `yaml:"request_timeout,omitempty"`
}

// Dir returns the directory holding the config, database and log.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dirName)
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), fileName)
}

// Default returns the config used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// ErrInsecurePermissions is returned when the config file is readable by
// anyone but its owner.
var ErrInsecurePermissions = errors.New("config permissions too open")

// Load reads the config file, fills defaults and applies environment
// overrides. A missing file is not an error; insecure permissions are.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile is Load without environment overrides, for rewriting the file.
func LoadFile() (*Config, error) {
	path := Path()
	cfg := &Config{}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("stat config: %w", err)
	default:
		perm := info.Mode().Perm()
		if perm != 0600 {
			return nil, fmt.Errorf("%w: %04o (want 0600)", ErrInsecurePermissions, perm)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the app cannot run with.
func (c *Config) Validate() error {
	switch c.Transport {
	case "genai", "rest":
	default:
		return fmt.Errorf("config transport %q: want genai or rest", c.Transport)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("config debounce must not be negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config request_timeout must not be negative")
	}
	return nil
}

// HasAPIKey reports whether AI actions can be attempted.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c *Config) applyEnv() {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			c.APIKey = v
			return
		}
	}
}

func (c *Config) applyDefaults() {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport == "" {
		c.Transport = DefaultTransport
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(Dir(), "notes.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(Dir(), "nebula-notes.log")
	}
	if c.Debounce == 0 {
		c.Debounce = DefaultDebounce
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}
