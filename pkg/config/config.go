package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the utfx configuration.
type Config struct {
	Coder struct {
		CheckRange bool   `toml:"check_range"`
		ByteOrder  string `toml:"byte_order"` // little, big
	} `toml:"coder"`

	Transcode struct {
		Errors     string `toml:"errors"` // replace, fail, preserve
		BufferSize int    `toml:"buffer_size"`
	} `toml:"transcode"`

	Selfcheck struct {
		Workers   int  `toml:"workers"` // 0 = all CPUs
		ChunkSize int  `toml:"chunk_size"`
		Full      bool `toml:"full"`
	} `toml:"selfcheck"`

	Display struct {
		ColorOutput  bool `toml:"color_output"`
		BytesPerLine int  `toml:"bytes_per_line"`
	} `toml:"display"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Coder.CheckRange = false
	cfg.Coder.ByteOrder = "little"
	cfg.Transcode.Errors = "replace"
	cfg.Transcode.BufferSize = 32 * 1024
	cfg.Selfcheck.Workers = 0
	cfg.Selfcheck.ChunkSize = 0x10000
	cfg.Selfcheck.Full = false
	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 16
	return cfg
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Coder.ByteOrder {
	case "little", "big":
	default:
		return fmt.Errorf("invalid byte_order %q (want little or big)", c.Coder.ByteOrder)
	}
	switch c.Transcode.Errors {
	case "replace", "fail", "preserve":
	default:
		return fmt.Errorf("invalid errors policy %q", c.Transcode.Errors)
	}
	if c.Transcode.BufferSize < 0 {
		return fmt.Errorf("invalid buffer_size %d", c.Transcode.BufferSize)
	}
	return nil
}

// BigEndian reports the configured byte order.
func (c *Config) BigEndian() bool { return c.Coder.ByteOrder == "big" }

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "utfx")
	default:
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "utfx")
	}
	return filepath.Join(configDir, "config.toml")
}

// LoadFile loads configuration from a TOML file, applying it over defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load loads the default config file if it exists, otherwise returns
// defaults.
func Load() (*Config, error) {
	path := GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// Save writes the configuration to a TOML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
