package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override the config file.
const (
	EnvDeviceURL   = "NFCMUSIK_DEVICE"
	EnvJournalPath = "NFCMUSIK_JOURNAL"
	EnvLogLevel    = "NFCMUSIK_LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Device    DeviceConfig    `toml:"device"`
	Polling   PollingConfig   `toml:"polling"`
	Journal   JournalConfig   `toml:"journal"`
	Simulator SimulatorConfig `toml:"simulator"`
	Logging   LoggingConfig   `toml:"logging"`
}

// DeviceConfig describes how to reach the music box.
type DeviceConfig struct {
	URL               string  `toml:"url"`
	RequestTimeout    string  `toml:"request_timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// PollingConfig contains the dashboard loop intervals.
type PollingConfig struct {
	NFCInterval  string `toml:"nfc_interval"`
	WlanInterval string `toml:"wlan_interval"`
	Feedback     string `toml:"feedback"`
}

// JournalConfig contains the action journal database settings.
type JournalConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SimulatorConfig contains settings for the fake device server.
type SimulatorConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	MusicRoot    string `toml:"music_root"`
	WlanOffDelay int    `toml:"wlan_off_delay"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads a .env file from envFile (when present) and applies NFCMUSIK_* overrides.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if v := os.Getenv(EnvDeviceURL); v != "" {
		c.Device.URL = v
	}
	if v := os.Getenv(EnvJournalPath); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks duration strings and required fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Device.URL) == "" {
		return fmt.Errorf("%w: device.url is required", ErrInvalidConfig)
	}
	for name, v := range map[string]string{
		"device.request_timeout": c.Device.RequestTimeout,
		"polling.nfc_interval":   c.Polling.NFCInterval,
		"polling.wlan_interval":  c.Polling.WlanInterval,
		"polling.feedback":       c.Polling.Feedback,
	} {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	if c.Device.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: device.requests_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// RequestTimeout returns the per-request timeout, defaulting to 5s.
func (c *Config) RequestTimeout() time.Duration {
	return parseDurationOr(c.Device.RequestTimeout, 5*time.Second)
}

// NFCInterval returns the NFC poll delay, defaulting to 1s.
func (c *Config) NFCInterval() time.Duration {
	return parseDurationOr(c.Polling.NFCInterval, time.Second)
}

// WlanInterval returns the WLAN timeout poll delay, defaulting to 1s.
func (c *Config) WlanInterval() time.Duration {
	return parseDurationOr(c.Polling.WlanInterval, time.Second)
}

// FeedbackDuration returns how long success/error row styling lasts, defaulting to 3s.
func (c *Config) FeedbackDuration() time.Duration {
	return parseDurationOr(c.Polling.Feedback, 3*time.Second)
}

// LogLevel parses the configured level, falling back to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
