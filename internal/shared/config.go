package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Storage   StorageConfig   `toml:"storage"`
	Converter ConverterConfig `toml:"converter"`
	Upload    UploadConfig    `toml:"upload"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port pair for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// StorageConfig contains object storage settings. Cover images and audio
// files live in separate buckets.
type StorageConfig struct {
	BaseURL     string `toml:"base_url"`
	APIKey      string `toml:"api_key"`
	CoverBucket string `toml:"cover_bucket"`
	AudioBucket string `toml:"audio_bucket"`
}

// ConverterConfig contains settings for the external video-to-MP3 conversion API.
type ConverterConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// UploadConfig contains upload coordination settings.
type UploadConfig struct {
	CooldownSeconds int    `toml:"cooldown_seconds"`
	StatePath       string `toml:"state_path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Secrets may be supplied through the environment instead of the file:
// TUNIFY_STORAGE_API_KEY and TUNIFY_CONVERTER_API_KEY override their TOML
// counterparts when set.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
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

func (c *Config) applyEnv() {
	if v := os.Getenv("TUNIFY_STORAGE_API_KEY"); v != "" {
		c.Storage.APIKey = v
	}
	if v := os.Getenv("TUNIFY_CONVERTER_API_KEY"); v != "" {
		c.Converter.APIKey = v
	}
}
