package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the node configuration loaded from a TOML file.
type Config struct {
	RPCAddress         string `toml:"RPCAddress"`
	MetricsAddress     string `toml:"MetricsAddress"`
	DataDir            string `toml:"DataDir"`
	NetworkName        string `toml:"NetworkName"`
	LogLevel           string `toml:"LogLevel"`
	LogPath            string `toml:"LogPath"`
	RPCRateLimitPerMin int    `toml:"RPCRateLimitPerMin"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		RPCAddress:         "127.0.0.1:8645",
		MetricsAddress:     "127.0.0.1:9464",
		DataDir:            "./data",
		NetworkName:        "agora-local",
		LogLevel:           "info",
		RPCRateLimitPerMin: 600,
	}
}

// Load reads the configuration from path, creating a default file when none
// exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s contains unknown field %s", path, undecoded[0])
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = def.RPCAddress
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = def.MetricsAddress
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = def.DataDir
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = def.NetworkName
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.RPCRateLimitPerMin <= 0 {
		cfg.RPCRateLimitPerMin = def.RPCRateLimitPerMin
	}
}

func createDefault(path string) (*Config, error) {
	cfg := Default()
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
