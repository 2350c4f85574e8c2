// Package config provides configuration management for unigate.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Eth       EthConfig       `yaml:"eth"`
	Etherscan EtherscanConfig `yaml:"etherscan"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Listen     string `yaml:"listen"`
	CORSOrigin string `yaml:"cors_origin"`
}

// DatabaseConfig defines the SQLite store settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EthConfig defines Ethereum node and contract settings.
type EthConfig struct {
	RPC               string `yaml:"rpc"`
	ChainID           int64  `yaml:"chain_id"`
	UniversityAddress string `yaml:"university_address"`
	PriceFeedAddress  string `yaml:"price_feed_address"`
}

// EtherscanConfig defines the transaction-history API settings.
type EtherscanConfig struct {
	BaseURL string `yaml:"base_url"`
	ChainID string `yaml:"chain_id"`
	APIKey  string `yaml:"api_key"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:     ":3000",
			CORSOrigin: "http://localhost:5173",
		},
		Database: DatabaseConfig{
			Path: "unigate.db",
		},
		Eth: EthConfig{
			RPC:     "http://localhost:8545",
			ChainID: 11155111,
		},
		Etherscan: EtherscanConfig{
			BaseURL: "https://api.etherscan.io/v2",
			ChainID: "11155111",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the specified file, applies defaults for
// missing fields and environment overrides on top. An empty path loads
// defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		// #nosec G304 -- config file path is from validated user input
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	ApplyEnvironment(cfg)
	return cfg, nil
}
