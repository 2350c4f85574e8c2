package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvListen            = "UNIGATE_LISTEN"
	EnvCORSOrigin        = "UNIGATE_CORS_ORIGIN"
	EnvDatabasePath      = "UNIGATE_DATABASE_PATH"
	EnvEthRPC            = "UNIGATE_ETH_RPC"
	EnvEthChainID        = "UNIGATE_ETH_CHAIN_ID"
	EnvUniversityAddress = "UNIGATE_UNIVERSITY_ADDRESS"
	EnvPriceFeedAddress  = "UNIGATE_PRICE_FEED_ADDRESS"
	EnvEtherscanAPIKey   = "UNIGATE_ETHERSCAN_API_KEY" // #nosec G101 -- const name, not a credential
	EnvEtherscanBaseURL  = "UNIGATE_ETHERSCAN_BASE_URL"
	EnvEtherscanChainID  = "UNIGATE_ETHERSCAN_CHAIN_ID"
	EnvLogLevel          = "UNIGATE_LOG_LEVEL"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvListen); v != "" {
		cfg.Server.Listen = v
	}

	if v := os.Getenv(EnvCORSOrigin); v != "" {
		cfg.Server.CORSOrigin = v
	}

	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv(EnvEthRPC); v != "" {
		cfg.Eth.RPC = v
	}

	if v := os.Getenv(EnvEthChainID); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			cfg.Eth.ChainID = id
		}
	}

	if v := os.Getenv(EnvUniversityAddress); v != "" {
		cfg.Eth.UniversityAddress = v
	}

	if v := os.Getenv(EnvPriceFeedAddress); v != "" {
		cfg.Eth.PriceFeedAddress = v
	}

	if v := os.Getenv(EnvEtherscanAPIKey); v != "" {
		cfg.Etherscan.APIKey = v
	}

	if v := os.Getenv(EnvEtherscanBaseURL); v != "" {
		cfg.Etherscan.BaseURL = v
	}

	if v := os.Getenv(EnvEtherscanChainID); v != "" {
		cfg.Etherscan.ChainID = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
