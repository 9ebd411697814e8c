package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// OceanConfig holds the network configuration for one chain deployment.
// Loaded once at startup and passed into components as an immutable value;
// nothing re-derives network configuration per request.
type OceanConfig struct {
	RPCURL            string `mapstructure:"rpc_url"`
	ChainID           uint64 `mapstructure:"chain_id"`
	NFTFactoryAddress string `mapstructure:"nft_factory_address"`
	DispenserAddress  string `mapstructure:"dispenser_address"`
	OceanTokenAddress string `mapstructure:"ocean_token_address"`
	ProviderURL       string `mapstructure:"provider_url"`
	AquariusURL       string `mapstructure:"aquarius_url"`
	SubgraphURL       string `mapstructure:"subgraph_url"`
}

// DiscoveryConfig holds holdings-discovery tuning
type DiscoveryConfig struct {
	LookbackBlocks   uint64        `mapstructure:"lookback_blocks"`   // transfer scan window depth
	ProbeConcurrency int           `mapstructure:"probe_concurrency"` // candidate probes in flight
	CacheSize        int           `mapstructure:"cache_size"`        // probe cache entries
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`         // probe cache entry lifetime
}

// HTTPConfig holds outbound HTTP client configuration
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// GatewayConfig holds configuration for the API gateway binary
type GatewayConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Ocean      OceanConfig     `mapstructure:"ocean"`
	Discovery  DiscoveryConfig `mapstructure:"discovery"`
	HTTP       HTTPConfig      `mapstructure:"http"`
}

// LoadGatewayConfig loads configuration for the API gateway
func LoadGatewayConfig(configFile string, envPath string) (*GatewayConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("ocean.chain_id", 11155111)
	v.SetDefault("discovery.lookback_blocks", 10000)
	v.SetDefault("discovery.probe_concurrency", 5)
	v.SetDefault("discovery.cache_size", 1024)
	v.SetDefault("discovery.cache_ttl", "10m")
	v.SetDefault("http.timeout", "30s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config GatewayConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that the required network addresses are present. The
// gateway cannot build a single transaction without them.
func (c *GatewayConfig) Validate() error {
	switch {
	case c.Ocean.RPCURL == "":
		return fmt.Errorf("ocean.rpc_url is required")
	case c.Ocean.NFTFactoryAddress == "":
		return fmt.Errorf("ocean.nft_factory_address is required")
	case c.Ocean.DispenserAddress == "":
		return fmt.Errorf("ocean.dispenser_address is required")
	case c.Ocean.OceanTokenAddress == "":
		return fmt.Errorf("ocean.ocean_token_address is required")
	case c.Ocean.ProviderURL == "":
		return fmt.Errorf("ocean.provider_url is required")
	case c.Ocean.AquariusURL == "":
		return fmt.Errorf("ocean.aquarius_url is required")
	case c.Ocean.SubgraphURL == "":
		return fmt.Errorf("ocean.subgraph_url is required")
	}
	return nil
}

// configureViper creates a viper instance wired to env files and variables
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("DATANFT_GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"ocean.rpc_url",
		"ocean.chain_id",
		"ocean.nft_factory_address",
		"ocean.dispenser_address",
		"ocean.ocean_token_address",
		"ocean.provider_url",
		"ocean.aquarius_url",
		"ocean.subgraph_url",
		"discovery.lookback_blocks",
		"discovery.probe_concurrency",
		"discovery.cache_size",
		"discovery.cache_ttl",
		"http.timeout",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from .env files
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}
