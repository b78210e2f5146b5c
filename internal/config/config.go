package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	Mapping struct {
		RepoID      int64 `koanf:"repo_id"`
		CacheSize   int   `koanf:"cache_size"`
		PrefixLimit int   `koanf:"prefix_limit"`
	} `koanf:"mapping"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"mapping.repo_id":      0,
		"mapping.cache_size":   10000,
		"mapping.prefix_limit": 10,
		"log.level":            "info",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./gitbridge.toml", "$HOME/.gitbridge.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix GITBRIDGE_
	k.Load(env.Provider("GITBRIDGE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "GITBRIDGE_")), "_", ".", -1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	// Create sample configuration
	sampleConfig := `# gitbridge configuration

[database]
url = "postgres://localhost/gitbridge?sslmode=disable"

[mapping]
repo_id = 0
cache_size = 10000
prefix_limit = 10

[log]
level = "info"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Mapping.RepoID < 0 {
		return fmt.Errorf("mapping repo_id must not be negative")
	}

	if config.Mapping.CacheSize < 0 {
		return fmt.Errorf("mapping cache_size must not be negative")
	}

	if config.Mapping.PrefixLimit <= 0 {
		return fmt.Errorf("mapping prefix_limit must be positive")
	}

	switch config.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.Log.Level)
	}

	return nil
}
