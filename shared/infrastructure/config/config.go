package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

var (
	mu       sync.Mutex
	instance *Config
)

// Load reads .env files and the environment once per process and returns
// the validated configuration.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance, nil
	}

	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	instance = cfg
	return cfg, nil
}

// FromEnv parses, defaults and validates the current process environment
// without touching .env files or the cached instance.
func FromEnv() (*Config, error) {
	cfg := parse()
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsLocal() bool {
	env := strings.ToLower(c.Environment)
	return env == "local" || env == "development" || env == "dev"
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// IsLambda reports whether the process runs inside AWS Lambda.
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}
