package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads .env, .env.{ENVIRONMENT} and .env.local. Later files
// override earlier ones; variables already in the process environment win
// over .env only.
func loadEnvFiles() error {
	if IsLambda() {
		return nil
	}

	if err := loadIfExists(".env", godotenv.Load); err != nil {
		return err
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env != "" {
		if err := loadIfExists(fmt.Sprintf(".env.%s", env), godotenv.Overload); err != nil {
			return err
		}
	}

	return loadIfExists(".env.local", godotenv.Overload)
}

func loadIfExists(file string, load func(...string) error) error {
	if _, err := os.Stat(file); err != nil {
		return nil
	}
	if err := load(file); err != nil {
		return fmt.Errorf("failed to load %s: %w", file, err)
	}
	return nil
}
