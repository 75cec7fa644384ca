package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads envFile (".env" when empty) into the process environment and
// then fills cfg from it. A missing env file is not an error; variables
// already set in the environment take precedence over the file.
func Load(cfg *Config, envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	return cfg.Validate()
}
