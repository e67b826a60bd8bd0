package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnv sync.Once

// Config returns a required environment variable, exiting if it is unset.
func Config(envVar string) string {
	loadEnv.Do(func() {
		// A missing .env file is fine; variables may come from the environment.
		_ = godotenv.Load()
	})

	envVarValue := os.Getenv(envVar)
	if envVarValue == "" {
		fmt.Fprintf(os.Stderr, "%s not set\n", envVar)
		os.Exit(1)
	}

	return envVarValue
}

// ConfigOr returns an optional environment variable or the fallback.
func ConfigOr(envVar, fallback string) string {
	loadEnv.Do(func() {
		_ = godotenv.Load()
	})

	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}
