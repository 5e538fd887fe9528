package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override config file values.
const (
	EnvPort              = "TANYA_PORT"
	EnvDBPath            = "TANYA_DB_PATH"
	EnvEmbeddingProvider = "TANYA_EMBEDDING_PROVIDER"
	EnvKnowledgePath     = "TANYA_KNOWLEDGE_PATH"
	EnvRedisAddr         = "TANYA_REDIS_ADDR"
	EnvDebug             = "TANYA_DEBUG"
)

// LoadEnvFiles loads variables from the given .env files into the process environment.
// Missing files are skipped; variables already set are not overwritten.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with TANYA_* environment variables that are set.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv(EnvEmbeddingProvider); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv(EnvKnowledgePath); v != "" {
		cfg.Knowledge.Path = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Embedding.RedisAddr = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q", EnvDebug, v)
		}
		cfg.Debug = debug
	}
	return nil
}
