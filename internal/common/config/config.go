package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"env"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ResultsDBPath  string `yaml:"results_db_path"`
	MigrationsPath string `yaml:"migrations_path"`
	ArtifactsDir   string `yaml:"artifacts_dir"`
	Workers        int    `yaml:"workers"`

	Sync SyncConfig `yaml:"sync"`
}

// SyncConfig points at the remote scan artifact API.
type SyncConfig struct {
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Timeout int    `yaml:"timeout"`
	Retries int    `yaml:"retries"`
}

// Load reads the configuration from environment variables. When CONFIG_FILE
// is set the YAML file overrides the environment values it mentions.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		Environment:    getEnv("ENV", "development"),
		ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 10),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		ResultsDBPath:  getEnv("RESULTS_DB_PATH", "data/db/results.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations/001_init_results.sql"),
		ArtifactsDir:   getEnv("ARTIFACTS_DIR", "data/artifacts"),
		Workers:        getEnvAsInt("WORKERS", 0),
		Sync: SyncConfig{
			URL:     getEnv("SYNC_URL", ""),
			Token:   getEnv("SYNC_TOKEN", ""),
			Timeout: getEnvAsInt("SYNC_TIMEOUT", 30),
			Retries: getEnvAsInt("SYNC_RETRIES", 3),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
