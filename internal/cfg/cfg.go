// Package cfg loads engine configuration from a YAML file with environment
// variable overrides. A missing config file falls back to environment
// variables with sane defaults, so the binaries run unconfigured in
// development.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	DataPath       string
	DatasetPath    string
	DatasetURL     string
	DatasetTimeout time.Duration
	MetricsPort    int
	LogLevel       string

	MinTrainingRows  int
	MinBucketSamples int
	MinSectorSamples int
	ProjectionDims   int
	MaxClusters      int
	MinClusterRows   int
	HoldoutRatio     float64
}

type ConfigFile struct {
	Engine struct {
		MinTrainingRows  int     `yaml:"minTrainingRows"`
		MinBucketSamples int     `yaml:"minBucketSamples"`
		MinSectorSamples int     `yaml:"minSectorSamples"`
		ProjectionDims   int     `yaml:"projectionDims"`
		MaxClusters      int     `yaml:"maxClusters"`
		MinClusterRows   int     `yaml:"minClusterRows"`
		HoldoutRatio     float64 `yaml:"holdoutRatio"`
	} `yaml:"engine"`

	Dataset struct {
		Path    string `yaml:"path"`
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"dataset"`

	System struct {
		DataPath    string `yaml:"dataPath"`
		MetricsPort int    `yaml:"metricsPort"`
		LogLevel    string `yaml:"logLevel"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	timeout, err := time.ParseDuration(config.Dataset.Timeout)
	if err != nil {
		timeout = 10 * time.Second
	}

	settings := Settings{
		DataPath:       getEnvOrDefault("DATA_PATH", config.System.DataPath),
		DatasetPath:    getEnvOrDefault("DATASET_PATH", config.Dataset.Path),
		DatasetURL:     getEnvOrDefault("DATASET_URL", config.Dataset.URL),
		DatasetTimeout: timeout,
		MetricsPort:    getIntFromEnvOrConfig("METRICS_PORT", config.System.MetricsPort, 9090),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", defaultString(config.System.LogLevel, "info")),

		MinTrainingRows:  getIntFromEnvOrConfig("MIN_TRAINING_ROWS", config.Engine.MinTrainingRows, 100),
		MinBucketSamples: getIntFromEnvOrConfig("MIN_BUCKET_SAMPLES", config.Engine.MinBucketSamples, 100),
		MinSectorSamples: getIntFromEnvOrConfig("MIN_SECTOR_SAMPLES", config.Engine.MinSectorSamples, 100),
		ProjectionDims:   getIntFromEnvOrConfig("PROJECTION_DIMS", config.Engine.ProjectionDims, 10),
		MaxClusters:      getIntFromEnvOrConfig("MAX_CLUSTERS", config.Engine.MaxClusters, 5),
		MinClusterRows:   getIntFromEnvOrConfig("MIN_CLUSTER_ROWS", config.Engine.MinClusterRows, 10),
		HoldoutRatio:     getFloatFromEnvOrConfig("HOLDOUT_RATIO", config.Engine.HoldoutRatio, 0.2),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		DataPath:       os.Getenv("DATA_PATH"), // optional
		DatasetPath:    os.Getenv("DATASET_PATH"),
		DatasetURL:     os.Getenv("DATASET_URL"),
		DatasetTimeout: getDurationOrDefault("DATASET_TIMEOUT", 10*time.Second),
		MetricsPort:    getIntOrDefault("METRICS_PORT", 9090),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),

		MinTrainingRows:  getIntOrDefault("MIN_TRAINING_ROWS", 100),
		MinBucketSamples: getIntOrDefault("MIN_BUCKET_SAMPLES", 100),
		MinSectorSamples: getIntOrDefault("MIN_SECTOR_SAMPLES", 100),
		ProjectionDims:   getIntOrDefault("PROJECTION_DIMS", 10),
		MaxClusters:      getIntOrDefault("MAX_CLUSTERS", 5),
		MinClusterRows:   getIntOrDefault("MIN_CLUSTER_ROWS", 10),
		HoldoutRatio:     getFloatOrDefault("HOLDOUT_RATIO", 0.2),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs range validation of configuration values.
func validateSettings(s *Settings) error {
	if s.MetricsPort < 1024 || s.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", s.MetricsPort)
	}
	if s.MinTrainingRows < 10 || s.MinTrainingRows > 1_000_000 {
		return fmt.Errorf("min training rows must be between 10 and 1000000, got %d", s.MinTrainingRows)
	}
	if s.MinBucketSamples < 1 || s.MinBucketSamples > 100_000 {
		return fmt.Errorf("min bucket samples must be between 1 and 100000, got %d", s.MinBucketSamples)
	}
	if s.MinSectorSamples < 1 || s.MinSectorSamples > 100_000 {
		return fmt.Errorf("min sector samples must be between 1 and 100000, got %d", s.MinSectorSamples)
	}
	if s.ProjectionDims < 1 || s.ProjectionDims > 45 {
		return fmt.Errorf("projection dims must be between 1 and 45, got %d", s.ProjectionDims)
	}
	if s.MaxClusters < 1 || s.MaxClusters > 50 {
		return fmt.Errorf("max clusters must be between 1 and 50, got %d", s.MaxClusters)
	}
	if s.MinClusterRows < 2 || s.MinClusterRows > 10_000 {
		return fmt.Errorf("min cluster rows must be between 2 and 10000, got %d", s.MinClusterRows)
	}
	if s.HoldoutRatio < 0 || s.HoldoutRatio >= 1 {
		return fmt.Errorf("holdout ratio must be in [0, 1), got %f", s.HoldoutRatio)
	}
	if s.DatasetTimeout < time.Second || s.DatasetTimeout > 5*time.Minute {
		return fmt.Errorf("dataset timeout must be between 1s and 5m, got %v", s.DatasetTimeout)
	}
	return nil
}
