// Package cfg loads predictor configuration from a YAML file with
// environment-variable overrides, falling back to environment variables
// alone when no config file is given.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	APIPort        int
	MetricsPort    int
	AllowedOrigins []string

	DataPath   string
	RawCSVPath string
	DatasetURL string
	ModelPath  string

	RunRateMax  float64
	TestSplit   float64
	Seed        int64
	RESTTimeout time.Duration
}

type ConfigFile struct {
	Server struct {
		APIPort        int      `yaml:"apiPort"`
		MetricsPort    int      `yaml:"metricsPort"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Data struct {
		DataPath   string `yaml:"dataPath"`
		RawCSVPath string `yaml:"rawCSVPath"`
		DatasetURL string `yaml:"datasetURL"`
	} `yaml:"data"`

	ML struct {
		ModelPath  string  `yaml:"modelPath"`
		RunRateMax float64 `yaml:"runRateMax"`
		TestSplit  float64 `yaml:"testSplit"`
		Seed       int64   `yaml:"seed"`
	} `yaml:"ml"`

	System struct {
		RESTTimeout string `yaml:"restTimeout"`
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

	restTimeout, err := time.ParseDuration(config.System.RESTTimeout)
	if err != nil {
		restTimeout = 30 * time.Second
	}

	settings := Settings{
		APIPort:        getIntFromEnvOrConfig("API_PORT", config.Server.APIPort, 5000),
		MetricsPort:    getIntFromEnvOrConfig("METRICS_PORT", config.Server.MetricsPort, 9090),
		AllowedOrigins: getOriginsFromEnvOrConfig(config.Server.AllowedOrigins),
		DataPath:       getEnvOrDefault("DATA_PATH", config.Data.DataPath),
		RawCSVPath:     getEnvOrDefault("RAW_CSV_PATH", config.Data.RawCSVPath),
		DatasetURL:     getEnvOrDefault("DATASET_URL", config.Data.DatasetURL),
		ModelPath:      getEnvOrDefault("MODEL_PATH", config.ML.ModelPath),
		RunRateMax:     getFloatFromEnvOrConfig("RUN_RATE_MAX", config.ML.RunRateMax, 50),
		TestSplit:      getFloatFromEnvOrConfig("TEST_SPLIT", config.ML.TestSplit, 0.2),
		Seed:           getInt64FromEnvOrConfig("SPLIT_SEED", config.ML.Seed, 42),
		RESTTimeout:    restTimeout,
	}
	if settings.ModelPath == "" {
		settings.ModelPath = "model.json"
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		APIPort:        getIntOrDefault("API_PORT", 5000),
		MetricsPort:    getIntOrDefault("METRICS_PORT", 9090),
		AllowedOrigins: splitOrDefault(os.Getenv("ALLOWED_ORIGINS"), defaultOrigins()),
		DataPath:       os.Getenv("DATA_PATH"), // optional
		RawCSVPath:     getEnvOrDefault("RAW_CSV_PATH", "data/IPL.csv"),
		DatasetURL:     os.Getenv("DATASET_URL"), // optional
		ModelPath:      getEnvOrDefault("MODEL_PATH", "model.json"),
		RunRateMax:     getFloatOrDefault("RUN_RATE_MAX", 50),
		TestSplit:      getFloatOrDefault("TEST_SPLIT", 0.2),
		Seed:           getInt64OrDefault("SPLIT_SEED", 42),
		RESTTimeout:    getDurationOrDefault("REST_TIMEOUT", 30*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func defaultOrigins() []string {
	return []string{"http://localhost:5173", "http://localhost:3000"}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
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

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
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

func splitOrDefault(v string, def []string) []string {
	if v == "" {
		return def
	}
	return strings.Split(v, ",")
}

func getOriginsFromEnvOrConfig(configOrigins []string) []string {
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		return strings.Split(env, ",")
	}
	if len(configOrigins) > 0 {
		return configOrigins
	}
	return defaultOrigins()
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

func getInt64FromEnvOrConfig(key string, configValue, defaultValue int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
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

// validateSettings performs validation of configuration values.
func validateSettings(settings *Settings) error {
	if settings.APIPort < 1 || settings.APIPort > 65535 {
		return fmt.Errorf("API port must be between 1 and 65535, got %d", settings.APIPort)
	}
	if settings.MetricsPort < 1 || settings.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1 and 65535, got %d", settings.MetricsPort)
	}
	if settings.APIPort == settings.MetricsPort {
		return fmt.Errorf("API port and metrics port must differ, both are %d", settings.APIPort)
	}
	if settings.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}
	if settings.RunRateMax <= 0 {
		return fmt.Errorf("run rate bound must be positive, got %f", settings.RunRateMax)
	}
	if settings.TestSplit <= 0 || settings.TestSplit >= 1 {
		return fmt.Errorf("test split must be between 0 and 1 exclusive, got %f", settings.TestSplit)
	}
	if settings.RESTTimeout < time.Second || settings.RESTTimeout > 5*time.Minute {
		return fmt.Errorf("REST timeout must be between 1s and 5m, got %v", settings.RESTTimeout)
	}
	return nil
}
