package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"tabstat/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port                  string `mapstructure:"port" yaml:"port"`
	GinMode               string `mapstructure:"gin_mode" yaml:"gin_mode"`
	MaxConcurrentAnalyses int    `mapstructure:"max_concurrent_analyses" yaml:"max_concurrent_analyses"`
	MaxUploadMB           int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AnalysisConfig holds the engine tunables
type AnalysisConfig struct {
	SampleSize          int     `mapstructure:"sample_size" yaml:"sample_size"`
	NumericThreshold    float64 `mapstructure:"numeric_threshold" yaml:"numeric_threshold"`
	KMeansMaxIterations int     `mapstructure:"kmeans_max_iterations" yaml:"kmeans_max_iterations"`
	MaxParallelism      int     `mapstructure:"max_parallelism" yaml:"max_parallelism"`
}

// ConfigFileEnv names the variable holding an optional YAML config path
const ConfigFileEnv = "TABSTAT_CONFIG"

// envBindings maps config keys to the environment variables overriding them
var envBindings = map[string]string{
	"server.port":                    "PORT",
	"server.gin_mode":                "GIN_MODE",
	"server.max_concurrent_analyses": "MAX_CONCURRENT_ANALYSES",
	"server.max_upload_mb":           "MAX_UPLOAD_MB",
	"log.level":                      "LOG_LEVEL",
	"analysis.sample_size":           "SAMPLE_SIZE",
	"analysis.numeric_threshold":     "NUMERIC_THRESHOLD",
	"analysis.kmeans_max_iterations": "KMEANS_MAX_ITERATIONS",
	"analysis.max_parallelism":       "MAX_PARALLELISM",
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it.
// Precedence: env > config file > defaults. cfgFile wins over TABSTAT_CONFIG.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", env)
		}
	}

	if cfgFile == "" {
		cfgFile = os.Getenv(ConfigFileEnv)
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to decode configuration")
	}

	config.Log.Level = strings.ToUpper(strings.TrimSpace(config.Log.Level))
	config.Server.GinMode = strings.ToLower(strings.TrimSpace(config.Server.GinMode))

	if err := validateConfig(&config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &config, nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  "8080",
			GinMode:               "release",
			MaxConcurrentAnalyses: 4,
			MaxUploadMB:           32,
		},
		Log: LogConfig{Level: "INFO"},
		Analysis: AnalysisConfig{
			SampleSize:          100,
			NumericThreshold:    0.8,
			KMeansMaxIterations: 50,
			MaxParallelism:      runtime.NumCPU(),
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.gin_mode", d.Server.GinMode)
	v.SetDefault("server.max_concurrent_analyses", d.Server.MaxConcurrentAnalyses)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("analysis.sample_size", d.Analysis.SampleSize)
	v.SetDefault("analysis.numeric_threshold", d.Analysis.NumericThreshold)
	v.SetDefault("analysis.kmeans_max_iterations", d.Analysis.KMeansMaxIterations)
	v.SetDefault("analysis.max_parallelism", d.Analysis.MaxParallelism)
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if config.Server.MaxConcurrentAnalyses < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ANALYSES must be at least 1")
	}
	if config.Server.MaxUploadMB < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be at least 1")
	}
	if config.Analysis.SampleSize < 1 {
		return errors.ConfigInvalid("SAMPLE_SIZE must be at least 1")
	}
	if config.Analysis.NumericThreshold <= 0 || config.Analysis.NumericThreshold >= 1 {
		return errors.ConfigInvalid("NUMERIC_THRESHOLD must be between 0 and 1")
	}
	if config.Analysis.KMeansMaxIterations < 1 {
		return errors.ConfigInvalid("KMEANS_MAX_ITERATIONS must be at least 1")
	}
	if config.Analysis.MaxParallelism < 1 {
		return errors.ConfigInvalid("MAX_PARALLELISM must be at least 1")
	}
	return nil
}
