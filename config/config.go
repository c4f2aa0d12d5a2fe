package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/s0up4200/surveyarr/qualtrics"
)

// EnvPrefix is prepended to every environment override, e.g. QUALTRICS_API_TOKEN
const EnvPrefix = "QUALTRICS"

// Load loads the configuration from file. With an empty path the standard
// locations are searched and a missing file is not an error, so the whole
// configuration can come from the environment.
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".surveyarr"))
		}

		// Check /etc
		v.AddConfigPath("/etc/surveyarr/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && configPath == "":
		case errors.As(err, &notFound):
			return nil, fmt.Errorf("config file not found: %w", err)
		default:
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	return decode(v)
}

// FromMap builds a configuration from an in-memory mapping, with the same
// defaults, environment overrides and validation as Load.
func FromMap(values map[string]any) (*Config, error) {
	v := newViper()
	if err := v.MergeConfigMap(values); err != nil {
		return nil, fmt.Errorf("error reading config map: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without a default are only seen by Unmarshal when bound
	for _, key := range []string{"api_token", "data_center", "default_survey_owner", "default_library_owner"} {
		_ = v.BindEnv(key)
	}

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Export defaults
	v.SetDefault("export.poll_interval", qualtrics.DefaultPollInterval)
	v.SetDefault("export.timeout", 30*time.Minute)
	v.SetDefault("export.concurrency", 4)
	v.SetDefault("export.format", qualtrics.FormatCSV)
	v.SetDefault("export.output_dir", ".")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q validation (value %v)", configKey(fe.Namespace()), fe.ActualTag(), fe.Value())
		}
		return err
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

var configKeys = map[string]string{
	"Config.DataCenter":          "data_center",
	"Config.Export.PollInterval": "export.poll_interval",
	"Config.Export.Timeout":      "export.timeout",
	"Config.Export.Concurrency":  "export.concurrency",
	"Config.Export.Format":       "export.format",
}

func configKey(namespace string) string {
	if key, ok := configKeys[namespace]; ok {
		return key
	}
	return namespace
}

// Qualtrics converts the configuration into client settings using token.
func (c *Config) Qualtrics(token string) qualtrics.Config {
	return qualtrics.Config{
		DataCenter:          c.DataCenter,
		APIToken:            token,
		DefaultSurveyOwner:  c.DefaultSurveyOwner,
		DefaultLibraryOwner: c.DefaultLibraryOwner,
	}
}
