package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	APIToken            string        `mapstructure:"api_token"`
	DataCenter          string        `mapstructure:"data_center" validate:"required,hostname_rfc1123"`
	DefaultSurveyOwner  string        `mapstructure:"default_survey_owner"`
	DefaultLibraryOwner string        `mapstructure:"default_library_owner"`
	Filter              FilterConfig  `mapstructure:"filter"`
	Export              ExportConfig  `mapstructure:"export"`
	Logging             LoggingConfig `mapstructure:"logging"`
}

// FilterConfig contains named listing filters, usable with --filter @name
type FilterConfig map[string]string

// ExportConfig contains response export settings
type ExportConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gte=1s"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0s"`
	Concurrency  int           `mapstructure:"concurrency" validate:"min=1,max=20"`
	Format       string        `mapstructure:"format" validate:"oneof=csv tsv"`
	OutputDir    string        `mapstructure:"output_dir"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
