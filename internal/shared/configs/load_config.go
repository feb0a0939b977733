package configs

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"log-analyzer/internal/shared/validators"

	"github.com/spf13/viper"
)

const (
	sectionAnalyzer = "log_analyzer"
	envPrefix       = "LOG_ANALYZER"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "log_analyzer.cfg"

// LoadConfig reads configuration from file, merges it over the defaults and validates it.
var LoadConfig = func(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType(configType(configPath))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read from file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
	}
	if !v.InConfig(sectionAnalyzer) {
		return nil, fmt.Errorf("wrong format of config file %q: missing %q section", configPath, sectionAnalyzer)
	}

	// Unmarshal into Config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	validate := validators.New()
	if err := validate.Struct(&cfg); err != nil {
		var validationErrors []string
		if ve, ok := err.(validators.ValidationErrors); ok {
			for _, e := range ve {
				validationErrors = append(validationErrors, formatValidationError(e))
			}
		}
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(validationErrors, ", "))
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_analyzer.report_size", 10)
	v.SetDefault("log_analyzer.report_dir", "./reports")
	v.SetDefault("log_analyzer.log_dir", "./log")
	v.SetDefault("log_analyzer.template", "report.html")
	v.SetDefault("log_analyzer.errors_threshold", 25)
	v.SetDefault("log_analyzer.log_file", "")
	v.SetDefault("log_analyzer.timestamp_dir", ".")

	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.textfile_path", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout", 5)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 60)
}

// configType infers the viper config type from the file extension.
// Unknown extensions (e.g. the historical ".cfg") are read as INI.
func configType(configPath string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(configPath)), ".")
	if slices.Contains(viper.SupportedExts, ext) {
		return ext
	}
	return "ini"
}

// formatValidationError formats a single validation error into a readable string.
func formatValidationError(e validators.FieldError) string {
	field := e.Field()
	tag := e.Tag()

	// Build field path from config keys (e.g., "Config.server.port" -> "server.port")
	if _, path, ok := strings.Cut(e.Namespace(), "."); ok {
		field = path
	}

	var msg string
	switch tag {
	case "required":
		msg = fmt.Sprintf("%s (required)", field)
	case "min":
		msg = fmt.Sprintf("%s (min=%s)", field, e.Param())
	case "max":
		msg = fmt.Sprintf("%s (max=%s)", field, e.Param())
	case "oneof":
		msg = fmt.Sprintf("%s (oneof=%s)", field, e.Param())
	default:
		msg = fmt.Sprintf("%s (%s)", field, tag)
	}

	return msg
}
