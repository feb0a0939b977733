package configs

// Config holds all configuration for the application.
type Config struct {
	Analyzer AnalyzerConfig `mapstructure:"log_analyzer" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
}

// AnalyzerConfig holds the report run configuration ([log_analyzer] section).
type AnalyzerConfig struct {
	ReportSize      int     `mapstructure:"report_size" validate:"min=0"`
	ReportDir       string  `mapstructure:"report_dir" validate:"required"`
	LogDir          string  `mapstructure:"log_dir" validate:"required"`
	Template        string  `mapstructure:"template" validate:"required"`
	ErrorsThreshold float64 `mapstructure:"errors_threshold" validate:"min=0,max=100"` // percent
	LogFile         string  `mapstructure:"log_file"`                                  // empty means stdout
	TimestampDir    string  `mapstructure:"timestamp_dir" validate:"required"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required"`
}

// MetricsConfig holds run metrics export configuration.
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"` // empty disables the export
}

// ServerConfig holds report server configuration.
type ServerConfig struct {
	Port              int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeout int `mapstructure:"read_header_timeout" validate:"required,min=1"` // seconds
	ReadTimeout       int `mapstructure:"read_timeout" validate:"required,min=1"`        // seconds (headers+body)
	WriteTimeout      int `mapstructure:"write_timeout" validate:"required,min=1"`       // seconds (response)
	IdleTimeout       int `mapstructure:"idle_timeout" validate:"required,min=1"`        // seconds (keep-alive)
}
