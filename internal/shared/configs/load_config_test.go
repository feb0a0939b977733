package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes content into a temp file named name and returns its path.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidYAMLConfig(t *testing.T) {
	path := writeConfig(t, "config.yml", `log_analyzer:
  report_size: 100
  report_dir: /var/reports
  log_dir: /var/log/nginx
  template: /etc/log_analyzer/report.html
  errors_threshold: 10.5
  log_file: /var/log/log_analyzer.log
  timestamp_dir: /var/run
server:
  port: 9090
  read_header_timeout: 5
  read_timeout: 10
  write_timeout: 10
  idle_timeout: 60
log:
  level: debug
metrics:
  textfile_path: /var/lib/node_exporter/log_analyzer.prom
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, AnalyzerConfig{
		ReportSize:      100,
		ReportDir:       "/var/reports",
		LogDir:          "/var/log/nginx",
		Template:        "/etc/log_analyzer/report.html",
		ErrorsThreshold: 10.5,
		LogFile:         "/var/log/log_analyzer.log",
		TimestampDir:    "/var/run",
	}, cfg.Analyzer)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/lib/node_exporter/log_analyzer.prom", cfg.Metrics.TextfilePath)
}

func TestLoadConfig_INIConfigMergedOverDefaults(t *testing.T) {
	path := writeConfig(t, "log_analyzer.cfg", `[log_analyzer]
REPORT_SIZE = 50
LOG_DIR = /var/log/nginx
ERRORS_THRESHOLD = 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// values from the file
	assert.Equal(t, 50, cfg.Analyzer.ReportSize)
	assert.Equal(t, "/var/log/nginx", cfg.Analyzer.LogDir)
	assert.Equal(t, 5.0, cfg.Analyzer.ErrorsThreshold)

	// defaults
	assert.Equal(t, "./reports", cfg.Analyzer.ReportDir)
	assert.Equal(t, "report.html", cfg.Analyzer.Template)
	assert.Equal(t, "", cfg.Analyzer.LogFile)
	assert.Equal(t, ".", cfg.Analyzer.TimestampDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Metrics.TextfilePath)
	assert.Equal(t, ServerConfig{Port: 8080, ReadHeaderTimeout: 5, ReadTimeout: 10, WriteTimeout: 10, IdleTimeout: 60}, cfg.Server)
}

func TestLoadConfig_EmptySectionUsesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "log_analyzer: {}\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Analyzer.ReportSize)
	assert.Equal(t, 25.0, cfg.Analyzer.ErrorsThreshold)
	assert.Equal(t, "./log", cfg.Analyzer.LogDir)
}

func TestLoadConfig_MissingAnalyzerSection(t *testing.T) {
	path := writeConfig(t, "log_analyzer.cfg", `[server]
port = 8080
`)

	cfg, err := LoadConfig(path)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "log_analyzer" section`)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.cfg"))
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := writeConfig(t, "config.json", `{"log_analyzer": `)

	cfg, err := LoadConfig(path)
	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		expectedParts []string
	}{
		{
			name: "errors threshold above 100 percent",
			content: `log_analyzer:
  errors_threshold: 150
`,
			expectedParts: []string{"config validation failed", "log_analyzer.errors_threshold (max=100)"},
		},
		{
			name: "negative report size",
			content: `log_analyzer:
  report_size: -1
`,
			expectedParts: []string{"log_analyzer.report_size (min=0)"},
		},
		{
			name: "empty report dir",
			content: `log_analyzer:
  report_dir: ""
`,
			expectedParts: []string{"log_analyzer.report_dir (required)"},
		},
		{
			name: "port out of range",
			content: `log_analyzer: {}
server:
  port: 70000
`,
			expectedParts: []string{"server.port (max=65535)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.yml", tt.content)

			cfg, err := LoadConfig(path)
			assert.Nil(t, cfg)
			require.Error(t, err)
			for _, part := range tt.expectedParts {
				assert.Contains(t, err.Error(), part)
			}
		})
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("LOG_ANALYZER_LOG_ANALYZER_REPORT_SIZE", "3")
	t.Setenv("LOG_ANALYZER_LOG_LEVEL", "warn")
	path := writeConfig(t, "log_analyzer.cfg", `[log_analyzer]
REPORT_SIZE = 50
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Analyzer.ReportSize)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestConfigType(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "configs/configs.yml", expected: "yml"},
		{path: "config.YAML", expected: "yaml"},
		{path: "config.json", expected: "json"},
		{path: "config.toml", expected: "toml"},
		{path: "config.ini", expected: "ini"},
		{path: "log_analyzer.cfg", expected: "ini"},
		{path: "log_analyzer", expected: "ini"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, configType(tt.path))
		})
	}
}
