package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name          string
		loggingConfig string
		expectedLevel zapcore.Level
		expectError   bool
	}{
		{
			name: "info level json encoding",
			loggingConfig: `
logging:
  level: info
  development: false
  encoding: json
  outputPaths:
    - stdout
`,
			expectedLevel: zapcore.InfoLevel,
		},
		{
			name: "debug level console encoding",
			loggingConfig: `
logging:
  level: debug
  development: true
  encoding: console
  outputPaths:
    - stdout
`,
			expectedLevel: zapcore.DebugLevel,
		},
		{
			name: "unknown encoding falls back to json",
			loggingConfig: `
logging:
  level: warn
  encoding: xml
`,
			expectedLevel: zapcore.WarnLevel,
		},
		{
			name: "invalid level",
			loggingConfig: `
logging:
  level: invalid
  development: false
  encoding: json
  outputPaths:
    - stdout
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := config.NewYAML(
				config.Source(strings.NewReader(tt.loggingConfig)),
			)
			require.NoError(t, err)

			level, err := NewAtomicLevel(provider)
			if tt.expectError {
				assert.Error(t, err, "Expected error for invalid config")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedLevel, level.Level())

			lc := fxtest.NewLifecycle(t)
			sugared, err := NewSugaredLogger(lc, provider, level)
			require.NoError(t, err)
			logger := NewLogger(sugared)
			require.NotNil(t, logger)

			logger.Info("test message")
			assert.Equal(t, tt.expectedLevel.Enabled(zapcore.DebugLevel), logger.Core().Enabled(zapcore.DebugLevel))
			lc.RequireStart().RequireStop()
		})
	}
}

func TestLoggerWritesToOutputPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sqlfriend.log")
	provider, err := config.NewYAML(config.Source(strings.NewReader(`
logging:
  level: info
  encoding: json
  outputPaths:
    - ` + out + `
`)))
	require.NoError(t, err)

	level, err := NewAtomicLevel(provider)
	require.NoError(t, err)
	lc := fxtest.NewLifecycle(t)
	logger, err := NewSugaredLogger(lc, provider, level)
	require.NoError(t, err)

	logger.Debugw("not written")
	level.SetLevel(zapcore.DebugLevel)
	logger.Debugw("written after level change", "session", 1)
	lc.RequireStart().RequireStop()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "not written")
	assert.Contains(t, string(data), "written after level change")
}

func TestLoggingConfig_Populate(t *testing.T) {
	configYAML := strings.NewReader(`
logging:
  level: warn
  development: true
  encoding: console
  outputPaths:
    - stdout
    - stderr
`)

	provider, err := config.NewYAML(config.Source(configYAML))
	require.NoError(t, err)

	loggingConfig, err := loadLoggingConfig(provider)
	require.NoError(t, err)

	assert.Equal(t, "warn", loggingConfig.Level)
	assert.True(t, loggingConfig.Development)
	assert.Equal(t, "console", loggingConfig.Encoding)
	assert.Equal(t, []string{"stdout", "stderr"}, loggingConfig.OutputPaths)
}
