package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	// --- Act ---
	cfg, err := NewConfig(Config{WorkflowPath: "wf.hcl"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, DefaultMode, cfg.Mode)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultBackend, cfg.Backend)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultReport, cfg.Report)
}

func TestNewConfig_NormalizesCase(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{WorkflowPath: "wf.hcl", Mode: "PARALLEL", Report: "YAML"})

	require.NoError(t, err)
	assert.Equal(t, "parallel", cfg.Mode)
	assert.Equal(t, "yaml", cfg.Report)
}

func TestNewConfig_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     Config
		errText string
	}{
		{
			name:    "missing workflow",
			cfg:     Config{},
			errText: "workflow is required",
		},
		{
			name:    "unknown mode",
			cfg:     Config{WorkflowPath: "wf.hcl", Mode: "fast"},
			errText: "invalid mode fast: must be one of sequential, parallel",
		},
		{
			name:    "negative workers",
			cfg:     Config{WorkflowPath: "wf.hcl", Workers: -1},
			errText: "invalid workers -1: must be between 1 and 256",
		},
		{
			name:    "unknown backend",
			cfg:     Config{WorkflowPath: "wf.hcl", Backend: "cloud"},
			errText: "invalid backend cloud",
		},
		{
			name:    "unknown report",
			cfg:     Config{WorkflowPath: "wf.hcl", Report: "xml"},
			errText: "invalid report xml",
		},
		{
			name:    "missing env file",
			cfg:     Config{WorkflowPath: "wf.hcl", EnvFile: filepath.Join(os.TempDir(), "contestflow-missing", ".env")},
			errText: "file does not exist",
		},
		{
			name:    "empty var name",
			cfg:     Config{WorkflowPath: "wf.hcl", Vars: map[string]string{"": "x"}},
			errText: "required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewConfig(tc.cfg)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
