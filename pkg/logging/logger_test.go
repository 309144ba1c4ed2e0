/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Tests for logger configuration validation, session file creation,
formatter output, and old-log cleanup.
*/

package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/aria-state-mapper/pkg/logging"
)

func validConfig(dir string) *logging.LoggerConfig {
	return &logging.LoggerConfig{
		Level:     logging.LogLevelInfo,
		Format:    logging.LogFormatText,
		OutputDir: dir,
		MaxFiles:  5,
		Timestamp: true,
	}
}

// TestLoggerConfigValidate tests acceptance of a complete config
func TestLoggerConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig(t.TempDir()).Validate())
}

// TestLoggerConfigValidateRejectsBadValues tests each invalid field
func TestLoggerConfigValidateRejectsBadValues(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.OutputDir = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t.TempDir())
	cfg.MaxFiles = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t.TempDir())
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t.TempDir())
	cfg.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

// TestNewLoggerCreatesSessionFile tests that a session log file appears in the
// output directory
func TestNewLoggerCreatesSessionFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.NewLogger(validConfig(dir))
	require.NoError(t, err)
	defer logger.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "aria-mapper_*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	logger.LogStateDiscovered("V_DASHBOARD_LOADED", "dashboard", 1)
	logger.LogTransition("V_LOGIN_FORM_EMPTY", "V_DASHBOARD_LOADED", "submit_login", false)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "V_DASHBOARD_LOADED")
	assert.Contains(t, string(data), "submit_login")
}

// TestNewLoggerRejectsInvalidConfig tests the validation gate in NewLogger
func TestNewLoggerRejectsInvalidConfig(t *testing.T) {
	_, err := logging.NewLogger(&logging.LoggerConfig{})
	assert.Error(t, err)
}

// TestMapperFormatter tests the discovery-specific formatter
func TestMapperFormatter(t *testing.T) {
	formatter := &logging.MapperFormatter{
		CustomFormatter: logging.CustomFormatter{
			Timestamp: false,
			Caller:    false,
			Colors:    false,
		},
	}

	testCases := []struct {
		message string
		prefix  string
	}{
		{"State discovered", "STATE"},
		{"Transition recorded", "EDGE"},
		{"Conditional transition detected", "COND"},
		{"Seed verified", "SEED"},
		{"Exploring state", "EXPLORE"},
		{"Login form located", "LOGIN"},
		{"Replaying path", "REPLAY"},
		{"Random message", ""},
	}

	for _, tc := range testCases {
		entry := &logrus.Entry{
			Logger:  logrus.New(),
			Level:   logrus.InfoLevel,
			Time:    time.Now(),
			Message: tc.message,
		}
		out, err := formatter.Format(entry)
		require.NoError(t, err)
		line := string(out)
		if tc.prefix != "" {
			assert.Contains(t, line, "["+tc.prefix+"]")
		} else {
			assert.NotContains(t, line, "[")
		}
		assert.Contains(t, line, tc.message)
	}
}

// TestMapperFormatterFields tests discovery field formatting
func TestMapperFormatterFields(t *testing.T) {
	formatter := &logging.MapperFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Time:    time.Now(),
		Message: "State discovered",
		Data: logrus.Fields{
			"similarity": 0.84999,
			"state_id":   strings.Repeat("V_LONG_STATE_NAME_", 3),
		},
	}

	out, err := formatter.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.Contains(t, line, "similarity=0.850")
	assert.Contains(t, line, "...")
}

// TestCleanupOldLogs tests that the log manager prunes beyond max files
func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "aria-mapper_2026-01-0"+string(rune('1'+i))+"_00-00-00.log")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0644))
		// Distinct mtimes so pruning order is deterministic.
		stamp := time.Now().Add(time.Duration(i-5) * time.Hour)
		require.NoError(t, os.Chtimes(name, stamp, stamp))
	}

	require.NoError(t, logging.NewLogManager(dir, 2).CleanupOldLogs())

	matches, err := filepath.Glob(filepath.Join(dir, "aria-mapper_*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
