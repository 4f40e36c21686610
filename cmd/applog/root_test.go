package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearMailEnv(t *testing.T) {
	for _, k := range []string{"MAIL_SERVER", "LOG_TO_STDOUT", "ADMINS", "SECRET_KEY"} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	clearMailEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("MAIL_PORT", "2525")

	out, err := run(t, "config", "--profile", "dev")
	require.NoError(t, err)

	assert.Contains(t, out, "env: development")
	assert.Contains(t, out, "debug: true")
	assert.Contains(t, out, "mail_port: 2525")
	assert.NotContains(t, out, "s3cret")
}

func TestConfigCommand_BadProfile(t *testing.T) {
	_, err := run(t, "config", "--profile", "staging")
	assert.Error(t, err)
}

func TestEmitCommand(t *testing.T) {
	for _, api := range []string{"native", "slog", "logrus"} {
		t.Run(api, func(t *testing.T) {
			clearMailEnv(t)
			logFile := filepath.Join(t.TempDir(), "app.log")

			out, err := run(t, "emit", "--api", api, "--level", "warning", "--log-file", logFile, "disk", "almost", "full")
			require.NoError(t, err)
			assert.Contains(t, out, "emitted WARNING record via "+api+" (1 handlers)")

			b, err := os.ReadFile(logFile)
			require.NoError(t, err)
			assert.Contains(t, string(b), "|  WARNING | {")
			assert.Contains(t, string(b), "disk almost full source=applog emit")
		})
	}
}

func TestEmitCommand_BelowThresholdIsNotWritten(t *testing.T) {
	clearMailEnv(t)
	logFile := filepath.Join(t.TempDir(), "app.log")

	_, err := run(t, "emit", "--level", "info", "--log-file", logFile, "hello")
	require.NoError(t, err)

	b, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestEmitCommand_Errors(t *testing.T) {
	clearMailEnv(t)
	logFile := filepath.Join(t.TempDir(), "app.log")

	_, err := run(t, "emit", "--level", "loud", "--log-file", logFile, "x")
	assert.Error(t, err)

	_, err = run(t, "emit", "--api", "zerolog", "--log-file", logFile, "x")
	assert.Error(t, err)

	_, err = run(t, "emit")
	assert.Error(t, err)
}
