package handler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/applog/core"
	"github.com/philipp01105/applog/formatter"
)

// rawFormatter writes the message verbatim so sizes are predictable.
type rawFormatter struct{}

func (rawFormatter) Format(e *core.Entry) ([]byte, error) {
	return []byte(e.Message), nil
}

func readFile(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	return string(b)
}

func TestFileHandler_WritesLines(t *testing.T) {
	name := filepath.Join(t.TempDir(), "logs", "app.log")
	h, err := NewFileHandler(FileConfig{Filename: name})
	require.NoError(t, err)

	require.NoError(t, h.Handle(newEntry(core.WarnLevel, "low disk")))
	require.NoError(t, h.Close())

	out := readFile(t, name)
	assert.Contains(t, out, "|  WARNING | {?:0} | low disk\n")
	assert.Equal(t, name, h.Filename())
}

func TestFileHandler_AppendsToExistingFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(name, []byte("0123456789"), 0644))

	h, err := NewFileHandler(FileConfig{Filename: name, Formatter: rawFormatter{}, MaxSize: 12, MaxBackups: 1})
	require.NoError(t, err)
	defer h.Close()

	// 10 existing bytes + 5 exceeds the cap, so the old content rotates out
	require.NoError(t, h.Handle(newEntry(core.InfoLevel, "abcde")))

	assert.Equal(t, "abcde", readFile(t, name))
	assert.Equal(t, "0123456789", readFile(t, name+".1"))
}

func TestFileHandler_NumberedRotation(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "app.log")
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	h, err := NewFileHandler(FileConfig{
		Filename:   name,
		Formatter:  rawFormatter{},
		MaxSize:    10,
		MaxBackups: 3,
		Metrics:    metrics,
	})
	require.NoError(t, err)
	defer h.Close()

	// each record fills a file exactly, so every write after the first rotates
	for _, msg := range []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc", "dddddddddd", "eeeeeeeeee", "ffffffffff"} {
		require.NoError(t, h.Handle(newEntry(core.ErrorLevel, msg)))
	}

	assert.Equal(t, "ffffffffff", readFile(t, name))
	assert.Equal(t, "eeeeeeeeee", readFile(t, name+".1"))
	assert.Equal(t, "dddddddddd", readFile(t, name+".2"))
	assert.Equal(t, "cccccccccc", readFile(t, name+".3"))
	assert.NoFileExists(t, name+".4")

	backups, err := filepath.Glob(name + ".*")
	require.NoError(t, err)
	assert.Len(t, backups, 3)

	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.Rotations))
	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.Written.WithLabelValues("file")))
}

func TestFileHandler_BackupCountNeverExceedsMax(t *testing.T) {
	name := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFileHandler(FileConfig{
		Filename:   name,
		Formatter:  formatter.NewLineFormatter(formatter.Config{}),
		MaxSize:    200,
		MaxBackups: 4,
	})
	require.NoError(t, err)
	defer h.Close()

	for i := 0; i < 200; i++ {
		require.NoError(t, h.Handle(newEntry(core.WarnLevel, strings.Repeat("x", 40))))

		backups, err := filepath.Glob(name + ".*")
		require.NoError(t, err)
		require.LessOrEqual(t, len(backups), 4)
	}

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(200))
}

func TestFileHandler_NoBackupsTruncates(t *testing.T) {
	name := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFileHandler(FileConfig{Filename: name, Formatter: rawFormatter{}, MaxSize: 4})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Handle(newEntry(core.InfoLevel, "1234")))
	require.NoError(t, h.Handle(newEntry(core.InfoLevel, "5678")))

	assert.Equal(t, "5678", readFile(t, name))
	assert.NoFileExists(t, name+".1")
}

func TestFileHandler_ClosedRejectsWrites(t *testing.T) {
	h, err := NewFileHandler(FileConfig{Filename: filepath.Join(t.TempDir(), "app.log")})
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.ErrorIs(t, h.Handle(newEntry(core.ErrorLevel, "late")), ErrClosed)
}

func TestFileHandler_RequiresFilename(t *testing.T) {
	_, err := NewFileHandler(FileConfig{})
	assert.Error(t, err)
}

func TestFileHandler_RecoversWhenReopenFails(t *testing.T) {
	name := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFileHandler(FileConfig{Filename: name, Formatter: rawFormatter{}, MaxSize: 4})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Handle(newEntry(core.ErrorLevel, "1234")))

	// a directory in place of the log file makes every open fail
	require.NoError(t, os.Remove(name))
	require.NoError(t, os.Mkdir(name, 0755))

	assert.Error(t, h.Handle(newEntry(core.ErrorLevel, "5678")))
	assert.Error(t, h.Handle(newEntry(core.ErrorLevel, "abcd")))

	require.NoError(t, os.Remove(name))
	require.NoError(t, h.Handle(newEntry(core.ErrorLevel, "wxyz")))
	assert.Equal(t, "wxyz", readFile(t, name))

	// size tracking restarted with the new file, so rotation still works
	require.NoError(t, h.Handle(newEntry(core.ErrorLevel, "!")))
	assert.Equal(t, "!", readFile(t, name))
}
