package handler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/multierr"

	"github.com/philipp01105/applog/core"
	"github.com/philipp01105/applog/formatter"
)

// ErrClosed is returned when writing to a handler after Close.
var ErrClosed = errors.New("handler: closed")

// FileHandler writes log entries to a file and rotates it by size.
// Rotated files are numbered: name.1 is the most recent backup and
// name.N the oldest, with N never exceeding MaxBackups.
type FileHandler struct {
	filename    string
	file        *os.File
	formatter   formatter.Formatter
	mu          sync.Mutex
	maxSize     int64
	maxBackups  int
	currentSize int64
	metrics     *Metrics
	closed      bool
}

// FileConfig holds configuration for file handler
type FileConfig struct {
	// Filename is the path to the log file
	Filename string
	// Formatter to use (default: LineFormatter)
	Formatter formatter.Formatter
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the number of rotated files to retain (0 = truncate on rotation)
	MaxBackups int
	// Metrics receives write and rotation counts (optional)
	Metrics *Metrics
}

// NewFileHandler creates a new file handler, creating parent directories as needed
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewLineFormatter(formatter.Config{})
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := openLogFile(cfg.Filename, false)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("stat %s: %w", cfg.Filename, err), file.Close())
	}

	return &FileHandler{
		filename:    cfg.Filename,
		file:        file,
		formatter:   cfg.Formatter,
		maxSize:     cfg.MaxSize,
		maxBackups:  cfg.MaxBackups,
		currentSize: info.Size(),
		metrics:     cfg.Metrics,
	}, nil
}

func openLogFile(name string, truncate bool) (*os.File, error) {
	flag := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flag |= os.O_TRUNC
	}
	f, err := os.OpenFile(name, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// Filename returns the path of the active log file
func (h *FileHandler) Filename() string {
	return h.filename
}

// Handle formats and appends an entry, rotating first if the entry would
// push the active file past MaxSize.
func (h *FileHandler) Handle(entry *core.Entry) error {
	data, err := h.formatter.Format(entry)
	if err != nil {
		h.metrics.failed("file")
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}

	if h.file == nil {
		if err := h.reopen(); err != nil {
			h.metrics.failed("file")
			return err
		}
	}

	if h.shouldRotate(len(data)) {
		if err := h.rotate(); err != nil {
			h.metrics.failed("file")
			return err
		}
	}

	n, err := h.file.Write(data)
	h.currentSize += int64(n)
	if err != nil {
		h.metrics.failed("file")
		return err
	}
	h.metrics.written("file")
	return nil
}

// shouldRotate is called with h.mu held. A record larger than MaxSize
// still lands in a fresh file rather than rotating forever.
func (h *FileHandler) shouldRotate(next int) bool {
	return h.maxSize > 0 && h.currentSize > 0 && h.currentSize+int64(next) > h.maxSize
}

func (h *FileHandler) backupName(i int) string {
	return h.filename + "." + strconv.Itoa(i)
}

// rotate shifts name.i to name.i+1, moves the active file to name.1
// and reopens an empty active file. Called with h.mu held.
func (h *FileHandler) rotate() error {
	err := multierr.Append(h.file.Sync(), h.file.Close())
	h.file = nil
	if err != nil {
		return fmt.Errorf("close before rotation: %w", err)
	}

	if h.maxBackups > 0 {
		for i := h.maxBackups - 1; i >= 1; i-- {
			src := h.backupName(i)
			if _, err := os.Stat(src); err != nil {
				continue
			}
			if err := os.Rename(src, h.backupName(i+1)); err != nil {
				return h.reopenAfter(err)
			}
		}
		if err := os.Rename(h.filename, h.backupName(1)); err != nil {
			return h.reopenAfter(err)
		}
	}

	file, err := openLogFile(h.filename, h.maxBackups == 0)
	if err != nil {
		return fmt.Errorf("rotation failed: %w", err)
	}

	h.file = file
	h.currentSize = 0
	h.metrics.rotated()
	return nil
}

// reopenAfter restores a writable active file after a failed rename.
func (h *FileHandler) reopenAfter(renameErr error) error {
	if err := h.reopen(); err != nil {
		return fmt.Errorf("rotation failed: %v, reopen failed: %w", renameErr, err)
	}
	return fmt.Errorf("rotation failed: %w", renameErr)
}

// reopen appends to the active file again and resyncs currentSize.
// On failure h.file is nil and the next Handle retries.
func (h *FileHandler) reopen() error {
	h.file = nil
	file, err := openLogFile(h.filename, false)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		return multierr.Append(fmt.Errorf("stat %s: %w", h.filename, err), file.Close())
	}
	h.file = file
	h.currentSize = info.Size()
	return nil
}

// Close syncs and closes the active file
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	if h.file == nil {
		return nil
	}
	return multierr.Append(h.file.Sync(), h.file.Close())
}
