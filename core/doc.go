// Package core defines the shared types used across applog.
//
// It provides the Level type for severity filtering, the Entry type that
// represents a single log record, and the Field type for structured
// key-value pairs.
//
// Entry objects are pooled via sync.Pool. Callers get an Entry with
// GetEntry and return it with PutEntry once every handler has consumed
// it. All handlers in this module are synchronous, so the logger can
// recycle an entry as soon as Handle returns.
//
// CallerInfo carries the source location shown by the file and mail
// formatters: full path, line, module (file name without extension)
// and fully qualified function name.
package core
