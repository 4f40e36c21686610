package formatter

import (
	"bytes"
	"strconv"

	"github.com/philipp01105/applog/core"
)

// LineFormatter renders one entry per line for log files:
//
//	[2026-10-18 14:03:07,512] |  WARNING | {/srv/app/routes.go:88} | disk almost full
//
// Structured fields follow the message as key=value pairs.
type LineFormatter struct {
	Config
}

// NewLineFormatter creates a new single-line formatter
func NewLineFormatter(cfg Config) *LineFormatter {
	return &LineFormatter{Config: cfg.withDefaults()}
}

// Format formats an entry as a single line
func (f *LineFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	f.formatToBuffer(entry, buf)
	return finish(buf), nil
}

func (f *LineFormatter) formatToBuffer(entry *core.Entry, buf *bytes.Buffer) {
	buf.WriteByte('[')
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteString("] |  ")
	buf.WriteString(entry.Level.String())
	buf.WriteString(" | {")
	if entry.Caller.Defined {
		buf.WriteString(entry.Caller.File)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(entry.Caller.Line))
	} else {
		buf.WriteString("?:0")
	}
	buf.WriteString("} | ")
	buf.WriteString(entry.Message)
	writeFields(buf, entry.Fields, ' ')
	buf.WriteByte('\n')
}
