package formatter

import (
	"bytes"
	"strconv"

	"github.com/philipp01105/applog/core"
)

// MailFormatter renders an entry as the plain-text body of an alert email.
type MailFormatter struct {
	Config
}

// NewMailFormatter creates a new multi-line mail body formatter
func NewMailFormatter(cfg Config) *MailFormatter {
	return &MailFormatter{Config: cfg.withDefaults()}
}

// Format formats an entry as an email body
func (f *MailFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	f.formatToBuffer(entry, buf)
	return finish(buf), nil
}

func (f *MailFormatter) formatToBuffer(entry *core.Entry, buf *bytes.Buffer) {
	caller := entry.Caller
	location, module, function := "unknown", "unknown", "unknown"
	if caller.Defined {
		location = caller.File + ":" + strconv.Itoa(caller.Line)
		module = caller.Module
		function = caller.Function
	}

	writeRow(buf, "Message type:", entry.Level.String())
	writeRow(buf, "Location:", location)
	writeRow(buf, "Module:", module)
	writeRow(buf, "Function:", function)
	buf.WriteString(padLabel("Time:"))
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteString("\n\nMessage:\n\n")
	buf.WriteString(entry.Message)
	buf.WriteByte('\n')

	if len(entry.Fields) > 0 {
		buf.WriteString("\nFields:")
		writeFields(buf, entry.Fields, '\n')
		buf.WriteByte('\n')
	}
}

const labelWidth = 20

func padLabel(label string) string {
	if len(label) >= labelWidth {
		return label + " "
	}
	return label + string(bytes.Repeat([]byte{' '}, labelWidth-len(label)))
}

func writeRow(buf *bytes.Buffer, label, value string) {
	buf.WriteString(padLabel(label))
	buf.WriteString(value)
	buf.WriteByte('\n')
}
