// Package formatter defines how log entries are serialized into bytes.
//
// Two formatters ship with the package. LineFormatter produces the
// single-line layout written to rotating log files. MailFormatter
// produces the verbose, multi-line body of an alert email: level,
// location, module, function, time and then the message itself.
//
// Both use a pooled bytes.Buffer and Append-style time formatting.
// Buffers larger than 64 KiB are not returned to the pool so that a
// single oversized record cannot permanently inflate memory usage.
package formatter
