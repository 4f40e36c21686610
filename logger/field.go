package logger

import "github.com/philipp01105/applog/core"

// Shorthands for the field constructors most call sites need. The full
// set lives in core.

// String creates a string field
func String(key, val string) core.Field { return core.String(key, val) }

// Int creates an integer field
func Int(key string, val int) core.Field { return core.Int(key, int64(val)) }

// Float64 creates a float field
func Float64(key string, val float64) core.Field { return core.Float64(key, val) }

// Err attaches err under the "error" key, which the mail formatter lists
// with the other fields.
func Err(err error) core.Field { return core.Error("error", err) }

// Any creates a field from an arbitrary value, keeping scalar types.
func Any(key string, val interface{}) core.Field { return core.FieldOf(key, val) }
