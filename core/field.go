package core

import (
	"fmt"
	"strconv"
	"time"
)

// FieldType tells which member of a Field holds its value.
type FieldType uint8

const (
	StringType FieldType = iota
	IntType
	Float64Type
	BoolType
	TimeType
	DurationType
	ErrorType
	AnyType
)

// Field is a key-value pair attached to a record. Scalars are stored
// unboxed so that adapters (slog, logrus, zap) can convert them without
// reflection.
type Field struct {
	Key     string
	Type    FieldType
	Int64   int64
	Float64 float64
	Str     string
	Any     interface{}
}

func String(key, val string) Field {
	return Field{Key: key, Type: StringType, Str: val}
}

func Int(key string, val int64) Field {
	return Field{Key: key, Type: IntType, Int64: val}
}

func Float64(key string, val float64) Field {
	return Field{Key: key, Type: Float64Type, Float64: val}
}

func Bool(key string, val bool) Field {
	f := Field{Key: key, Type: BoolType}
	if val {
		f.Int64 = 1
	}
	return f
}

func Time(key string, val time.Time) Field {
	return Field{Key: key, Type: TimeType, Int64: val.UnixNano()}
}

func Duration(key string, val time.Duration) Field {
	return Field{Key: key, Type: DurationType, Int64: int64(val)}
}

// Error keeps only the message; a nil err yields an empty value.
func Error(key string, err error) Field {
	f := Field{Key: key, Type: ErrorType}
	if err != nil {
		f.Str = err.Error()
	}
	return f
}

func Any(key string, val interface{}) Field {
	return Field{Key: key, Type: AnyType, Any: val}
}

// FieldOf picks the narrowest field type for a dynamically typed value,
// as found in logrus.Fields or a slog.KindAny attribute.
func FieldOf(key string, v interface{}) Field {
	switch val := v.(type) {
	case string:
		return String(key, val)
	case int:
		return Int(key, int64(val))
	case int32:
		return Int(key, int64(val))
	case int64:
		return Int(key, val)
	case uint32:
		return Int(key, int64(val))
	case float32:
		return Float64(key, float64(val))
	case float64:
		return Float64(key, val)
	case bool:
		return Bool(key, val)
	case time.Time:
		return Time(key, val)
	case time.Duration:
		return Duration(key, val)
	case error:
		return Error(key, val)
	case fmt.Stringer:
		return String(key, val.String())
	default:
		return Any(key, v)
	}
}

// StringValue renders the value as it appears after "key=" in the log
// file and in the mail body.
func (f Field) StringValue() string {
	switch f.Type {
	case StringType, ErrorType:
		return f.Str
	case IntType:
		return strconv.FormatInt(f.Int64, 10)
	case Float64Type:
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	case BoolType:
		return strconv.FormatBool(f.Int64 == 1)
	case TimeType:
		return time.Unix(0, f.Int64).Format(time.RFC3339)
	case DurationType:
		return time.Duration(f.Int64).String()
	case AnyType:
		return fmt.Sprintf("%v", f.Any)
	default:
		return ""
	}
}
