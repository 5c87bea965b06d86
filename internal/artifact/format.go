package artifact

import (
	"fmt"
	"time"
)

// Formatter converts a field value into its wire representation.
// The result is used verbatim by the serializer.
type Formatter func(v any) (any, error)

// TimestampLayout is RFC 3339 with microseconds. A zero UTC offset renders
// as "Z".
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatTimestamp renders t in the local time zone.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// FormatEnum returns the symbolic wire name of an enum value.
func FormatEnum(v any) (any, error) {
	e, ok := v.(enumValue)
	if !ok {
		return nil, &SchemaError{
			Code:    ErrCodeUnsupportedType,
			Message: fmt.Sprintf("%T is not an enum", v),
		}
	}
	name, ok := e.wireName()
	if !ok {
		return nil, &SchemaError{
			Code:    ErrCodeInvalidEnum,
			Message: fmt.Sprintf("%T(%v) has no wire name", v, v),
		}
	}
	return name, nil
}

func formatTimestampField(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, &SchemaError{
			Code:    ErrCodeUnsupportedType,
			Message: fmt.Sprintf("%T is not a time.Time", v),
		}
	}
	if t.IsZero() {
		return nil, &SchemaError{Code: ErrCodeMissingField, Message: "timestamp is unset"}
	}
	return FormatTimestamp(t), nil
}

// formatMeasurementValue accepts the measurement scalar union:
// float, int, bool, string or a list of strings.
func formatMeasurementValue(v any) (any, error) {
	switch val := v.(type) {
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	case nil:
		return nil, &SchemaError{Code: ErrCodeMissingField, Message: "measurement value is unset"}
	}
	if s, ok := scalar(v); ok {
		return s, nil
	}
	return nil, &SchemaError{
		Code:    ErrCodeUnsupportedType,
		Message: fmt.Sprintf("measurement value of type %T", v),
	}
}

// formatValidatorValue accepts a scalar or an arbitrarily nested list of
// scalars, as used by IN_SET style validators.
func formatValidatorValue(v any) (any, error) {
	if v == nil {
		return nil, &SchemaError{Code: ErrCodeMissingField, Message: "validator value is unset"}
	}
	if s, ok := scalar(v); ok {
		return s, nil
	}
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case []string:
		items = make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
	case []int:
		items = make([]any, len(val))
		for i, n := range val {
			items[i] = n
		}
	case []float64:
		items = make([]any, len(val))
		for i, f := range val {
			items[i] = f
		}
	default:
		return nil, &SchemaError{
			Code:    ErrCodeUnsupportedType,
			Message: fmt.Sprintf("validator value of type %T", v),
		}
	}
	out := make([]any, len(items))
	for i, item := range items {
		f, err := formatValidatorValue(item)
		if err != nil {
			return nil, withPath(err, fmt.Sprintf("[%d]", i))
		}
		out[i] = f
	}
	return out, nil
}

// scalar normalizes the primitive JSON scalars. Integers become int64 or
// uint64, floats become float64.
func scalar(v any) (any, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return val, true
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint:
		return uint64(val), true
	case uint8:
		return uint64(val), true
	case uint16:
		return uint64(val), true
	case uint32:
		return uint64(val), true
	case uint64:
		return val, true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	}
	return nil, false
}
