package artifact

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object with a fixed member order.
//
// Values are limited to the shapes the encoder understands: nil, string,
// bool, int64, uint64, float64, []any and Object.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the member keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Serialize converts a record into its wire object.
//
// Fields are visited in descriptor order. Unset optional fields are dropped,
// unset nullable fields become null and unset required fields fail with
// MISSING_FIELD. Union fields are flattened: the variant's WireTag becomes a
// key at the parent level.
func Serialize(rec Record) (Object, error) {
	if rec == nil {
		return nil, missingField("")
	}
	obj, err := serializeRecord(rec)
	if err != nil {
		return nil, withPath(err, rec.recordName())
	}
	return obj, nil
}

func serializeRecord(rec Record) (Object, error) {
	if f, ok := rec.(*Frozen); ok {
		return f.body, nil
	}

	fields := rec.fields()
	obj := make(Object, 0, len(fields))
	for _, f := range fields {
		if isUnset(f.value, f.kind) {
			switch f.kind {
			case Optional:
				continue
			case Nullable:
				obj = append(obj, Member{Key: f.wire, Value: nil})
				continue
			default:
				return nil, missingField(f.name)
			}
		}

		if f.kind == Union {
			variant, ok := f.value.(Tagged)
			if !ok {
				return nil, unsupportedType(f.name, f.value)
			}
			body, err := serializeRecord(variant)
			if err != nil {
				return nil, withPath(err, f.name)
			}
			obj = append(obj, Member{Key: variant.WireTag(), Value: body})
			continue
		}

		v, err := serializeField(f)
		if err != nil {
			return nil, withPath(err, f.name)
		}
		obj = append(obj, Member{Key: f.wire, Value: v})
	}
	return obj, nil
}

func serializeField(f boundField) (any, error) {
	if f.format != nil {
		v, err := f.format(f.value)
		if err != nil {
			return nil, err
		}
		return plain(v)
	}

	switch val := f.value.(type) {
	case Record:
		return serializeRecord(val)
	case []Record:
		out := make([]any, len(val))
		for i, r := range val {
			obj, err := serializeRecord(r)
			if err != nil {
				return nil, withPath(err, fmt.Sprintf("[%d]", i))
			}
			out[i] = obj
		}
		return out, nil
	case enumValue:
		return FormatEnum(val)
	case time.Time:
		return FormatTimestamp(val), nil
	}
	return plain(f.value)
}

// formatPlain passes free-form JSON content through the plain walker.
func formatPlain(v any) (any, error) {
	return plain(v)
}

// plain converts free-form content (metadata, parameters, extension
// payloads) into encoder shapes. Map keys are sorted.
func plain(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := scalar(v); ok {
		if f, isFloat := s.(float64); isFloat && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return nil, &SchemaError{
				Code:    ErrCodeUnsupportedType,
				Message: fmt.Sprintf("non-finite float %v", f),
			}
		}
		return s, nil
	}

	switch val := v.(type) {
	case Object:
		return val, nil
	case Metadata:
		return plainMap(val)
	case map[string]any:
		return plainMap(val)
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return plainMap(m)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			p, err := plain(item)
			if err != nil {
				return nil, withPath(err, fmt.Sprintf("[%d]", i))
			}
			out[i] = p
		}
		return out, nil
	case []string:
		return stringList(val), nil
	case []int:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = int64(n)
		}
		return out, nil
	case []float64:
		items := make([]any, len(val))
		for i, f := range val {
			items[i] = f
		}
		return plain(items)
	case enumValue:
		return FormatEnum(val)
	case time.Time:
		return FormatTimestamp(val), nil
	}
	return nil, unsupportedType("", v)
}

func plainMap(m map[string]any) (Object, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := make(Object, 0, len(keys))
	for _, k := range keys {
		p, err := plain(m[k])
		if err != nil {
			return nil, withPath(err, k)
		}
		obj = append(obj, Member{Key: k, Value: p})
	}
	return obj, nil
}

// isUnset reports whether a field value counts as absent. Empty strings are
// absent only for optional fields; a required string is emitted as "".
func isUnset(v any, kind Kind) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return kind == Optional && val == ""
	case Metadata:
		return val == nil
	case map[string]any:
		return val == nil
	case enumValue:
		return val.IsZero()
	case time.Time:
		return val.IsZero()
	}
	return false
}

// Frozen is a variant that has already been serialized. It lets a caller
// validate and serialize an artifact before committing to an envelope.
type Frozen struct {
	tag  string
	body Object
}

// Freeze serializes impl and keeps the result for later wrapping in a Root.
func Freeze(impl RootImpl) (*Frozen, error) {
	if impl == nil {
		return nil, missingField("Root.Impl")
	}
	body, err := Serialize(impl)
	if err != nil {
		return nil, err
	}
	return &Frozen{tag: impl.WireTag(), body: body}, nil
}

// Body returns the serialized variant.
func (f *Frozen) Body() Object { return f.body }

func (f *Frozen) recordName() string   { return "Frozen" }
func (f *Frozen) fields() []boundField { return nil }
func (f *Frozen) WireTag() string      { return f.tag }
func (f *Frozen) rootArtifact()        {}
