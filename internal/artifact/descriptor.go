package artifact

// Kind controls how the serializer treats an unset field value.
type Kind uint8

const (
	// Required fields fail with MISSING_FIELD when unset.
	Required Kind = iota
	// Optional fields are elided when unset.
	Optional
	// Nullable fields are emitted as JSON null when unset.
	Nullable
	// Union fields hold a Tagged variant; the variant's WireTag is the key.
	Union
)

// Field maps one Go field of T onto the wire.
type Field[T any] struct {
	// Name is the Go field name, used in error paths.
	Name string
	// Wire is the JSON key. Ignored for Union fields.
	Wire string
	Kind Kind
	// Format, when set, replaces the default serialization of the value.
	Format Formatter
	Get    func(*T) any
}

// Descriptor is the static field table of a record type, in output order.
type Descriptor[T any] []Field[T]

// boundField is a descriptor entry paired with the value read from a record.
type boundField struct {
	name   string
	wire   string
	kind   Kind
	format Formatter
	value  any
}

func (d Descriptor[T]) bind(rec *T) []boundField {
	out := make([]boundField, len(d))
	for i, f := range d {
		out[i] = boundField{
			name:   f.Name,
			wire:   f.Wire,
			kind:   f.Kind,
			format: f.Format,
			value:  f.Get(rec),
		}
	}
	return out
}

// Record is a value the serializer can walk.
// Only types in this package implement it.
type Record interface {
	recordName() string
	fields() []boundField
}

// Tagged is a union variant. WireTag is the key the variant is flattened
// under at the parent level.
type Tagged interface {
	Record
	WireTag() string
}

// optional turns a nil pointer into an untyped nil so the serializer sees
// the field as unset.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}

// records adapts a slice of record values to the serializer's list form.
func records[T any, P interface {
	*T
	Record
}](xs []T) []Record {
	out := make([]Record, len(xs))
	for i := range xs {
		out[i] = P(&xs[i])
	}
	return out
}

// stringList adapts a string slice to the serializer's list form; nil becomes
// an empty list.
func stringList(xs []string) []any {
	out := make([]any, len(xs))
	for i, s := range xs {
		out[i] = s
	}
	return out
}
