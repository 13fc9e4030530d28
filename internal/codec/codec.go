// Package codec implements the fixed-width encode/decode layer (component
// C1 of the design) plus the finite-float ordering wrapper (C2). Every
// identifier and value type supported by a bstreefile file is represented
// here as a Codec: a narrow interface exposing Width/Read/Write, dispatched
// through ForType/Pair rather than monomorphised per type — the same tradeoff
// the teacher lineage makes for its distance-metric dispatch in
// internal/util/distance.go.
package codec

import (
	"errors"
	"fmt"
)

// ErrOutOfRange wraps a Codec.Write failure caused by a value that does not
// fit its declared width, or a non-finite float: the TypeRange condition in
// the error taxonomy, distinct from any other reason a write can fail.
var ErrOutOfRange = errors.New("codec: value out of range for its declared type")

// Kind distinguishes the in-memory representation a Value holds.
type Kind int

const (
	KindUnsigned Kind = iota
	KindSigned
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindUnsigned:
		return "unsigned"
	case KindSigned:
		return "signed"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// FieldType names one supported identifier or value type: its Kind plus its
// on-disk byte Width (for strings, Width is the configured n_chars).
type FieldType struct {
	Kind  Kind
	Width int
}

func (t FieldType) String() string {
	switch t.Kind {
	case KindUnsigned:
		return fmt.Sprintf("u%d", t.Width)
	case KindSigned:
		return fmt.Sprintf("i%d", t.Width)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Width)
	case KindString:
		return fmt.Sprintf("t%d", t.Width)
	default:
		return "?"
	}
}

// Value is the in-memory form of a decoded identifier or value. Exactly one
// of U/I/F/S is meaningful, selected by Field.Kind.
type Value struct {
	Field FieldType
	U     uint64
	I     int64
	F     float64
	S     string
}

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater than
// other. Both values must share the same Kind (callers only ever compare
// values produced by the same codec).
func (v Value) Compare(other Value) int {
	switch v.Field.Kind {
	case KindUnsigned:
		switch {
		case v.U < other.U:
			return -1
		case v.U > other.U:
			return 1
		default:
			return 0
		}
	case KindSigned:
		switch {
		case v.I < other.I:
			return -1
		case v.I > other.I:
			return 1
		default:
			return 0
		}
	case KindFloat:
		switch {
		case v.F < other.F:
			return -1
		case v.F > other.F:
			return 1
		default:
			return 0
		}
	case KindString:
		switch {
		case v.S < other.S:
			return -1
		case v.S > other.S:
			return 1
		default:
			return 0
		}
	default:
		panic("codec: comparing value of unknown kind")
	}
}

// Distance implements the per-type distance function used by the nearest
// and k-nearest neighbour visitors (§4.1). String types do not support it.
func (v Value) Distance(other Value) (Value, error) {
	switch v.Field.Kind {
	case KindUnsigned:
		d := v.U - other.U
		if other.U > v.U {
			d = other.U - v.U
		}
		return Value{Field: v.Field, U: d}, nil
	case KindSigned:
		d := v.I - other.I
		if d < 0 {
			d = -d
		}
		return Value{Field: v.Field, I: d}, nil
	case KindFloat:
		d := v.F - other.F
		if d < 0 {
			d = -d
		}
		return Value{Field: v.Field, F: d}, nil
	default:
		return Value{}, fmt.Errorf("codec: no distance function for %s values", v.Field)
	}
}

// Codec reads and writes one fixed-width field directly against the raw
// bytes of a memory-mapped record: no io.Reader indirection, since the
// traversal engine must decode a single field without touching its
// neighbours.
type Codec interface {
	// Type reports the field type this codec implements.
	Type() FieldType
	// Width is the fixed number of bytes a record occupies on disk.
	Width() int
	// Read decodes raw, which must be exactly Width() bytes long.
	Read(raw []byte) (Value, error)
	// Write encodes v into dst, which must be exactly Width() bytes long.
	Write(dst []byte, v Value) error
}
