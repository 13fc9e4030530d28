package codec

import (
	"fmt"
	"math"
	"strconv"
)

// FiniteFloat wraps a float32/float64 and rejects NaN and +/-Inf at
// construction, which is what lets Value.Compare treat floats as totally
// ordered (component C2).
type FiniteFloat struct {
	v float64
}

// NewFiniteFloat returns (FiniteFloat, true) if f is finite, else (_, false).
func NewFiniteFloat(f float64) (FiniteFloat, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return FiniteFloat{}, false
	}
	return FiniteFloat{v: f}, true
}

// Get returns the wrapped, guaranteed-finite value.
func (f FiniteFloat) Get() float64 { return f.v }

// ParseFiniteFloat parses s and rejects it if the result is not finite.
func ParseFiniteFloat(s string, bitSize int) (FiniteFloat, error) {
	f, err := strconv.ParseFloat(s, bitSize)
	if err != nil {
		return FiniteFloat{}, fmt.Errorf("codec: parse float %q: %w", s, err)
	}
	ff, ok := NewFiniteFloat(f)
	if !ok {
		return FiniteFloat{}, fmt.Errorf("codec: %q is not a finite value", s)
	}
	return ff, nil
}

type f32Codec struct{}

func (f32Codec) Type() FieldType { return FieldType{Kind: KindFloat, Width: 4} }
func (f32Codec) Width() int      { return 4 }

func (f32Codec) Read(raw []byte) (Value, error) {
	if len(raw) != 4 {
		return Value{}, fmt.Errorf("codec: f32 read needs 4 bytes, got %d", len(raw))
	}
	bits := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
	f := math.Float32frombits(bits)
	ff, ok := NewFiniteFloat(float64(f))
	if !ok {
		return Value{}, fmt.Errorf("codec: f32 value is not finite")
	}
	return Value{Field: f32Codec{}.Type(), F: ff.Get()}, nil
}

func (f32Codec) Write(dst []byte, v Value) error {
	if len(dst) != 4 {
		return fmt.Errorf("codec: f32 write needs 4 bytes, got %d", len(dst))
	}
	if _, ok := NewFiniteFloat(float64(float32(v.F))); !ok {
		return fmt.Errorf("codec: cannot write non-finite f32 value: %w", ErrOutOfRange)
	}
	bits := math.Float32bits(float32(v.F))
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
	return nil
}

type f64Codec struct{}

func (f64Codec) Type() FieldType { return FieldType{Kind: KindFloat, Width: 8} }
func (f64Codec) Width() int      { return 8 }

func (f64Codec) Read(raw []byte) (Value, error) {
	if len(raw) != 8 {
		return Value{}, fmt.Errorf("codec: f64 read needs 8 bytes, got %d", len(raw))
	}
	var bits uint64
	for i := 7; i >= 0; i-- {
		bits = bits<<8 | uint64(raw[i])
	}
	f := math.Float64frombits(bits)
	ff, ok := NewFiniteFloat(f)
	if !ok {
		return Value{}, fmt.Errorf("codec: f64 value is not finite")
	}
	return Value{Field: f64Codec{}.Type(), F: ff.Get()}, nil
}

func (f64Codec) Write(dst []byte, v Value) error {
	if len(dst) != 8 {
		return fmt.Errorf("codec: f64 write needs 8 bytes, got %d", len(dst))
	}
	if _, ok := NewFiniteFloat(v.F); !ok {
		return fmt.Errorf("codec: cannot write non-finite f64 value: %w", ErrOutOfRange)
	}
	bits := math.Float64bits(v.F)
	for i := 0; i < 8; i++ {
		dst[i] = byte(bits)
		bits >>= 8
	}
	return nil
}
