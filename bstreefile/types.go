package bstreefile

import "github.com/xDarkicex/bstreefile/internal/codec"

// Value is one decoded identifier or value, selected by its Kind.
type Value = codec.Value

// IDType and ValType name the on-disk representation of identifiers and
// values respectively: a Kind (unsigned/signed/float/string) plus a fixed
// byte Width.
type IDType = codec.FieldType
type ValType = codec.FieldType

// ParseIDType parses an id-type tag ("u3".."u8" or "t<n>"); identifiers
// cannot be signed or float.
func ParseIDType(tag string) (IDType, error) { return codec.ParseIDType(tag) }

// ParseValType parses a value-type tag ("u3".."u8", "i3".."i8", "f4", "f8"
// or "t<n>").
func ParseValType(tag string) (ValType, error) { return codec.ParseValType(tag) }

// Entry is one decoded (identifier, value) pair.
type Entry struct {
	ID  Value
	Val Value
}

// Neighbour is one result of a nearest-neighbour search: the matched entry
// plus its distance from the query value.
type Neighbour struct {
	Distance Value
	Entry    Entry
}

// Metadata describes a built file's header: its entry count, type pair and
// the sizing constants the layout planner derived for it.
type Metadata struct {
	NEntries      uint64
	EntryByteSize int
	IDType        IDType
	ValType       ValType
	NL1           int
	NL1InLD       int
}
