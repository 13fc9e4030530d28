package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIDType parses an id-type tag ("u3".."u8" or "t<n>"). Identifiers do
// not support signed or float widths; the source data is a row identifier,
// not a comparison key.
func ParseIDType(tag string) (FieldType, error) {
	ft, err := parseTag(tag)
	if err != nil {
		return FieldType{}, err
	}
	if ft.Kind != KindUnsigned && ft.Kind != KindString {
		return FieldType{}, fmt.Errorf("codec: id type must be unsigned or string, got %s", ft)
	}
	return ft, nil
}

// ParseValType parses a value-type tag ("u3".."u8", "i3".."i8", "f4", "f8"
// or "t<n>").
func ParseValType(tag string) (FieldType, error) {
	return parseTag(tag)
}

func parseTag(tag string) (FieldType, error) {
	if len(tag) < 2 {
		return FieldType{}, fmt.Errorf("codec: malformed type tag %q", tag)
	}
	kindChar, rest := tag[0], tag[1:]
	n, err := strconv.Atoi(rest)
	if err != nil {
		return FieldType{}, fmt.Errorf("codec: malformed type tag %q: %w", tag, err)
	}
	switch kindChar {
	case 'u':
		if !widthAllowed(n, UnsignedWidths) {
			return FieldType{}, fmt.Errorf("codec: unsupported unsigned width %d", n)
		}
		return FieldType{Kind: KindUnsigned, Width: n}, nil
	case 'i':
		if !widthAllowed(n, SignedWidths) {
			return FieldType{}, fmt.Errorf("codec: unsupported signed width %d", n)
		}
		return FieldType{Kind: KindSigned, Width: n}, nil
	case 'f':
		if n != 4 && n != 8 {
			return FieldType{}, fmt.Errorf("codec: unsupported float width %d", n)
		}
		return FieldType{Kind: KindFloat, Width: n}, nil
	case 't':
		if n <= 0 {
			return FieldType{}, fmt.Errorf("codec: string width must be positive, got %d", n)
		}
		return FieldType{Kind: KindString, Width: n}, nil
	default:
		return FieldType{}, fmt.Errorf("codec: unknown type tag %q; must match u[3-8], i[3-8], f[48] or t<n>", tag)
	}
}

func widthAllowed(n int, widths []int) bool {
	for _, w := range widths {
		if w == n {
			return true
		}
	}
	return false
}

// ForType returns the Codec implementing ft.
func ForType(ft FieldType) (Codec, error) {
	switch ft.Kind {
	case KindUnsigned:
		if !widthAllowed(ft.Width, UnsignedWidths) {
			return nil, fmt.Errorf("codec: unsupported unsigned width %d", ft.Width)
		}
		return newUintCodec(ft.Width), nil
	case KindSigned:
		if !widthAllowed(ft.Width, SignedWidths) {
			return nil, fmt.Errorf("codec: unsupported signed width %d", ft.Width)
		}
		return newIntCodec(ft.Width), nil
	case KindFloat:
		switch ft.Width {
		case 4:
			return f32Codec{}, nil
		case 8:
			return f64Codec{}, nil
		default:
			return nil, fmt.Errorf("codec: unsupported float width %d", ft.Width)
		}
	case KindString:
		if ft.Width <= 0 {
			return nil, fmt.Errorf("codec: invalid string width %d", ft.Width)
		}
		return newStrCodec(ft.Width), nil
	default:
		return nil, fmt.Errorf("codec: unknown field kind %v", ft.Kind)
	}
}

// SupportsDistance reports whether values of ft support the per-type
// distance function used by NN/KNN (§4.1). Only string types do not.
func SupportsDistance(ft FieldType) bool {
	return ft.Kind != KindString
}

// Pair resolves the (id codec, value codec) pair keyed on the
// (id-type, val-type) pair recorded in a file's header — the "flat switch
// over the finite type cross-product" the design calls for, minus the
// unneeded N^2 blow-up: distance depends only on the value type, so the
// dispatch only needs to resolve two independent codecs, not a full
// cross-product table; the distance capability check is SupportsDistance.
func Pair(idType, valType FieldType) (idCodec, valCodec Codec, err error) {
	idCodec, err = ForType(idType)
	if err != nil {
		return nil, nil, fmt.Errorf("codec: id type: %w", err)
	}
	valCodec, err = ForType(valType)
	if err != nil {
		return nil, nil, fmt.Errorf("codec: val type: %w", err)
	}
	return idCodec, valCodec, nil
}

// FormatTag renders a FieldType back into its "u4"/"f8"/"t16" string tag.
func FormatTag(ft FieldType) string {
	var b strings.Builder
	switch ft.Kind {
	case KindUnsigned:
		b.WriteByte('u')
	case KindSigned:
		b.WriteByte('i')
	case KindFloat:
		b.WriteByte('f')
	case KindString:
		b.WriteByte('t')
	}
	b.WriteString(strconv.Itoa(ft.Width))
	return b.String()
}
