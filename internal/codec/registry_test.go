package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDType(t *testing.T) {
	tests := []struct {
		tag     string
		wantErr bool
	}{
		{"u4", false},
		{"u8", false},
		{"t16", false},
		{"i4", true},  // signed not allowed for ids
		{"f8", true},  // float not allowed for ids
		{"u2", true},  // width out of range
		{"xyz", true}, // malformed
		{"z", true},   // too short
	}
	for _, tt := range tests {
		_, err := ParseIDType(tt.tag)
		if tt.wantErr {
			assert.Error(t, err, "ParseIDType(%q) should have failed", tt.tag)
		} else {
			assert.NoError(t, err, "ParseIDType(%q)", tt.tag)
		}
	}
}

func TestParseValType(t *testing.T) {
	tests := []struct {
		tag     string
		want    FieldType
		wantErr bool
	}{
		{"u4", FieldType{Kind: KindUnsigned, Width: 4}, false},
		{"i8", FieldType{Kind: KindSigned, Width: 8}, false},
		{"f4", FieldType{Kind: KindFloat, Width: 4}, false},
		{"f8", FieldType{Kind: KindFloat, Width: 8}, false},
		{"t32", FieldType{Kind: KindString, Width: 32}, false},
		{"f2", FieldType{}, true},
		{"u9", FieldType{}, true},
		{"t0", FieldType{}, true},
	}
	for _, tt := range tests {
		got, err := ParseValType(tt.tag)
		if tt.wantErr {
			assert.Error(t, err, "ParseValType(%q) should have failed", tt.tag)
			continue
		}
		require.NoError(t, err, "ParseValType(%q)", tt.tag)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatTagRoundTrip(t *testing.T) {
	tags := []string{"u3", "u8", "i4", "f4", "f8", "t1", "t255"}
	for _, tag := range tags {
		ft, err := ParseValType(tag)
		require.NoError(t, err, "ParseValType(%q)", tag)
		assert.Equal(t, tag, FormatTag(ft))
	}
}

func TestForType(t *testing.T) {
	for _, width := range UnsignedWidths {
		c, err := ForType(FieldType{Kind: KindUnsigned, Width: width})
		require.NoError(t, err, "ForType(u%d)", width)
		assert.Equal(t, width, c.Width())
	}
	_, err := ForType(FieldType{Kind: KindFloat, Width: 16})
	assert.Error(t, err, "expected error for unsupported float width 16")

	_, err = ForType(FieldType{Kind: KindString, Width: 0})
	assert.Error(t, err, "expected error for zero-width string")
}

func TestSupportsDistance(t *testing.T) {
	assert.True(t, SupportsDistance(FieldType{Kind: KindUnsigned, Width: 4}), "unsigned should support distance")
	assert.False(t, SupportsDistance(FieldType{Kind: KindString, Width: 4}), "string should not support distance")
}

func TestPair(t *testing.T) {
	idCodec, valCodec, err := Pair(FieldType{Kind: KindUnsigned, Width: 5}, FieldType{Kind: KindFloat, Width: 8})
	require.NoError(t, err)
	assert.Equal(t, 5, idCodec.Width())
	assert.Equal(t, 8, valCodec.Width())
}
