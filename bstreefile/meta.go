package bstreefile

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/layout"
)

// magic is the fixed 10-byte ASCII file signature.
const magic = "BSTreeFile"

// formatVersion is the current major.minor.patch written to every file.
var formatVersion = [3]byte{1, 0, 0}

// fixedHeaderSize is the size, in bytes, of everything preceding the
// variable-length metadata block: magic + version + meta_len.
const fixedHeaderSize = len(magic) + 3 + 2

// metaV1 is the gob-encoded structure stored in the file's metadata block.
// encoding/gob is the one deliberate standard-library dependency in this
// package: it is a fixed, self-contained Go value, not a cross-language
// wire format, so there is no ecosystem serialisation library to reach for
// instead (see the build notes for the full justification).
type metaV1 struct {
	IDTypeTag string
	ValTypeTag string
	NEntries  uint64
	EntryByteSize uint8
	NL1       uint16
	NL1InLD   uint16
	Layout    layout.Layout
}

func buildMeta(idType, valType codec.FieldType, cte layout.Constants, l layout.Layout) metaV1 {
	return metaV1{
		IDTypeTag:     codec.FormatTag(idType),
		ValTypeTag:    codec.FormatTag(valType),
		NEntries:      cte.NEntries,
		EntryByteSize: uint8(cte.EntryByteSize),
		NL1:           uint16(cte.NL1),
		NL1InLD:       uint16(cte.NL1InLD),
		Layout:        l,
	}
}

func encodeMeta(m metaV1) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("bstreefile: encode metadata: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeMeta(raw []byte) (metaV1, error) {
	var m metaV1
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&m); err != nil {
		return metaV1{}, fmt.Errorf("bstreefile: decode metadata: %w", err)
	}
	return m, nil
}

// writeHeader writes the fixed header plus encoded metadata at the start of
// dst, returning the byte offset where tree data begins.
func writeHeader(dst []byte, m metaV1) (int, error) {
	encoded, err := encodeMeta(m)
	if err != nil {
		return 0, err
	}
	if len(encoded) > 0xFFFF {
		return 0, fmt.Errorf("bstreefile: encoded metadata is %d bytes, exceeds u16 meta_len", len(encoded))
	}
	if len(dst) < fixedHeaderSize+len(encoded) {
		return 0, fmt.Errorf("bstreefile: destination buffer too small for header")
	}
	copy(dst[0:len(magic)], magic)
	off := len(magic)
	dst[off], dst[off+1], dst[off+2] = formatVersion[0], formatVersion[1], formatVersion[2]
	off += 3
	binary.LittleEndian.PutUint16(dst[off:off+2], uint16(len(encoded)))
	off += 2
	copy(dst[off:off+len(encoded)], encoded)
	return off + len(encoded), nil
}

// readHeader validates the magic and version, decodes the metadata, and
// returns it alongside the byte offset where tree data begins.
func readHeader(raw []byte) (metaV1, int, error) {
	if len(raw) < fixedHeaderSize {
		return metaV1{}, 0, fmt.Errorf("bstreefile: file too small for header (%d bytes)", len(raw))
	}
	if string(raw[0:len(magic)]) != magic {
		return metaV1{}, 0, fmt.Errorf("bstreefile: bad magic %q", raw[0:len(magic)])
	}
	off := len(magic)
	version := [3]byte{raw[off], raw[off+1], raw[off+2]}
	off += 3
	if version[0] != formatVersion[0] {
		return metaV1{}, 0, fmt.Errorf("bstreefile: unsupported major version %d", version[0])
	}
	metaLen := int(binary.LittleEndian.Uint16(raw[off : off+2]))
	off += 2
	if len(raw) < off+metaLen {
		return metaV1{}, 0, fmt.Errorf("bstreefile: file too small for %d-byte metadata block", metaLen)
	}
	m, err := decodeMeta(raw[off : off+metaLen])
	if err != nil {
		return metaV1{}, 0, err
	}
	return m, off + metaLen, nil
}
