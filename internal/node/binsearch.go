package node

import (
	"fmt"

	"github.com/xDarkicex/bstreefile/internal/codec"
)

// Page is a contiguous run of fixed-width entries read directly out of a
// memory-mapped byte slice: no copy, no intermediate allocation per entry.
type Page struct {
	raw           []byte
	idCodec       codec.Codec
	valCodec      codec.Codec
	entryByteSize int
	n             int
}

// NewPage wraps raw as a run of entries, each idCodec.Width()+valCodec.Width()
// bytes long.
func NewPage(raw []byte, idCodec, valCodec codec.Codec) Page {
	ebs := idCodec.Width() + valCodec.Width()
	n := 0
	if ebs > 0 {
		n = len(raw) / ebs
	}
	return Page{raw: raw, idCodec: idCodec, valCodec: valCodec, entryByteSize: ebs, n: n}
}

// Len returns the number of entries in the page.
func (p Page) Len() int { return p.n }

// EntryAt decodes the entry at index i.
func (p Page) EntryAt(i int) (Entry, error) {
	if i < 0 || i >= p.n {
		return Entry{}, fmt.Errorf("node: entry index %d out of range [0,%d)", i, p.n)
	}
	off := i * p.entryByteSize
	idWidth := p.idCodec.Width()
	id, err := p.idCodec.Read(p.raw[off : off+idWidth])
	if err != nil {
		return Entry{}, fmt.Errorf("node: decode id at entry %d: %w", i, err)
	}
	val, err := p.valCodec.Read(p.raw[off+idWidth : off+p.entryByteSize])
	if err != nil {
		return Entry{}, fmt.Errorf("node: decode value at entry %d: %w", i, err)
	}
	return Entry{ID: id, Val: val}, nil
}

// Search performs a binary search for target among the page's values,
// which are stored sorted ascending. It returns (index, true) when found,
// or (insertion index, false) when not: the index at which target would
// need to be inserted to keep the page sorted.
func (p Page) Search(target codec.Value) (int, bool, error) {
	lo, hi := 0, p.n
	for lo < hi {
		mid := (lo + hi) / 2
		e, err := p.EntryAt(mid)
		if err != nil {
			return 0, false, err
		}
		switch e.Val.Compare(target) {
		case 0:
			return mid, true, nil
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false, nil
}
