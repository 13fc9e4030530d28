package visit

import (
	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/node"
)

// Exact looks up a single value and stops the moment it finds (or fails to
// find) an exact match: it never needs the lateral walk at all.
type Exact struct {
	center codec.Value
	Entry  node.Entry
	Found  bool
}

// NewExact builds a visitor that searches for center.
func NewExact(center codec.Value) *Exact {
	return &Exact{center: center}
}

func (v *Exact) Center() codec.Value { return v.center }

func (v *Exact) VisitCenter(e node.Entry) {
	v.Entry = e
	v.Found = true
}

func (v *Exact) VisitLECenter(node.Entry) { panic("visit: Exact never visits left of center") }
func (v *Exact) VisitHECenter(node.Entry) { panic("visit: Exact never visits right of center") }
func (v *Exact) VisitDesc() bool          { return false }
func (v *Exact) VisitAsc() bool           { return false }
