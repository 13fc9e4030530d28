package visit

import (
	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/node"
)

// RangeCount counts entries in [lo, hi], up to limit, without materialising
// them. The search centers on lo: the descending side only ever needs to
// reject entries below lo (an equal-to-lo boundary stays in range), the
// ascending side stops once it passes hi.
type RangeCount struct {
	lo, hi    codec.Value
	limit     int
	NEntries  int
	desc, asc bool
}

// NewRangeCount builds a visitor counting entries in [lo, hi], up to limit.
func NewRangeCount(lo, hi codec.Value, limit int) *RangeCount {
	return &RangeCount{lo: lo, hi: hi, limit: limit, desc: true, asc: true}
}

func (v *RangeCount) Center() codec.Value { return v.lo }

func (v *RangeCount) VisitCenter(node.Entry) { v.NEntries++ }

func (v *RangeCount) VisitLECenter(e node.Entry) {
	if e.Val.Compare(v.lo) < 0 || v.NEntries >= v.limit {
		v.desc = false
	} else {
		v.NEntries++
	}
}

func (v *RangeCount) VisitHECenter(e node.Entry) {
	if e.Val.Compare(v.hi) > 0 || v.NEntries >= v.limit {
		v.asc = false
	} else {
		v.NEntries++
	}
}

func (v *RangeCount) VisitDesc() bool { return v.desc }
func (v *RangeCount) VisitAsc() bool  { return v.asc }

// Range collects entries in [lo, hi], up to limit.
type Range struct {
	lo, hi    codec.Value
	limit     int
	Entries   []node.Entry
	desc, asc bool
}

// NewRange builds a visitor collecting entries in [lo, hi], up to limit.
func NewRange(lo, hi codec.Value, limit int) *Range {
	return &Range{lo: lo, hi: hi, limit: limit, desc: true, asc: true}
}

func (v *Range) Center() codec.Value { return v.lo }

func (v *Range) VisitCenter(e node.Entry) { v.Entries = append(v.Entries, e) }

func (v *Range) VisitLECenter(e node.Entry) {
	if e.Val.Compare(v.lo) < 0 || len(v.Entries) >= v.limit {
		v.desc = false
	} else {
		v.Entries = append(v.Entries, e)
	}
}

func (v *Range) VisitHECenter(e node.Entry) {
	if e.Val.Compare(v.hi) > 0 || len(v.Entries) >= v.limit {
		v.asc = false
	} else {
		v.Entries = append(v.Entries, e)
	}
}

func (v *Range) VisitDesc() bool { return v.desc }
func (v *Range) VisitAsc() bool  { return v.asc }
