package visit

import (
	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/node"
)

// AllCount counts every entry equal to center, up to limit, without
// materialising them.
type AllCount struct {
	center          codec.Value
	limit           int
	NEntries        int
	desc, asc       bool
}

// NewAllCount builds a visitor counting up to limit duplicates of center.
func NewAllCount(center codec.Value, limit int) *AllCount {
	return &AllCount{center: center, limit: limit, desc: true, asc: true}
}

func (v *AllCount) Center() codec.Value { return v.center }

func (v *AllCount) VisitCenter(node.Entry) { v.NEntries++ }

func (v *AllCount) VisitLECenter(e node.Entry) {
	if e.Val.Compare(v.center) == 0 && v.NEntries < v.limit {
		v.NEntries++
	} else {
		v.desc = false
	}
}

func (v *AllCount) VisitHECenter(e node.Entry) {
	if e.Val.Compare(v.center) == 0 && v.NEntries < v.limit {
		v.NEntries++
	} else {
		v.asc = false
	}
}

func (v *AllCount) VisitDesc() bool { return v.desc }
func (v *AllCount) VisitAsc() bool  { return v.asc }

// All collects every entry equal to center, up to limit.
type All struct {
	center    codec.Value
	limit     int
	Entries   []node.Entry
	desc, asc bool
}

// NewAll builds a visitor collecting up to limit duplicates of center.
func NewAll(center codec.Value, limit int) *All {
	return &All{center: center, limit: limit, desc: true, asc: true}
}

func (v *All) Center() codec.Value { return v.center }

func (v *All) VisitCenter(e node.Entry) { v.Entries = append(v.Entries, e) }

func (v *All) VisitLECenter(e node.Entry) {
	if e.Val.Compare(v.center) == 0 && len(v.Entries) < v.limit {
		v.Entries = append(v.Entries, e)
	} else {
		v.desc = false
	}
}

func (v *All) VisitHECenter(e node.Entry) {
	if e.Val.Compare(v.center) == 0 && len(v.Entries) < v.limit {
		v.Entries = append(v.Entries, e)
	} else {
		v.asc = false
	}
}

func (v *All) VisitDesc() bool { return v.desc }
func (v *All) VisitAsc() bool  { return v.asc }
