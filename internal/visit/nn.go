package visit

import (
	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/node"
)

// NN finds the single nearest entry to center under dist, optionally capped
// at dMax. It stops each side after that side's first candidate, whether
// or not it is kept, since every entry further along that side is only
// farther from center.
type NN struct {
	center    codec.Value
	dist      DistanceFunc
	dMax      *codec.Value
	Result    *Neighbour
	desc, asc bool
}

// NewNN builds a visitor searching for the nearest entry to center. dMax,
// when non-nil, bounds how far a match is allowed to be.
func NewNN(center codec.Value, dist DistanceFunc, dMax *codec.Value) *NN {
	return &NN{center: center, dist: dist, dMax: dMax, desc: true, asc: true}
}

func (v *NN) Center() codec.Value { return v.center }

func (v *NN) VisitCenter(e node.Entry) {
	d, err := v.dist(v.center, e.Val)
	if err != nil {
		v.desc, v.asc = false, false
		return
	}
	v.Result = &Neighbour{Distance: d, Entry: e}
	v.desc, v.asc = false, false
}

func (v *NN) VisitLECenter(e node.Entry) {
	d, err := v.dist(v.center, e.Val)
	if err != nil {
		v.desc = false
		return
	}
	if v.dMax != nil && d.Compare(*v.dMax) > 0 {
		v.desc = false
		return
	}
	if v.Result == nil || d.Compare(v.Result.Distance) < 0 {
		v.Result = &Neighbour{Distance: d, Entry: e}
	}
	v.desc = false
}

func (v *NN) VisitHECenter(e node.Entry) {
	d, err := v.dist(v.center, e.Val)
	if err != nil {
		v.asc = false
		return
	}
	if v.dMax != nil && d.Compare(*v.dMax) > 0 {
		v.asc = false
		return
	}
	if v.Result == nil || d.Compare(v.Result.Distance) < 0 {
		v.Result = &Neighbour{Distance: d, Entry: e}
	}
	v.asc = false
}

func (v *NN) VisitDesc() bool { return v.desc }
func (v *NN) VisitAsc() bool  { return v.asc }
