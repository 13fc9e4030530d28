package visit

import (
	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/node"
)

// KNN finds the k entries nearest to center under dist, optionally bounded
// by dMax. It keeps a max-heap of at most k candidates: once the heap is
// full, a side is only worth continuing while it can still beat the
// current worst kept candidate.
type KNN struct {
	center    codec.Value
	dist      DistanceFunc
	k         int
	dMax      *codec.Value
	heap      candidateHeap
	desc, asc bool
}

// NewKNN builds a visitor searching for the k entries nearest to center.
func NewKNN(center codec.Value, dist DistanceFunc, k int, dMax *codec.Value) *KNN {
	return &KNN{center: center, dist: dist, k: k, desc: true, asc: true, dMax: dMax}
}

// Results returns the accumulated neighbours; order is unspecified.
func (v *KNN) Results() []Neighbour {
	out := make([]Neighbour, len(v.heap))
	copy(out, v.heap)
	return out
}

func (v *KNN) Center() codec.Value { return v.center }

func (v *KNN) VisitCenter(e node.Entry) {
	d, err := v.dist(v.center, e.Val)
	if err != nil || v.k <= 0 {
		v.desc, v.asc = false, false
		return
	}
	v.heap.pushCandidate(Neighbour{Distance: d, Entry: e})
}

func (v *KNN) VisitLECenter(e node.Entry) {
	d, err := v.dist(v.center, e.Val)
	if err != nil {
		v.desc = false
		return
	}
	if v.dMax != nil && d.Compare(*v.dMax) > 0 {
		v.desc = false
		return
	}
	if v.heap.Len() < v.k || d.Compare(v.heap.peek().Distance) < 0 {
		v.heap.pushCandidate(Neighbour{Distance: d, Entry: e})
		if v.heap.Len() > v.k {
			v.heap.popWorst()
		}
	} else {
		v.desc = false
	}
}

func (v *KNN) VisitHECenter(e node.Entry) {
	d, err := v.dist(v.center, e.Val)
	if err != nil {
		v.asc = false
		return
	}
	if v.dMax != nil && d.Compare(*v.dMax) > 0 {
		v.asc = false
		return
	}
	if v.heap.Len() < v.k || d.Compare(v.heap.peek().Distance) < 0 {
		v.heap.pushCandidate(Neighbour{Distance: d, Entry: e})
		if v.heap.Len() > v.k {
			v.heap.popWorst()
		}
	} else {
		v.asc = false
	}
}

func (v *KNN) VisitDesc() bool { return v.desc }
func (v *KNN) VisitAsc() bool  { return v.asc }
