// Package visit implements the traversal engine's concrete visitors
// (component C6): Exact, AllCount, All, NN, KNN, RangeCount and Range. Each
// one drives node.Node.Visit/VisitAsc/VisitDesc by answering Center and by
// accumulating state from VisitCenter/VisitLECenter/VisitHECenter, cutting
// the walk short through VisitDesc/VisitAsc once it has everything it
// needs.
package visit

import (
	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/node"
)

// DistanceFunc computes the distance between two values of the same type,
// used by the NN and KNN visitors. codec.Value.Distance satisfies this.
type DistanceFunc func(a, b codec.Value) (codec.Value, error)

// Neighbour pairs a matched entry with its distance from the query center.
type Neighbour struct {
	Distance codec.Value
	Entry    node.Entry
}
