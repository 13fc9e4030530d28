// Package layout implements the deterministic tree-shape planner (component
// C4): given a total entry count, an entry byte size and the target L1/disk
// cache sizes, it derives the number of entries packed into each node shape
// and the recursive depth/fanout plan used to compute byte offsets without
// ever storing a pointer on disk.
package layout

import "fmt"

// Constants are the derived per-tree sizing values that every node in the
// tree shares, grounded on BSTreeConstants in the reference Rust source.
type Constants struct {
	// NEntries is the total number of entries in the tree.
	NEntries uint64
	// EntryByteSize is the fixed size, in bytes, of one (id, value) entry.
	EntryByteSize int
	// NL1 is the number of entries packed into one L1 block (nL1 = floor(L/e)).
	NL1 int
	// NL1InLD is the number of L1 blocks packed under one LD block.
	NL1InLD int
}

// NewConstants derives Constants from the cache-size budget. l1Bytes and
// diskBytes are the L1 cache and disk/page cache sizes in bytes that the
// planner packs entries into.
func NewConstants(nEntries uint64, entryByteSize, l1Bytes, diskBytes int) (Constants, error) {
	if entryByteSize <= 0 {
		return Constants{}, fmt.Errorf("layout: entry byte size must be positive, got %d", entryByteSize)
	}
	nL1 := l1Bytes / entryByteSize
	if nL1 < 1 {
		return Constants{}, fmt.Errorf("layout: l1 size %d bytes too small for entry size %d", l1Bytes, entryByteSize)
	}
	nLDMax := diskBytes / entryByteSize
	// nLD = nL1InLD*(nL1+1) - 1 <= nLDMax  =>  nL1InLD <= (nLDMax+1)/(nL1+1)
	nL1InLD := (nLDMax + 1) / (nL1 + 1)
	if nL1InLD < 1 {
		return Constants{}, fmt.Errorf("layout: disk size %d bytes too small to hold even one L1 block under nL1=%d", diskBytes, nL1)
	}
	return Constants{
		NEntries:      nEntries,
		EntryByteSize: entryByteSize,
		NL1:           nL1,
		NL1InLD:       nL1InLD,
	}, nil
}

// NLD returns the number of entries packed into one full LD block:
// nLD = (nL1InLD - 1) + nL1InLD * nL1.
func (c Constants) NLD() uint64 {
	nL1InLD := uint64(c.NL1InLD)
	nL1 := uint64(c.NL1)
	return (nL1InLD - 1) + nL1InLD*nL1
}

// MaxDepth bounds how deep the layout planner will recurse before giving up.
const MaxDepth = 8

// Shape names the five node kinds a Layout node can resolve to.
type Shape int

const (
	ShapeL1Leaf Shape = iota
	ShapeL1Node
	ShapeLDNode
	ShapeRootL1Node
	ShapeRootLDNode
)

func (s Shape) String() string {
	switch s {
	case ShapeL1Leaf:
		return "l1leaf"
	case ShapeL1Node:
		return "l1node"
	case ShapeLDNode:
		return "ldnode"
	case ShapeRootL1Node:
		return "rootl1node"
	case ShapeRootLDNode:
		return "rootldnode"
	default:
		return "unknown"
	}
}

// Layout is the recursive plan for one subtree: its depth, the number of
// entries carried in its root array, the number of entries in the regular
// (non-rightmost) part of the tree, and — when N does not divide evenly —
// the layout of the rightmost subtree that absorbs the remainder.
type Layout struct {
	Depth            uint8
	NEntriesRoot     int
	NEntriesMain     uint64
	RightmostSubtree *Layout
}

// Plan derives the full recursive layout for a tree of cte.NEntries
// entries, choosing the shallowest depth (capped at MaxDepth) that can hold
// them and recursing into a rightmost subtree for any remainder.
func Plan(cte Constants) (Layout, error) {
	return planFrom(cte.NEntries, cte)
}

func planFrom(nEntries uint64, cte Constants) (Layout, error) {
	nL1 := uint64(cte.NL1)
	nLD := cte.NLD()

	if nEntries <= nL1 {
		return Layout{Depth: 0, NEntriesRoot: int(nEntries), NEntriesMain: nEntries}, nil
	}

	nSub := nL1
	if nEntries <= nL1+(nL1+1)*nSub {
		return planKnownDepth(1, nEntries, nSub, cte)
	}
	nSub = nLD

	for depth := uint8(2); depth <= MaxDepth; depth += 2 {
		if nEntries <= nL1+(nL1+1)*nSub {
			return planKnownDepth(depth, nEntries, nSub, cte)
		}
		nSub = nL1 + (nL1+1)*nSub
		if depth < MaxDepth && nEntries <= nL1+(nL1+1)*nSub {
			return planKnownDepth(depth+1, nEntries, nSub, cte)
		}
		nLDElem := uint64(cte.NL1InLD) - 1
		nSub = nLDElem + (nLDElem+1)*nSub
	}
	return Layout{}, fmt.Errorf("layout: tree too deep for %d entries at entry size %d (max depth %d exceeded): %w", nEntries, cte.EntryByteSize, MaxDepth, ErrOverflow)
}

// ErrOverflow is returned by Plan when no depth up to MaxDepth suffices.
var ErrOverflow = fmt.Errorf("layout overflow")

func planKnownDepth(depth uint8, nEntries, nSubtree uint64, cte Constants) (Layout, error) {
	// nE <= nR + (nR+1)*nSub  =>  nR >= (nE - nSub) / (1 + nSub)
	nRoot := (nEntries - nSubtree) / (1 + nSubtree)
	nRem := nEntries - (nRoot + (nRoot+1)*nSubtree)
	if nRoot > uint64(cte.NL1) {
		return Layout{}, fmt.Errorf("layout: computed root fanout %d exceeds nL1 %d: %w", nRoot, cte.NL1, ErrOverflow)
	}
	if nRem == 0 {
		return Layout{Depth: depth, NEntriesRoot: int(nRoot), NEntriesMain: nEntries}, nil
	}
	nEntriesMain := (nRoot + 1) + (nRoot+1)*nSubtree
	nEntriesSub := nEntries - nEntriesMain
	sub, err := planFrom(nEntriesSub, cte)
	if err != nil {
		return Layout{}, err
	}
	return Layout{
		Depth:            depth,
		NEntriesRoot:     int(nRoot) + 1,
		NEntriesMain:     nEntriesMain,
		RightmostSubtree: &sub,
	}, nil
}

// RootShape resolves which of the five node shapes the root of l must be,
// mirroring the (depth, depth&1, has-rightmost) match in the planner.
func (l Layout) RootShape() Shape {
	odd := l.Depth&1 == 1
	hasRight := l.RightmostSubtree != nil
	switch {
	case l.Depth == 0:
		return ShapeL1Leaf
	case l.Depth == 1 && !hasRight:
		return ShapeL1Node
	case l.Depth == 1 && hasRight:
		return ShapeRootL1Node
	case !odd && !hasRight:
		return ShapeL1Node
	case odd && !hasRight:
		return ShapeLDNode
	case !odd && hasRight:
		return ShapeRootL1Node
	case odd && hasRight:
		return ShapeRootLDNode
	default:
		return ShapeL1Leaf
	}
}

// SubtreeShape resolves the shape of a (non-LD-internal) subtree rooted at
// depth d within l: an L1 leaf at the deepest level, an L1 node one level
// above it, else an LD node.
func (l Layout) SubtreeShape(d uint8) Shape {
	switch {
	case d == l.Depth:
		return ShapeL1Leaf
	case d == l.Depth-1:
		return ShapeL1Node
	default:
		return ShapeLDNode
	}
}

// LDSubtreeShape resolves the shape of the node found under one of an LD
// block's nL1InLD "slots": an L1 node (used as an LD leaf) at the deepest
// level, else another LD node.
func (l Layout) LDSubtreeShape(d uint8) Shape {
	if d == l.Depth-1 {
		return ShapeL1Node
	}
	return ShapeLDNode
}
