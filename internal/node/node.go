// Package node implements the five on-disk node shapes of the tree
// (component C5): L1 leaf, L1 node, LD node, root L1 node and root LD node.
// Every shape shares one Node struct and dispatches on its Shape field, the
// same interface-plus-switch approach the codec package uses, rather than
// five independent concrete types: the shapes differ only in how many
// entries they carry and whether they own a distinct rightmost subtree, not
// in the identity of the algorithm.
package node

import (
	"fmt"

	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/layout"
)

// Entry is one decoded (identifier, value) pair.
type Entry struct {
	ID  codec.Value
	Val codec.Value
}

// EntrySource pulls entries one at a time, in ascending order. The builder
// satisfies this from the external merge's output stream (component C3).
type EntrySource interface {
	Next() (Entry, bool, error)
}

// Visitor is the traversal contract driven by Node.Visit/VisitAsc/VisitDesc
// (component C6). Center reports the value being searched for. VisitCenter
// fires at most once, when an exact match is found. VisitLECenter fires for
// entries at or below the search point, walked from the center outward;
// VisitHECenter mirrors it above. VisitDesc/VisitAsc let the visitor cut the
// walk short once it has everything it needs.
type Visitor interface {
	Center() codec.Value
	VisitCenter(e Entry)
	VisitLECenter(e Entry)
	VisitHECenter(e Entry)
	VisitDesc() bool
	VisitAsc() bool
}

// Node is one node of the tree, pointer-free: its position and that of its
// children are derived arithmetically from NElems/NL1PageElems, never
// stored. Sub is the repeated subtree template (an L1Node/LDNode's single
// child type, instantiated once per subtree slot: NElems+1 times under an
// L1Node, NElems under a RootL1Node, and NL1PageElems+1 times per L1 page
// under the LD shapes); Rightmost, present only on the
// two root shapes, absorbs whatever entries are left over once N does not
// divide evenly across NElems repetitions of Sub.
type Node struct {
	Shape        layout.Shape
	NElems       int
	NL1PageElems int
	Sub          *Node
	Rightmost    *Node
}

// FromLayout builds the Node tree that implements l under the sizing
// constants cte, mirroring BSTreeLayout's get_root/get_subtree/
// get_ld_subtree recursion in the reference planner.
func FromLayout(l layout.Layout, cte layout.Constants) *Node {
	return rootFromLayout(l, cte)
}

func rootFromLayout(l layout.Layout, cte layout.Constants) *Node {
	shape := l.RootShape()
	switch shape {
	case layout.ShapeL1Leaf:
		return &Node{Shape: shape, NElems: l.NEntriesRoot}
	case layout.ShapeL1Node:
		return &Node{Shape: shape, NElems: l.NEntriesRoot, Sub: subFromLayout(l, 1, cte)}
	case layout.ShapeLDNode:
		return &Node{Shape: shape, NElems: l.NEntriesRoot, NL1PageElems: cte.NL1, Sub: ldSubFromLayout(l, 2, cte)}
	case layout.ShapeRootL1Node:
		return &Node{
			Shape:     shape,
			NElems:    l.NEntriesRoot,
			Sub:       subFromLayout(l, 1, cte),
			Rightmost: rootFromLayout(*l.RightmostSubtree, cte),
		}
	case layout.ShapeRootLDNode:
		return &Node{
			Shape:        shape,
			NElems:       l.NEntriesRoot,
			NL1PageElems: cte.NL1,
			Sub:          ldSubFromLayout(l, 2, cte),
			Rightmost:    rootFromLayout(*l.RightmostSubtree, cte),
		}
	default:
		panic("node: unknown root shape")
	}
}

func subFromLayout(l layout.Layout, d uint8, cte layout.Constants) *Node {
	switch l.SubtreeShape(d) {
	case layout.ShapeL1Leaf:
		return &Node{Shape: layout.ShapeL1Leaf, NElems: cte.NL1}
	case layout.ShapeL1Node:
		return &Node{Shape: layout.ShapeL1Node, NElems: cte.NL1InLD - 1, Sub: subFromLayout(l, d+1, cte)}
	default:
		return &Node{Shape: layout.ShapeLDNode, NElems: cte.NL1InLD - 1, NL1PageElems: cte.NL1, Sub: ldSubFromLayout(l, d+2, cte)}
	}
}

func ldSubFromLayout(l layout.Layout, d uint8, cte layout.Constants) *Node {
	switch l.LDSubtreeShape(d) {
	case layout.ShapeL1Node:
		return &Node{Shape: layout.ShapeL1Node, NElems: cte.NL1InLD - 1, Sub: subFromLayout(l, d+1, cte)}
	default:
		return &Node{Shape: layout.ShapeLDNode, NElems: cte.NL1InLD - 1, NL1PageElems: cte.NL1, Sub: ldSubFromLayout(l, d+2, cte)}
	}
}

// ByteSize returns the total size, in bytes, of the subtree rooted at n,
// given the fixed size of a single entry.
func (n *Node) ByteSize(entryByteSize int) int {
	switch n.Shape {
	case layout.ShapeL1Leaf:
		return n.NElems * entryByteSize
	case layout.ShapeL1Node:
		return n.NElems*entryByteSize + (n.NElems+1)*n.Sub.ByteSize(entryByteSize)
	case layout.ShapeLDNode:
		return n.NElems*entryByteSize +
			(n.NElems+1)*n.NL1PageElems*entryByteSize +
			(n.NElems+1)*(n.NL1PageElems+1)*n.Sub.ByteSize(entryByteSize)
	case layout.ShapeRootL1Node:
		return n.NElems*entryByteSize +
			n.NElems*n.Sub.ByteSize(entryByteSize) +
			n.Rightmost.ByteSize(entryByteSize)
	case layout.ShapeRootLDNode:
		return (n.NElems+n.NElems*n.NL1PageElems)*entryByteSize +
			n.NElems*(n.NL1PageElems+1)*n.Sub.ByteSize(entryByteSize) +
			n.Rightmost.ByteSize(entryByteSize)
	default:
		panic("node: unknown shape")
	}
}

// Write drains entries from src into dst, which must be exactly
// n.ByteSize(idCodec.Width()+valCodec.Width()) bytes long.
func (n *Node) Write(src EntrySource, idCodec, valCodec codec.Codec, dst []byte) error {
	ebs := idCodec.Width() + valCodec.Width()
	want := n.ByteSize(ebs)
	if len(dst) != want {
		return fmt.Errorf("node: write buffer is %d bytes, need %d", len(dst), want)
	}
	switch n.Shape {
	case layout.ShapeL1Leaf:
		return writeFlat(src, idCodec, valCodec, dst, n.NElems)
	case layout.ShapeL1Node:
		l1Buff, stBuff := dst[:n.NElems*ebs], dst[n.NElems*ebs:]
		return writeL1Page(src, idCodec, valCodec, l1Buff, n.Sub, stBuff)
	case layout.ShapeLDNode:
		return n.writeLDNode(src, idCodec, valCodec, dst, n.NElems, ebs)
	case layout.ShapeRootL1Node:
		return n.writeRootL1Node(src, idCodec, valCodec, dst, ebs)
	case layout.ShapeRootLDNode:
		return n.writeRootLDNode(src, idCodec, valCodec, dst, ebs)
	default:
		return fmt.Errorf("node: unknown shape %v", n.Shape)
	}
}

func writeFlat(src EntrySource, idCodec, valCodec codec.Codec, dst []byte, n int) error {
	ebs := idCodec.Width() + valCodec.Width()
	for i := 0; i < n; i++ {
		e, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("node: entry source exhausted before filling leaf")
		}
		if err := writeEntry(e, idCodec, valCodec, dst[i*ebs:(i+1)*ebs]); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(e Entry, idCodec, valCodec codec.Codec, dst []byte) error {
	if err := idCodec.Write(dst[:idCodec.Width()], e.ID); err != nil {
		return fmt.Errorf("node: write id: %w", err)
	}
	if err := valCodec.Write(dst[idCodec.Width():], e.Val); err != nil {
		return fmt.Errorf("node: write value: %w", err)
	}
	return nil
}

// Get looks up target in the subtree rooted at n, reading directly from raw.
func (n *Node) Get(target codec.Value, raw []byte, idCodec, valCodec codec.Codec) (Entry, bool, error) {
	switch n.Shape {
	case layout.ShapeL1Leaf:
		p := NewPage(raw, idCodec, valCodec)
		i, found, err := p.Search(target)
		if err != nil || !found {
			return Entry{}, false, err
		}
		e, err := p.EntryAt(i)
		return e, err == nil, err
	case layout.ShapeL1Node:
		ebs := idCodec.Width() + valCodec.Width()
		l1Buff, stBuff := raw[:n.NElems*ebs], raw[n.NElems*ebs:]
		return getL1Page(target, idCodec, valCodec, l1Buff, n.Sub, stBuff)
	case layout.ShapeLDNode:
		return n.getLDNode(target, raw, idCodec, valCodec)
	case layout.ShapeRootL1Node:
		return n.getRootL1Node(target, raw, idCodec, valCodec)
	case layout.ShapeRootLDNode:
		return n.getRootLDNode(target, raw, idCodec, valCodec)
	default:
		return Entry{}, false, fmt.Errorf("node: unknown shape %v", n.Shape)
	}
}

// Visit drives a central-descent, lateral-walk traversal over the subtree
// rooted at n, starting from v.Center().
func (n *Node) Visit(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	switch n.Shape {
	case layout.ShapeL1Leaf:
		return n.visitL1Leaf(v, raw, idCodec, valCodec)
	case layout.ShapeL1Node:
		ebs := idCodec.Width() + valCodec.Width()
		l1Buff, stBuff := raw[:n.NElems*ebs], raw[n.NElems*ebs:]
		return visitL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff)
	case layout.ShapeLDNode:
		return n.visitLDNode(v, raw, idCodec, valCodec)
	case layout.ShapeRootL1Node:
		return n.visitRootL1Node(v, raw, idCodec, valCodec)
	case layout.ShapeRootLDNode:
		return n.visitRootLDNode(v, raw, idCodec, valCodec)
	default:
		return fmt.Errorf("node: unknown shape %v", n.Shape)
	}
}

// VisitDesc visits every entry in the subtree in descending order, stopping
// early once v.VisitDesc() turns false.
func (n *Node) VisitDesc(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	switch n.Shape {
	case layout.ShapeL1Leaf:
		return n.visitDescL1Leaf(v, raw, idCodec, valCodec)
	case layout.ShapeL1Node:
		ebs := idCodec.Width() + valCodec.Width()
		l1Buff, stBuff := raw[:n.NElems*ebs], raw[n.NElems*ebs:]
		return visitDescL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff)
	case layout.ShapeLDNode:
		return n.visitDescLDNode(v, raw, idCodec, valCodec)
	default:
		return fmt.Errorf("node: visit_desc not supported at root shape %v", n.Shape)
	}
}

// VisitAsc visits every entry in the subtree in ascending order, stopping
// early once v.VisitAsc() turns false.
func (n *Node) VisitAsc(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	switch n.Shape {
	case layout.ShapeL1Leaf:
		return n.visitAscL1Leaf(v, raw, idCodec, valCodec)
	case layout.ShapeL1Node:
		ebs := idCodec.Width() + valCodec.Width()
		l1Buff, stBuff := raw[:n.NElems*ebs], raw[n.NElems*ebs:]
		return visitAscL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff)
	case layout.ShapeLDNode:
		return n.visitAscLDNode(v, raw, idCodec, valCodec)
	default:
		return fmt.Errorf("node: visit_asc not supported at root shape %v", n.Shape)
	}
}
