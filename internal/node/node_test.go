package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/layout"
	"github.com/xDarkicex/bstreefile/internal/node"
)

// sliceSource feeds entries from an in-memory, pre-sorted slice, the test
// double for the external merge's EntrySource.
type sliceSource struct {
	entries []node.Entry
	pos     int
}

func (s *sliceSource) Next() (node.Entry, bool, error) {
	if s.pos >= len(s.entries) {
		return node.Entry{}, false, nil
	}
	e := s.entries[s.pos]
	s.pos++
	return e, true, nil
}

func makeEntries(n int, idCodec, valCodec codec.Codec) []node.Entry {
	out := make([]node.Entry, n)
	for i := 0; i < n; i++ {
		out[i] = node.Entry{
			ID:  codec.Value{Field: idCodec.Type(), U: uint64(i)},
			Val: codec.Value{Field: valCodec.Type(), U: uint64(i * 2)},
		}
	}
	return out
}

// smallConstants derives a small, fast-to-fan-out sizing budget: 4 entries
// per L1 block, 2 L1 blocks per LD block.
func smallConstants(n uint64, ebs int) layout.Constants {
	cte, err := layout.NewConstants(n, ebs, 4*ebs, 10*ebs)
	if err != nil {
		panic(err)
	}
	return cte
}

// shapesByFirstN scans increasing entry counts and records the first n at
// which the planner produces each of the five root shapes, so the round
// trip tests below exercise every shape without hand-derived boundary
// arithmetic.
func shapesByFirstN(t *testing.T, ebs int, maxN int) map[layout.Shape]int {
	t.Helper()
	found := make(map[layout.Shape]int)
	for n := 1; n <= maxN; n++ {
		cte := smallConstants(uint64(n), ebs)
		l, err := layout.Plan(cte)
		if err != nil {
			continue
		}
		shape := l.RootShape()
		if _, ok := found[shape]; !ok {
			found[shape] = n
		}
		if len(found) == 5 {
			break
		}
	}
	return found
}

func TestNodeWriteGetRoundTripAcrossShapes(t *testing.T) {
	idCodec, err := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 4})
	require.NoError(t, err)
	valCodec, err := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 4})
	require.NoError(t, err)
	ebs := idCodec.Width() + valCodec.Width()

	shapes := shapesByFirstN(t, ebs, 2000)
	wantShapes := []layout.Shape{
		layout.ShapeL1Leaf,
		layout.ShapeL1Node,
		layout.ShapeLDNode,
		layout.ShapeRootL1Node,
		layout.ShapeRootLDNode,
	}
	for _, shape := range wantShapes {
		n, ok := shapes[shape]
		if !ok {
			t.Errorf("no entry count up to the scan bound produced shape %v", shape)
			continue
		}
		t.Run(shape.String(), func(t *testing.T) {
			cte := smallConstants(uint64(n), ebs)
			plan, err := layout.Plan(cte)
			require.NoError(t, err)
			root := node.FromLayout(plan, cte)
			require.Equal(t, shape, root.Shape)

			entries := makeEntries(n, idCodec, valCodec)
			buf := make([]byte, root.ByteSize(ebs))
			src := &sliceSource{entries: entries}
			require.NoError(t, root.Write(src, idCodec, valCodec, buf))

			for _, e := range entries {
				got, found, err := root.Get(e.Val, buf, idCodec, valCodec)
				require.NoError(t, err, "Get(%v)", e.Val)
				require.True(t, found, "Get(%v) should be found", e.Val)
				assert.Equal(t, 0, got.ID.Compare(e.ID))
			}

			missing := codec.Value{Field: valCodec.Type(), U: uint64(n)*2 + 1000}
			_, found, err := root.Get(missing, buf, idCodec, valCodec)
			require.NoError(t, err)
			assert.False(t, found, "Get(missing) should report not found")
		})
	}
}

func TestNodeWriteFailsOnWrongBufferSize(t *testing.T) {
	idCodec, _ := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 4})
	valCodec, _ := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 4})
	ebs := idCodec.Width() + valCodec.Width()
	cte := smallConstants(3, ebs)
	plan, err := layout.Plan(cte)
	require.NoError(t, err)
	root := node.FromLayout(plan, cte)
	src := &sliceSource{entries: makeEntries(3, idCodec, valCodec)}
	err = root.Write(src, idCodec, valCodec, make([]byte, root.ByteSize(ebs)+1))
	assert.Error(t, err, "expected error writing into an oversized buffer")
}

func TestNodeWriteFailsOnExhaustedSource(t *testing.T) {
	idCodec, _ := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 4})
	valCodec, _ := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 4})
	ebs := idCodec.Width() + valCodec.Width()
	cte := smallConstants(4, ebs)
	plan, err := layout.Plan(cte)
	require.NoError(t, err)
	root := node.FromLayout(plan, cte)
	src := &sliceSource{entries: makeEntries(2, idCodec, valCodec)} // short by 2
	err = root.Write(src, idCodec, valCodec, make([]byte, root.ByteSize(ebs)))
	assert.Error(t, err, "expected error writing from an exhausted source")
}

func TestNodeVisitAscAndDescOrdering(t *testing.T) {
	idCodec, _ := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 4})
	valCodec, _ := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 4})
	ebs := idCodec.Width() + valCodec.Width()
	const n = 40
	cte := smallConstants(n, ebs)
	plan, err := layout.Plan(cte)
	require.NoError(t, err)
	root := node.FromLayout(plan, cte)
	entries := makeEntries(n, idCodec, valCodec)
	buf := make([]byte, root.ByteSize(ebs))
	require.NoError(t, root.Write(&sliceSource{entries: entries}, idCodec, valCodec, buf))

	center := codec.Value{Field: valCodec.Type(), U: 20}
	asc := &recordingVisitor{center: center}
	require.NoError(t, root.Visit(asc, buf, idCodec, valCodec))
	for i := 1; i < len(asc.le); i++ {
		assert.LessOrEqualf(t, asc.le[i], asc.le[i-1], "VisitLECenter values not walked from center outward: %v", asc.le)
	}
	for i := 1; i < len(asc.he); i++ {
		assert.GreaterOrEqualf(t, asc.he[i], asc.he[i-1], "VisitHECenter values not walked from center outward: %v", asc.he)
	}
}

// recordingVisitor records every value it is shown, for ordering assertions.
type recordingVisitor struct {
	center   codec.Value
	le, he   []uint64
	centered bool
}

func (v *recordingVisitor) Center() codec.Value { return v.center }
func (v *recordingVisitor) VisitCenter(e node.Entry) {
	v.centered = true
}
func (v *recordingVisitor) VisitLECenter(e node.Entry) { v.le = append(v.le, e.Val.U) }
func (v *recordingVisitor) VisitHECenter(e node.Entry) { v.he = append(v.he, e.Val.U) }
func (v *recordingVisitor) VisitDesc() bool            { return len(v.le) < 5 }
func (v *recordingVisitor) VisitAsc() bool             { return len(v.he) < 5 }
