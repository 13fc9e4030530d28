package node

import (
	"fmt"

	"github.com/xDarkicex/bstreefile/internal/codec"
)

func (n *Node) visitL1Leaf(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	p := NewPage(raw, idCodec, valCodec)
	l, r, err := centerBounds(v, p)
	if err != nil {
		return err
	}
	for l >= 0 && v.VisitDesc() {
		e, err := p.EntryAt(l)
		if err != nil {
			return err
		}
		v.VisitLECenter(e)
		l--
	}
	for r < p.Len() && v.VisitAsc() {
		e, err := p.EntryAt(r)
		if err != nil {
			return err
		}
		v.VisitHECenter(e)
		r++
	}
	return nil
}

// centerBounds performs the central binary search shared by every leaf-like
// visit: it reports the exclusive bounds (l, r) from which the lateral
// ascending/descending walk should continue, firing VisitCenter immediately
// when the search value is present.
func centerBounds(v Visitor, p Page) (l, r int, err error) {
	i, found, err := p.Search(v.Center())
	if err != nil {
		return 0, 0, err
	}
	if found {
		e, err := p.EntryAt(i)
		if err != nil {
			return 0, 0, err
		}
		v.VisitCenter(e)
		return i - 1, i + 1, nil
	}
	return i - 1, i, nil
}

func (n *Node) visitDescL1Leaf(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	p := NewPage(raw, idCodec, valCodec)
	for i := p.Len() - 1; i >= 0; i-- {
		e, err := p.EntryAt(i)
		if err != nil {
			return err
		}
		v.VisitLECenter(e)
		if !v.VisitDesc() {
			return nil
		}
	}
	return nil
}

func (n *Node) visitAscL1Leaf(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	p := NewPage(raw, idCodec, valCodec)
	for i := 0; i < p.Len(); i++ {
		e, err := p.EntryAt(i)
		if err != nil {
			return err
		}
		v.VisitHECenter(e)
		if !v.VisitAsc() {
			return nil
		}
	}
	return nil
}

// writeL1Page fills l1Buff (n L1-sized entries) interleaved with n+1 copies
// of sub written into stBuff: sub[0] entry[0] sub[1] entry[1] ... entry[n-1]
// sub[n]. This is the algorithm shared by the L1 node and LD node shapes
// (an LD node is simply this applied to each of its own entries' slots).
func writeL1Page(src EntrySource, idCodec, valCodec codec.Codec, l1Buff []byte, sub *Node, stBuff []byte) error {
	ebs := idCodec.Width() + valCodec.Width()
	n := len(l1Buff) / ebs
	subSize := sub.ByteSize(ebs)
	if len(stBuff) != (n+1)*subSize {
		return fmt.Errorf("node: subtree buffer is %d bytes, need %d", len(stBuff), (n+1)*subSize)
	}
	for i := 0; i < n; i++ {
		if err := sub.Write(src, idCodec, valCodec, stBuff[i*subSize:(i+1)*subSize]); err != nil {
			return err
		}
		e, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("node: entry source exhausted mid-page")
		}
		if err := writeEntry(e, idCodec, valCodec, l1Buff[i*ebs:(i+1)*ebs]); err != nil {
			return err
		}
	}
	return sub.Write(src, idCodec, valCodec, stBuff[n*subSize:(n+1)*subSize])
}

func getL1Page(target codec.Value, idCodec, valCodec codec.Codec, l1Buff []byte, sub *Node, stBuff []byte) (Entry, bool, error) {
	p := NewPage(l1Buff, idCodec, valCodec)
	i, found, err := p.Search(target)
	if err != nil {
		return Entry{}, false, err
	}
	if found {
		e, err := p.EntryAt(i)
		return e, err == nil, err
	}
	ebs := idCodec.Width() + valCodec.Width()
	subSize := sub.ByteSize(ebs)
	return sub.Get(target, stBuff[i*subSize:(i+1)*subSize], idCodec, valCodec)
}

func visitL1Page(v Visitor, idCodec, valCodec codec.Codec, l1Buff []byte, sub *Node, stBuff []byte) error {
	ebs := idCodec.Width() + valCodec.Width()
	subSize := sub.ByteSize(ebs)
	p := NewPage(l1Buff, idCodec, valCodec)
	l, r, err := centerBoundsWithSubtree(v, p, sub, idCodec, valCodec, stBuff, subSize)
	if err != nil {
		return err
	}
	for l >= 0 {
		if !v.VisitDesc() {
			break
		}
		e, err := p.EntryAt(l)
		if err != nil {
			return err
		}
		v.VisitLECenter(e)
		if !v.VisitDesc() {
			break
		}
		if err := sub.VisitDesc(v, stBuff[l*subSize:(l+1)*subSize], idCodec, valCodec); err != nil {
			return err
		}
		l--
	}
	for r < p.Len() {
		if !v.VisitAsc() {
			return nil
		}
		e, err := p.EntryAt(r)
		if err != nil {
			return err
		}
		v.VisitHECenter(e)
		if !v.VisitAsc() {
			return nil
		}
		r++
		if err := sub.VisitAsc(v, stBuff[r*subSize:(r+1)*subSize], idCodec, valCodec); err != nil {
			return err
		}
	}
	return nil
}

// centerBoundsWithSubtree mirrors centerBounds but additionally descends
// into the matching entry's two adjacent subtrees when the center value is
// found exactly, before the lateral walk begins.
func centerBoundsWithSubtree(v Visitor, p Page, sub *Node, idCodec, valCodec codec.Codec, stBuff []byte, subSize int) (l, r int, err error) {
	i, found, err := p.Search(v.Center())
	if err != nil {
		return 0, 0, err
	}
	if !found {
		if err := sub.Visit(v, stBuff[i*subSize:(i+1)*subSize], idCodec, valCodec); err != nil {
			return 0, 0, err
		}
		return i - 1, i, nil
	}
	e, err := p.EntryAt(i)
	if err != nil {
		return 0, 0, err
	}
	v.VisitCenter(e)
	if v.VisitDesc() {
		if err := sub.VisitDesc(v, stBuff[i*subSize:(i+1)*subSize], idCodec, valCodec); err != nil {
			return 0, 0, err
		}
	}
	if v.VisitAsc() {
		if err := sub.VisitAsc(v, stBuff[(i+1)*subSize:(i+2)*subSize], idCodec, valCodec); err != nil {
			return 0, 0, err
		}
	}
	return i - 1, i + 1, nil
}

func visitDescL1Page(v Visitor, idCodec, valCodec codec.Codec, l1Buff []byte, sub *Node, stBuff []byte) error {
	ebs := idCodec.Width() + valCodec.Width()
	subSize := sub.ByteSize(ebs)
	p := NewPage(l1Buff, idCodec, valCodec)
	n := p.Len()
	if err := sub.VisitDesc(v, stBuff[n*subSize:(n+1)*subSize], idCodec, valCodec); err != nil {
		return err
	}
	for i := n - 1; i >= 0 && v.VisitDesc(); i-- {
		e, err := p.EntryAt(i)
		if err != nil {
			return err
		}
		v.VisitLECenter(e)
		if !v.VisitDesc() {
			return nil
		}
		if err := sub.VisitDesc(v, stBuff[i*subSize:(i+1)*subSize], idCodec, valCodec); err != nil {
			return err
		}
	}
	return nil
}

func visitAscL1Page(v Visitor, idCodec, valCodec codec.Codec, l1Buff []byte, sub *Node, stBuff []byte) error {
	ebs := idCodec.Width() + valCodec.Width()
	subSize := sub.ByteSize(ebs)
	p := NewPage(l1Buff, idCodec, valCodec)
	n := p.Len()
	i := 0
	for i < n {
		if err := sub.VisitAsc(v, stBuff[i*subSize:(i+1)*subSize], idCodec, valCodec); err != nil {
			return err
		}
		if !v.VisitAsc() {
			return nil
		}
		e, err := p.EntryAt(i)
		if err != nil {
			return err
		}
		v.VisitHECenter(e)
		if !v.VisitAsc() {
			return nil
		}
		i++
	}
	return sub.VisitAsc(v, stBuff[i*subSize:(i+1)*subSize], idCodec, valCodec)
}
