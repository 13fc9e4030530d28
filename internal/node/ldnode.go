package node

import (
	"fmt"

	"github.com/xDarkicex/bstreefile/internal/codec"
)

// An LD node's bytes split into three regions: the n entries at this disk
// level, the (n+1) L1 pages directly beneath them, and the (n+1) groups of
// subtree bytes beneath those L1 pages. writeL1Page/getL1Page/visitL1Page
// operate on one (L1 page, subtree group) pair at a time.

func (n *Node) ldRegions(raw []byte, ebs int) (ldBuff, l1Region, stRegion []byte, l1PageSize, subGroupSize int) {
	subSize := n.Sub.ByteSize(ebs)
	l1PageSize = n.NL1PageElems * ebs
	subGroupSize = (n.NL1PageElems + 1) * subSize
	ldBuff, rest := raw[:n.NElems*ebs], raw[n.NElems*ebs:]
	l1Region, stRegion = rest[:(n.NElems+1)*l1PageSize], rest[(n.NElems+1)*l1PageSize:]
	return
}

func (n *Node) writeLDNode(src EntrySource, idCodec, valCodec codec.Codec, dst []byte, nElems, ebs int) error {
	ldBuff, l1Region, stRegion, l1PageSize, subGroupSize := n.ldRegions(dst, ebs)
	for i := 0; i < nElems; i++ {
		l1Buff := l1Region[i*l1PageSize : (i+1)*l1PageSize]
		stBuff := stRegion[i*subGroupSize : (i+1)*subGroupSize]
		if err := writeL1Page(src, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
			return err
		}
		e, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("node: entry source exhausted mid-LD-block")
		}
		if err := writeEntry(e, idCodec, valCodec, ldBuff[i*ebs:(i+1)*ebs]); err != nil {
			return err
		}
	}
	lastL1 := l1Region[nElems*l1PageSize : (nElems+1)*l1PageSize]
	lastSt := stRegion[nElems*subGroupSize : (nElems+1)*subGroupSize]
	return writeL1Page(src, idCodec, valCodec, lastL1, n.Sub, lastSt)
}

func (n *Node) getLDNode(target codec.Value, raw []byte, idCodec, valCodec codec.Codec) (Entry, bool, error) {
	ebs := idCodec.Width() + valCodec.Width()
	ldBuff, l1Region, stRegion, l1PageSize, subGroupSize := n.ldRegions(raw, ebs)
	p := NewPage(ldBuff, idCodec, valCodec)
	i, found, err := p.Search(target)
	if err != nil {
		return Entry{}, false, err
	}
	if found {
		e, err := p.EntryAt(i)
		return e, err == nil, err
	}
	l1Buff := l1Region[i*l1PageSize : (i+1)*l1PageSize]
	stBuff := stRegion[i*subGroupSize : (i+1)*subGroupSize]
	return getL1Page(target, idCodec, valCodec, l1Buff, n.Sub, stBuff)
}

func (n *Node) visitLDNode(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	ebs := idCodec.Width() + valCodec.Width()
	ldBuff, l1Region, stRegion, l1PageSize, subGroupSize := n.ldRegions(raw, ebs)
	p := NewPage(ldBuff, idCodec, valCodec)

	slot := func(i int) (l1Buff, stBuff []byte) {
		return l1Region[i*l1PageSize : (i+1)*l1PageSize], stRegion[i*subGroupSize : (i+1)*subGroupSize]
	}

	i, found, err := p.Search(v.Center())
	if err != nil {
		return err
	}
	var l, r int
	if found {
		e, err := p.EntryAt(i)
		if err != nil {
			return err
		}
		v.VisitCenter(e)
		if v.VisitDesc() {
			l1Buff, stBuff := slot(i)
			if err := visitDescL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
				return err
			}
		}
		if v.VisitAsc() {
			l1Buff, stBuff := slot(i + 1)
			if err := visitAscL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
				return err
			}
		}
		l, r = i-1, i+1
	} else {
		l1Buff, stBuff := slot(i)
		if err := visitL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
			return err
		}
		l, r = i-1, i
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
		l1Buff, stBuff := slot(l)
		if err := visitDescL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
			return err
		}
		l--
	}
	for r < n.NElems {
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
		l1Buff, stBuff := slot(r + 1)
		if err := visitAscL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
			return err
		}
		r++
	}
	return nil
}

func (n *Node) visitDescLDNode(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	ebs := idCodec.Width() + valCodec.Width()
	ldBuff, l1Region, stRegion, l1PageSize, subGroupSize := n.ldRegions(raw, ebs)
	p := NewPage(ldBuff, idCodec, valCodec)
	slot := func(i int) (l1Buff, stBuff []byte) {
		return l1Region[i*l1PageSize : (i+1)*l1PageSize], stRegion[i*subGroupSize : (i+1)*subGroupSize]
	}
	l1Buff, stBuff := slot(n.NElems)
	if err := visitDescL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
		return err
	}
	for i := n.NElems - 1; i >= 0; i-- {
		if !v.VisitDesc() {
			return nil
		}
		e, err := p.EntryAt(i)
		if err != nil {
			return err
		}
		v.VisitLECenter(e)
		if !v.VisitDesc() {
			return nil
		}
		l1Buff, stBuff := slot(i)
		if err := visitDescL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) visitAscLDNode(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	ebs := idCodec.Width() + valCodec.Width()
	ldBuff, l1Region, stRegion, l1PageSize, subGroupSize := n.ldRegions(raw, ebs)
	p := NewPage(ldBuff, idCodec, valCodec)
	slot := func(i int) (l1Buff, stBuff []byte) {
		return l1Region[i*l1PageSize : (i+1)*l1PageSize], stRegion[i*subGroupSize : (i+1)*subGroupSize]
	}
	l1Buff, stBuff := slot(0)
	if err := visitAscL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
		return err
	}
	for i := 0; i < n.NElems; i++ {
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
		l1Buff, stBuff := slot(i + 1)
		if err := visitAscL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
			return err
		}
	}
	return nil
}
