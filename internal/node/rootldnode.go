package node

import (
	"fmt"

	"github.com/xDarkicex/bstreefile/internal/codec"
)

// A root LD node is an LD node whose (n+1)th (L1 page, subtree group) slot
// is replaced by a distinct Rightmost root.

func (n *Node) rootLDRegions(raw []byte, ebs int) (ldBuff, l1Region, stRegion, rBuff []byte, l1PageSize, subGroupSize int) {
	subSize := n.Sub.ByteSize(ebs)
	l1PageSize = n.NL1PageElems * ebs
	subGroupSize = (n.NL1PageElems + 1) * subSize
	ldBuff, rest := raw[:n.NElems*ebs], raw[n.NElems*ebs:]
	l1Region, rest = rest[:n.NElems*l1PageSize], rest[n.NElems*l1PageSize:]
	stRegion, rBuff = rest[:n.NElems*subGroupSize], rest[n.NElems*subGroupSize:]
	return
}

func (n *Node) writeRootLDNode(src EntrySource, idCodec, valCodec codec.Codec, dst []byte, ebs int) error {
	ldBuff, l1Region, stRegion, rBuff, l1PageSize, subGroupSize := n.rootLDRegions(dst, ebs)
	for i := 0; i < n.NElems; i++ {
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
			return fmt.Errorf("node: entry source exhausted mid-root-LD-block")
		}
		if err := writeEntry(e, idCodec, valCodec, ldBuff[i*ebs:(i+1)*ebs]); err != nil {
			return err
		}
	}
	return n.Rightmost.Write(src, idCodec, valCodec, rBuff)
}

func (n *Node) getRootLDNode(target codec.Value, raw []byte, idCodec, valCodec codec.Codec) (Entry, bool, error) {
	ebs := idCodec.Width() + valCodec.Width()
	ldBuff, l1Region, stRegion, rBuff, l1PageSize, subGroupSize := n.rootLDRegions(raw, ebs)
	p := NewPage(ldBuff, idCodec, valCodec)
	i, found, err := p.Search(target)
	if err != nil {
		return Entry{}, false, err
	}
	if found {
		e, err := p.EntryAt(i)
		return e, err == nil, err
	}
	if i == n.NElems {
		return n.Rightmost.Get(target, rBuff, idCodec, valCodec)
	}
	l1Buff := l1Region[i*l1PageSize : (i+1)*l1PageSize]
	stBuff := stRegion[i*subGroupSize : (i+1)*subGroupSize]
	return getL1Page(target, idCodec, valCodec, l1Buff, n.Sub, stBuff)
}

func (n *Node) visitRootLDNode(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	ebs := idCodec.Width() + valCodec.Width()
	ldBuff, l1Region, stRegion, rBuff, l1PageSize, subGroupSize := n.rootLDRegions(raw, ebs)
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
			if i+1 < n.NElems {
				l1Buff, stBuff := slot(i + 1)
				if err := visitAscL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
					return err
				}
			} else if err := n.Rightmost.VisitAsc(v, rBuff, idCodec, valCodec); err != nil {
				return err
			}
		}
		l, r = i-1, i+1
	} else {
		if i < n.NElems {
			l1Buff, stBuff := slot(i)
			if err := visitL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
				return err
			}
		} else if err := n.Rightmost.Visit(v, rBuff, idCodec, valCodec); err != nil {
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
		r++
		if r < n.NElems {
			l1Buff, stBuff := slot(r)
			if err := visitAscL1Page(v, idCodec, valCodec, l1Buff, n.Sub, stBuff); err != nil {
				return err
			}
		} else if err := n.Rightmost.VisitAsc(v, rBuff, idCodec, valCodec); err != nil {
			return err
		}
	}
	return nil
}
