package node

import (
	"fmt"

	"github.com/xDarkicex/bstreefile/internal/codec"
)

// A root L1 node is an L1 node whose (n+1)th subtree slot is replaced by a
// distinct Rightmost root, absorbing the entries that don't divide evenly
// across NElems repetitions of Sub. Root shapes are never themselves
// visited in descending or ascending-only mode: VisitDesc/VisitAsc on a
// bare root make no sense, only Visit (central descent) does.

func (n *Node) writeRootL1Node(src EntrySource, idCodec, valCodec codec.Codec, dst []byte, ebs int) error {
	subSize := n.Sub.ByteSize(ebs)
	l1Buff, rest := dst[:n.NElems*ebs], dst[n.NElems*ebs:]
	stBuff, rBuff := rest[:n.NElems*subSize], rest[n.NElems*subSize:]
	for i := 0; i < n.NElems; i++ {
		if err := n.Sub.Write(src, idCodec, valCodec, stBuff[i*subSize:(i+1)*subSize]); err != nil {
			return err
		}
		e, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("node: entry source exhausted mid-root")
		}
		if err := writeEntry(e, idCodec, valCodec, l1Buff[i*ebs:(i+1)*ebs]); err != nil {
			return err
		}
	}
	return n.Rightmost.Write(src, idCodec, valCodec, rBuff)
}

func (n *Node) getRootL1Node(target codec.Value, raw []byte, idCodec, valCodec codec.Codec) (Entry, bool, error) {
	ebs := idCodec.Width() + valCodec.Width()
	subSize := n.Sub.ByteSize(ebs)
	l1Buff, rest := raw[:n.NElems*ebs], raw[n.NElems*ebs:]
	stBuff, rBuff := rest[:n.NElems*subSize], rest[n.NElems*subSize:]
	p := NewPage(l1Buff, idCodec, valCodec)
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
	return n.Sub.Get(target, stBuff[i*subSize:(i+1)*subSize], idCodec, valCodec)
}

func (n *Node) visitRootL1Node(v Visitor, raw []byte, idCodec, valCodec codec.Codec) error {
	ebs := idCodec.Width() + valCodec.Width()
	subSize := n.Sub.ByteSize(ebs)
	l1Buff, rest := raw[:n.NElems*ebs], raw[n.NElems*ebs:]
	stBuff, rBuff := rest[:n.NElems*subSize], rest[n.NElems*subSize:]
	p := NewPage(l1Buff, idCodec, valCodec)

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
			if err := n.Sub.VisitDesc(v, stBuff[i*subSize:(i+1)*subSize], idCodec, valCodec); err != nil {
				return err
			}
		}
		if v.VisitAsc() {
			if i+1 < n.NElems {
				if err := n.Sub.VisitAsc(v, stBuff[(i+1)*subSize:(i+2)*subSize], idCodec, valCodec); err != nil {
					return err
				}
			} else if err := n.Rightmost.VisitAsc(v, rBuff, idCodec, valCodec); err != nil {
				return err
			}
		}
		l, r = i-1, i+1
	} else {
		if i < n.NElems {
			if err := n.Sub.Visit(v, stBuff[i*subSize:(i+1)*subSize], idCodec, valCodec); err != nil {
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
		if err := n.Sub.VisitDesc(v, stBuff[l*subSize:(l+1)*subSize], idCodec, valCodec); err != nil {
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
			if err := n.Sub.VisitAsc(v, stBuff[r*subSize:(r+1)*subSize], idCodec, valCodec); err != nil {
				return err
			}
		} else if err := n.Rightmost.VisitAsc(v, rBuff, idCodec, valCodec); err != nil {
			return err
		}
	}
	return nil
}
