package sortmerge

import (
	"bufio"
	"container/heap"
	"fmt"
	"io"
	"os"

	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/node"
)

// tmpFileIter reads back one staged temporary file as an ascending
// node.EntrySource.
type tmpFileIter struct {
	f                 *os.File
	r                 *bufio.Reader
	idCodec, valCodec codec.Codec
	buf               []byte
}

func openTmpFileIter(path string, idCodec, valCodec codec.Codec) (*tmpFileIter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sortmerge: open temp file %s: %w", path, err)
	}
	return &tmpFileIter{
		f:       f,
		r:       bufio.NewReader(f),
		idCodec: idCodec,
		valCodec: valCodec,
		buf:      make([]byte, idCodec.Width()+valCodec.Width()),
	}, nil
}

func (t *tmpFileIter) Next() (node.Entry, bool, error) {
	_, err := io.ReadFull(t.r, t.buf)
	if err == io.EOF {
		return node.Entry{}, false, nil
	}
	if err != nil {
		return node.Entry{}, false, fmt.Errorf("sortmerge: read temp entry: %w", err)
	}
	id, err := t.idCodec.Read(t.buf[:t.idCodec.Width()])
	if err != nil {
		return node.Entry{}, false, fmt.Errorf("sortmerge: decode id: %w", err)
	}
	val, err := t.valCodec.Read(t.buf[t.idCodec.Width():])
	if err != nil {
		return node.Entry{}, false, fmt.Errorf("sortmerge: decode value: %w", err)
	}
	return node.Entry{ID: id, Val: val}, true, nil
}

func (t *tmpFileIter) Close() error { return t.f.Close() }

// kMerge performs an ascending k-way merge over sources via a min-heap of
// their current head entries, the same shape as the reference's kmerge over
// per-file iterators.
type kMerge struct {
	sources []*tmpFileIter
	heap    mergeHeap
}

type mergeHeapItem struct {
	entry     node.Entry
	sourceIdx int
}

type mergeHeap []mergeHeapItem

func (h mergeHeap) Len() int            { return len(h) }
func (h mergeHeap) Less(i, j int) bool  { return h[i].entry.Val.Compare(h[j].entry.Val) < 0 }
func (h mergeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)         { *h = append(*h, x.(mergeHeapItem)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func newKMerge(sources []*tmpFileIter) (*kMerge, error) {
	km := &kMerge{sources: sources}
	for i, s := range sources {
		e, ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if ok {
			km.heap = append(km.heap, mergeHeapItem{entry: e, sourceIdx: i})
		}
	}
	heap.Init(&km.heap)
	return km, nil
}

func (km *kMerge) Next() (node.Entry, bool, error) {
	if km.heap.Len() == 0 {
		return node.Entry{}, false, nil
	}
	top := heap.Pop(&km.heap).(mergeHeapItem)
	next, ok, err := km.sources[top.sourceIdx].Next()
	if err != nil {
		return node.Entry{}, false, err
	}
	if ok {
		heap.Push(&km.heap, mergeHeapItem{entry: next, sourceIdx: top.sourceIdx})
	}
	return top.entry, true, nil
}

func (km *kMerge) closeAll() error {
	var firstErr error
	for _, s := range km.sources {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReduceToK recursively merges groups of k staged files, level by level,
// until at most k files remain. It returns the Dir holding the survivors;
// the caller is responsible for calling Clear on every intermediate level it
// no longer needs (ReduceToK clears each level it fully consumes).
func (d *Dir) ReduceToK(k int) (*Dir, error) {
	if d.nFiles <= k {
		return d, nil
	}

	next := d.nextLevel()
	for start := 0; start < d.nFiles; start += k {
		end := start + k
		if end > d.nFiles {
			end = d.nFiles
		}
		sources := make([]*tmpFileIter, 0, end-start)
		for i := start; i < end; i++ {
			it, err := openTmpFileIter(d.filePath(i), d.idCodec, d.valCodec)
			if err != nil {
				return nil, err
			}
			sources = append(sources, it)
		}
		km, err := newKMerge(sources)
		if err != nil {
			return nil, err
		}
		if err := next.writeMerged(km); err != nil {
			km.closeAll()
			return nil, err
		}
		if err := km.closeAll(); err != nil {
			return nil, err
		}
	}

	if err := d.Clear(); err != nil {
		return nil, fmt.Errorf("sortmerge: clear level %d: %w", d.level, err)
	}
	if d.metrics != nil {
		d.metrics.MergeRounds.Inc()
	}

	return next.ReduceToK(k)
}

// SortedIter opens a k-way merging node.EntrySource over every file staged
// at d's level. The returned source owns open file handles; call Close on it
// once exhausted.
func (d *Dir) SortedIter() (*MergedSource, error) {
	sources := make([]*tmpFileIter, 0, d.nFiles)
	for i := 0; i < d.nFiles; i++ {
		it, err := openTmpFileIter(d.filePath(i), d.idCodec, d.valCodec)
		if err != nil {
			for _, s := range sources {
				s.Close()
			}
			return nil, err
		}
		sources = append(sources, it)
	}
	km, err := newKMerge(sources)
	if err != nil {
		for _, s := range sources {
			s.Close()
		}
		return nil, err
	}
	return &MergedSource{km: km}, nil
}

// MergedSource is the final ascending node.EntrySource the builder drives
// the writer with, once ReduceToK has brought the staged files at or below
// the k-way budget.
type MergedSource struct {
	km *kMerge
}

func (m *MergedSource) Next() (node.Entry, bool, error) { return m.km.Next() }

// Close releases the open file handles backing the merge.
func (m *MergedSource) Close() error { return m.km.closeAll() }
