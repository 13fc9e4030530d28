package bstreefile

import (
	"fmt"
	"time"

	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/layout"
	"github.com/xDarkicex/bstreefile/internal/mmapfile"
	"github.com/xDarkicex/bstreefile/internal/node"
	"github.com/xDarkicex/bstreefile/internal/visit"
)

// Query drives component C8 against one opened, memory-mapped file. Query
// objects are safe for concurrent use by multiple goroutines once opened:
// the mapping is immutable and each call allocates its own visitor and
// walks the mapped bytes without touching any shared mutable state.
type Query struct {
	mf   *mmapfile.File
	meta metaV1
	data []byte

	idCodec, valCodec codec.Codec
	root              *node.Node
	cfg               *queryConfig
}

// Open memory-maps path read-only, validates and parses its header, and
// prepares the root node ready for traversal.
func Open(path string, opts ...QueryOption) (*Query, error) {
	cfg := defaultQueryConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, newError("open", KindInputFormat, err)
		}
	}

	mf, err := mmapfile.OpenReadOnly(path)
	if err != nil {
		return nil, newError("open", KindIO, err)
	}

	meta, dataStart, err := readHeader(mf.Bytes())
	if err != nil {
		mf.Close()
		return nil, newError("open", KindMismatch, err)
	}

	idType, err := codec.ParseIDType(meta.IDTypeTag)
	if err != nil {
		mf.Close()
		return nil, newError("open", KindMismatch, err)
	}
	valType, err := codec.ParseValType(meta.ValTypeTag)
	if err != nil {
		mf.Close()
		return nil, newError("open", KindMismatch, err)
	}
	idCodec, valCodec, err := codec.Pair(idType, valType)
	if err != nil {
		mf.Close()
		return nil, newError("open", KindMismatch, err)
	}

	cte := layout.Constants{
		NEntries:      meta.NEntries,
		EntryByteSize: int(meta.EntryByteSize),
		NL1:           int(meta.NL1),
		NL1InLD:       int(meta.NL1InLD),
	}
	ebs := idCodec.Width() + valCodec.Width()
	if ebs != cte.EntryByteSize {
		mf.Close()
		return nil, newError("open", KindMismatch, fmt.Errorf("header entry size %d does not match codec width %d", cte.EntryByteSize, ebs))
	}

	data := mf.Bytes()[dataStart:]
	wantLen := int64(cte.NEntries) * int64(ebs)
	if int64(len(data)) != wantLen {
		mf.Close()
		return nil, newError("open", KindMismatch, fmt.Errorf("data region is %d bytes, expected %d", len(data), wantLen))
	}

	root := node.FromLayout(meta.Layout, cte)

	return &Query{
		mf:      mf,
		meta:    meta,
		data:    data,
		idCodec: idCodec,
		valCodec: valCodec,
		root:    root,
		cfg:     cfg,
	}, nil
}

// Close unmaps the underlying file.
func (q *Query) Close() error {
	if err := q.mf.Close(); err != nil {
		return newError("close", KindIO, err)
	}
	return nil
}

// Info returns the file's header and layout sizing as a structured record.
func (q *Query) Info() Metadata {
	return Metadata{
		NEntries:      q.meta.NEntries,
		EntryByteSize: int(q.meta.EntryByteSize),
		IDType:        mustParseID(q.meta.IDTypeTag),
		ValType:       mustParseVal(q.meta.ValTypeTag),
		NL1:           int(q.meta.NL1),
		NL1InLD:       int(q.meta.NL1InLD),
	}
}

func mustParseID(tag string) IDType {
	t, _ := codec.ParseIDType(tag)
	return t
}

func mustParseVal(tag string) ValType {
	t, _ := codec.ParseValType(tag)
	return t
}

// Data returns a raw, unordered enumeration of the first limit entries as
// stored in the data region (limit <= 0 means "no limit").
func (q *Query) Data(limit int) ([]Entry, error) {
	ebs := q.idCodec.Width() + q.valCodec.Width()
	n := len(q.data) / ebs
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		rec := q.data[i*ebs : (i+1)*ebs]
		id, err := q.idCodec.Read(rec[:q.idCodec.Width()])
		if err != nil {
			return nil, newErrorAt("data", KindIO, int64(i), err)
		}
		val, err := q.valCodec.Read(rec[q.idCodec.Width():])
		if err != nil {
			return nil, newErrorAt("data", KindIO, int64(i), err)
		}
		out = append(out, Entry{ID: id, Val: val})
	}
	return out, nil
}

func (q *Query) observe(op string, start time.Time, err error) {
	if q.cfg.metrics == nil {
		return
	}
	q.cfg.metrics.QueryOps.WithLabelValues(op).Inc()
	q.cfg.metrics.QueryLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		q.cfg.metrics.QueryErrors.WithLabelValues(op).Inc()
	}
}

// GetFirst finds one entry with value v, if any.
func (q *Query) GetFirst(v Value) (Entry, bool, error) {
	start := time.Now()
	e, found, err := q.root.Get(v, q.data, q.idCodec, q.valCodec)
	q.observe("get_first", start, err)
	if err != nil {
		return Entry{}, false, newError("get_first", KindIO, err)
	}
	return Entry(e), found, nil
}

// GetFirstBatch runs GetFirst once per value in vs, in order.
func (q *Query) GetFirstBatch(vs []Value) ([]Entry, []bool, error) {
	entries := make([]Entry, len(vs))
	found := make([]bool, len(vs))
	for i, v := range vs {
		e, ok, err := q.GetFirst(v)
		if err != nil {
			return nil, nil, err
		}
		entries[i], found[i] = e, ok
	}
	return entries, found, nil
}

// AllCount counts every entry equal to v, up to limit (limit <= 0 means "no limit").
func (q *Query) AllCount(v Value, limit int) (int, error) {
	start := time.Now()
	if limit <= 0 {
		limit = int(q.meta.NEntries)
	}
	visitor := visit.NewAllCount(v, limit)
	err := q.root.Visit(visitor, q.data, q.idCodec, q.valCodec)
	q.observe("all_count", start, err)
	if err != nil {
		return 0, newError("all_count", KindIO, err)
	}
	return visitor.NEntries, nil
}

// All collects every entry equal to v, up to limit (limit <= 0 means "no limit").
func (q *Query) All(v Value, limit int) ([]Entry, error) {
	start := time.Now()
	if limit <= 0 {
		limit = int(q.meta.NEntries)
	}
	visitor := visit.NewAll(v, limit)
	err := q.root.Visit(visitor, q.data, q.idCodec, q.valCodec)
	q.observe("all", start, err)
	if err != nil {
		return nil, newError("all", KindIO, err)
	}
	return toEntries(visitor.Entries), nil
}

// NN finds the single entry nearest v under the type's distance function,
// optionally bounded by dMax.
func (q *Query) NN(v Value, dMax *Value) (Neighbour, bool, error) {
	start := time.Now()
	if !codec.SupportsDistance(v.Field) {
		err := fmt.Errorf("value type %s has no distance function", v.Field)
		q.observe("nn", start, err)
		return Neighbour{}, false, newError("nn", KindUnsupported, err)
	}
	visitor := visit.NewNN(v, codec.Value.Distance, dMax)
	err := q.root.Visit(visitor, q.data, q.idCodec, q.valCodec)
	q.observe("nn", start, err)
	if err != nil {
		return Neighbour{}, false, newError("nn", KindIO, err)
	}
	if visitor.Result == nil {
		return Neighbour{}, false, nil
	}
	return Neighbour{Distance: visitor.Result.Distance, Entry: Entry(visitor.Result.Entry)}, true, nil
}

// NNBatch runs NN once per value in vs, in order.
func (q *Query) NNBatch(vs []Value, dMax *Value) ([]Neighbour, []bool, error) {
	out := make([]Neighbour, len(vs))
	found := make([]bool, len(vs))
	for i, v := range vs {
		n, ok, err := q.NN(v, dMax)
		if err != nil {
			return nil, nil, err
		}
		out[i], found[i] = n, ok
	}
	return out, found, nil
}

// KNN finds the k entries nearest v, sorted ascending by distance.
func (q *Query) KNN(v Value, k int, dMax *Value) ([]Neighbour, error) {
	start := time.Now()
	if !codec.SupportsDistance(v.Field) {
		err := fmt.Errorf("value type %s has no distance function", v.Field)
		q.observe("knn", start, err)
		return nil, newError("knn", KindUnsupported, err)
	}
	visitor := visit.NewKNN(v, codec.Value.Distance, k, dMax)
	err := q.root.Visit(visitor, q.data, q.idCodec, q.valCodec)
	q.observe("knn", start, err)
	if err != nil {
		return nil, newError("knn", KindIO, err)
	}
	results := visitor.Results()
	sortByDistance(results)
	out := make([]Neighbour, len(results))
	for i, r := range results {
		out[i] = Neighbour{Distance: r.Distance, Entry: Entry(r.Entry)}
	}
	return out, nil
}

// Range collects entries in [lo, hi], up to limit (limit <= 0 means "no limit").
func (q *Query) Range(lo, hi Value, limit int) ([]Entry, error) {
	start := time.Now()
	if limit <= 0 {
		limit = int(q.meta.NEntries)
	}
	visitor := visit.NewRange(lo, hi, limit)
	err := q.root.Visit(visitor, q.data, q.idCodec, q.valCodec)
	q.observe("range", start, err)
	if err != nil {
		return nil, newError("range", KindIO, err)
	}
	return toEntries(visitor.Entries), nil
}

// RangeCount counts entries in [lo, hi], up to limit (limit <= 0 means "no limit").
func (q *Query) RangeCount(lo, hi Value, limit int) (int, error) {
	start := time.Now()
	if limit <= 0 {
		limit = int(q.meta.NEntries)
	}
	visitor := visit.NewRangeCount(lo, hi, limit)
	err := q.root.Visit(visitor, q.data, q.idCodec, q.valCodec)
	q.observe("range_count", start, err)
	if err != nil {
		return 0, newError("range_count", KindIO, err)
	}
	return visitor.NEntries, nil
}

func toEntries(es []node.Entry) []Entry {
	out := make([]Entry, len(es))
	for i, e := range es {
		out[i] = Entry(e)
	}
	return out
}

func sortByDistance(ns []visit.Neighbour) {
	// Insertion sort: k is small by construction (the KNN visitor never
	// keeps more than k candidates), so an O(k^2) sort avoids pulling in a
	// separate dependency for what is a handful of elements.
	for i := 1; i < len(ns); i++ {
		for j := i; j > 0 && ns[j].Distance.Compare(ns[j-1].Distance) < 0; j-- {
			ns[j], ns[j-1] = ns[j-1], ns[j]
		}
	}
}
