package bstreefile

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/layout"
	"github.com/xDarkicex/bstreefile/internal/mmapfile"
	"github.com/xDarkicex/bstreefile/internal/node"
	"github.com/xDarkicex/bstreefile/internal/sortmerge"
)

// Builder drives component C7: it plans the layout, stages the external
// sort, reserves the output file and writes the tree in a single pass.
// Builder is not safe for concurrent use; it owns the output file and
// writable mapping exclusively for the duration of Build.
type Builder struct {
	path    string
	idType  IDType
	valType ValType
	cfg     *buildConfig
}

// NewBuilder prepares a builder that will write to path (".bstree" is
// appended if no extension is present) using the given identifier and value
// types.
func NewBuilder(path string, idType IDType, valType ValType, opts ...BuildOption) (*Builder, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, newError("new_builder", KindInputFormat, err)
		}
	}
	if !strings.Contains(extOf(path), ".") {
		path += ".bstree"
	}
	return &Builder{path: path, idType: idType, valType: valType, cfg: cfg}, nil
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

// Build consumes entries (an unsorted stream of n (Entry, error) pairs),
// routes them through the external merge sort, plans the tree layout and
// writes the finished file. If entries yields a non-nil error, or produces a
// count other than n, Build fails without leaving a partially-usable file.
func (b *Builder) Build(ctx context.Context, entries iter.Seq2[Entry, error], n uint64) error {
	start := time.Now()
	idCodec, valCodec, err := codec.Pair(b.idType, b.valType)
	if err != nil {
		return newError("build", KindUnsupported, err)
	}
	ebs := idCodec.Width() + valCodec.Width()

	sorter, err := sortmerge.NewSorter(b.cfg.tempDir, idCodec, valCodec, b.cfg.chunkSize, b.cfg.kway, b.cfg.metrics)
	if err != nil {
		return newError("build", KindIO, err)
	}
	defer os.RemoveAll(b.cfg.tempDir)

	var pos int64
	for e, rowErr := range entries {
		if rowErr != nil {
			return newErrorAt("build", KindInputFormat, pos, rowErr)
		}
		select {
		case <-ctx.Done():
			return newError("build", KindIO, ctx.Err())
		default:
		}
		if err := sorter.Append(node.Entry{ID: e.ID, Val: e.Val}); err != nil {
			if errors.Is(err, codec.ErrOutOfRange) {
				return newErrorAt("build", KindTypeRange, pos, err)
			}
			return newErrorAt("build", KindIO, pos, err)
		}
		pos++
		if b.cfg.metrics != nil {
			b.cfg.metrics.EntriesBuilt.Inc()
		}
	}

	merged, count, err := sorter.Finish()
	if err != nil {
		if errors.Is(err, codec.ErrOutOfRange) {
			return newError("build", KindTypeRange, err)
		}
		return newError("build", KindIO, err)
	}
	defer merged.Close()

	if count != n {
		return newError("build", KindMismatch, fmt.Errorf("entry stream produced %d entries, expected %d", count, n))
	}

	cte, err := layout.NewConstants(n, ebs, b.cfg.effectiveL1Bytes(), b.cfg.diskBytes())
	if err != nil {
		return newError("build", KindLayoutOverflow, err)
	}
	plan, err := layout.Plan(cte)
	if err != nil {
		return newError("build", KindLayoutOverflow, err)
	}

	meta := buildMeta(b.idType, b.valType, cte, plan)
	encoded, err := encodeMeta(meta)
	if err != nil {
		return newError("build", KindIO, err)
	}
	headerSize := fixedHeaderSize + len(encoded)
	totalSize := int64(headerSize) + int64(n)*int64(ebs)

	mf, err := mmapfile.Create(b.path, totalSize)
	if err != nil {
		return newError("build", KindIO, err)
	}
	defer mf.Close()

	dataStart, err := writeHeader(mf.Bytes(), meta)
	if err != nil {
		return newError("build", KindIO, err)
	}

	root := node.FromLayout(plan, cte)
	if err := root.Write(merged, idCodec, valCodec, mf.Bytes()[dataStart:]); err != nil {
		if errors.Is(err, codec.ErrOutOfRange) {
			return newError("build", KindTypeRange, err)
		}
		return newError("build", KindUnsorted, err)
	}

	if err := mf.Sync(); err != nil {
		return newError("build", KindIO, err)
	}
	if b.cfg.metrics != nil {
		b.cfg.metrics.BuildLatency.Observe(time.Since(start).Seconds())
	}
	return nil
}
