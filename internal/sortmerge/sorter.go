// Package sortmerge implements the external k-way merge sort (component C3):
// chunked in-memory sort plus staged temporary files, reduced level by level
// until at most k files remain, then exposed to the builder as a single
// ascending node.EntrySource.
package sortmerge

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/node"
	"github.com/xDarkicex/bstreefile/internal/obs"
)

const tmpFilePrefix = ".bstree_chunk"

// Dir manages one level of staged temporary files under root. A Dir is not
// safe for concurrent use.
type Dir struct {
	root   string
	level  int
	nFiles int

	idCodec, valCodec codec.Codec
	metrics           *obs.Metrics
}

// NewDir creates (or reuses) root as the temporary staging directory for a
// single sort-merge run. metrics may be nil, in which case chunk and merge
// counts go unreported.
func NewDir(root string, idCodec, valCodec codec.Codec, metrics *obs.Metrics) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("sortmerge: create temp dir %s: %w", root, err)
	}
	return &Dir{root: root, idCodec: idCodec, valCodec: valCodec, metrics: metrics}, nil
}

func (d *Dir) nextLevel() *Dir {
	return &Dir{root: d.root, level: d.level + 1, idCodec: d.idCodec, valCodec: d.valCodec, metrics: d.metrics}
}

func (d *Dir) filePath(index int) string {
	return filepath.Join(d.root, fmt.Sprintf("%s_l%di%d", tmpFilePrefix, d.level, index))
}

// WriteChunk sorts entries ascending by value in place and writes them to a
// new temporary file in d, counting it.
func (d *Dir) WriteChunk(entries []node.Entry) error {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Val.Compare(entries[j].Val) < 0
	})
	f, err := os.Create(d.filePath(d.nFiles))
	if err != nil {
		return fmt.Errorf("sortmerge: create chunk file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	ebs := d.idCodec.Width() + d.valCodec.Width()
	buf := make([]byte, ebs)
	for _, e := range entries {
		if err := writeEntry(buf, d.idCodec, d.valCodec, e); err != nil {
			return err
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("sortmerge: write chunk entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("sortmerge: flush chunk file: %w", err)
	}
	d.nFiles++
	if d.metrics != nil {
		d.metrics.ChunksFlushed.Inc()
	}
	return nil
}

// writeMerged writes the entries pulled from src, already in ascending
// order, as a single new temporary file in d.
func (d *Dir) writeMerged(src node.EntrySource) error {
	f, err := os.Create(d.filePath(d.nFiles))
	if err != nil {
		return fmt.Errorf("sortmerge: create merged file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	ebs := d.idCodec.Width() + d.valCodec.Width()
	buf := make([]byte, ebs)
	for {
		e, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := writeEntry(buf, d.idCodec, d.valCodec, e); err != nil {
			return err
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("sortmerge: write merged entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("sortmerge: flush merged file: %w", err)
	}
	d.nFiles++
	return nil
}

func writeEntry(dst []byte, idCodec, valCodec codec.Codec, e node.Entry) error {
	if err := idCodec.Write(dst[:idCodec.Width()], e.ID); err != nil {
		return fmt.Errorf("sortmerge: encode id: %w", err)
	}
	if err := valCodec.Write(dst[idCodec.Width():], e.Val); err != nil {
		return fmt.Errorf("sortmerge: encode value: %w", err)
	}
	return nil
}

// NFiles reports how many temporary files are currently staged at d's level.
func (d *Dir) NFiles() int { return d.nFiles }

// Sorter accumulates entries from an unsorted stream in memory-bounded
// chunks, flushing each full chunk to a temporary file, mirroring the
// reference builder's chunk_is_full/sort_and_write_entries/build_index
// sequence.
type Sorter struct {
	dir       *Dir
	chunkSize int
	kway      int
	buf       []node.Entry
	count     uint64
}

// NewSorter stages temporary files under tempDir, batching chunkSize entries
// per in-memory sort and merging down to kway files at a time. metrics may be
// nil.
func NewSorter(tempDir string, idCodec, valCodec codec.Codec, chunkSize, kway int, metrics *obs.Metrics) (*Sorter, error) {
	dir, err := NewDir(tempDir, idCodec, valCodec, metrics)
	if err != nil {
		return nil, err
	}
	return &Sorter{
		dir:       dir,
		chunkSize: chunkSize,
		kway:      kway,
		buf:       make([]node.Entry, 0, chunkSize),
	}, nil
}

// Append adds one entry to the current in-memory chunk, flushing it to a
// temporary file once chunkSize is reached.
func (s *Sorter) Append(e node.Entry) error {
	if len(s.buf) == s.chunkSize {
		if err := s.flush(); err != nil {
			return err
		}
	}
	s.buf = append(s.buf, e)
	s.count++
	return nil
}

func (s *Sorter) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	if err := s.dir.WriteChunk(s.buf); err != nil {
		return err
	}
	s.buf = s.buf[:0]
	return nil
}

// Finish flushes any remaining buffered entries, reduces the staged files to
// at most kway survivors, and returns a merged ascending source over them
// plus the total entry count observed. The caller must Close the returned
// source once exhausted; the underlying temp directory level is cleared as
// part of the final ReduceToK pass, but the survivor level is left for the
// caller to remove once the build has consumed it.
func (s *Sorter) Finish() (*MergedSource, uint64, error) {
	if err := s.flush(); err != nil {
		return nil, 0, err
	}
	survivors, err := s.dir.ReduceToK(s.kway)
	if err != nil {
		return nil, 0, err
	}
	merged, err := survivors.SortedIter()
	if err != nil {
		return nil, 0, err
	}
	return merged, s.count, nil
}

// Clear removes every temporary file staged at d's level. The first removal
// failure is returned to the caller; ReduceToK reports it as a failed merge.
func (d *Dir) Clear() error {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return fmt.Errorf("sortmerge: read temp dir %s: %w", d.root, err)
	}
	prefix := fmt.Sprintf("%s_l%d", tmpFilePrefix, d.level)
	var firstErr error
	for _, ent := range entries {
		if !ent.IsDir() && len(ent.Name()) >= len(prefix) && ent.Name()[:len(prefix)] == prefix {
			if err := os.Remove(filepath.Join(d.root, ent.Name())); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
