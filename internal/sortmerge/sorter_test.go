package sortmerge_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xDarkicex/bstreefile/internal/codec"
	"github.com/xDarkicex/bstreefile/internal/node"
	"github.com/xDarkicex/bstreefile/internal/obs"
	"github.com/xDarkicex/bstreefile/internal/sortmerge"
)

func testCodecs(t *testing.T) (codec.Codec, codec.Codec) {
	t.Helper()
	idCodec, err := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 5})
	require.NoError(t, err)
	valCodec, err := codec.ForType(codec.FieldType{Kind: codec.KindUnsigned, Width: 4})
	require.NoError(t, err)
	return idCodec, valCodec
}

func drain(t *testing.T, src interface {
	Next() (node.Entry, bool, error)
}) []node.Entry {
	t.Helper()
	var out []node.Entry
	for {
		e, ok, err := src.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

func assertAscending(t *testing.T, entries []node.Entry) {
	t.Helper()
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqualf(t, entries[i].Val.Compare(entries[i-1].Val), 0,
			"entries not ascending at index %d: %v before %v", i, entries[i-1].Val, entries[i].Val)
	}
}

func TestSorterAppendAndFinishProducesAscendingOrder(t *testing.T) {
	idCodec, valCodec := testCodecs(t)
	tmpDir := filepath.Join(t.TempDir(), "sort_tmp")

	s, err := sortmerge.NewSorter(tmpDir, idCodec, valCodec, 4, 3, nil)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	const n = 37
	want := make(map[uint64]int)
	for i := 0; i < n; i++ {
		v := uint64(rng.Intn(1000))
		want[v]++
		e := node.Entry{
			ID:  codec.Value{Field: idCodec.Type(), U: uint64(i)},
			Val: codec.Value{Field: valCodec.Type(), U: v},
		}
		require.NoError(t, s.Append(e))
	}

	merged, count, err := s.Finish()
	require.NoError(t, err)
	defer merged.Close()

	assert.Equal(t, uint64(n), count)
	entries := drain(t, merged)
	require.Len(t, entries, n)
	assertAscending(t, entries)

	got := make(map[uint64]int)
	for _, e := range entries {
		got[e.Val.U]++
	}
	for v, c := range want {
		assert.Equalf(t, c, got[v], "value %d occurrence count", v)
	}
}

func TestSorterEmptyInput(t *testing.T) {
	idCodec, valCodec := testCodecs(t)
	tmpDir := filepath.Join(t.TempDir(), "sort_tmp_empty")
	s, err := sortmerge.NewSorter(tmpDir, idCodec, valCodec, 10, 3, nil)
	require.NoError(t, err)
	merged, count, err := s.Finish()
	require.NoError(t, err)
	defer merged.Close()
	assert.Equal(t, uint64(0), count)
	entries := drain(t, merged)
	assert.Empty(t, entries)
}

func TestDirReduceToKMergesDownToFanIn(t *testing.T) {
	idCodec, valCodec := testCodecs(t)
	root := t.TempDir()
	metrics := obs.NewMetrics()

	dir, err := sortmerge.NewDir(root, idCodec, valCodec, metrics)
	require.NoError(t, err)

	// Stage 5 pre-sorted chunk files so ReduceToK(2) must recurse.
	next := uint64(0)
	for chunk := 0; chunk < 5; chunk++ {
		var entries []node.Entry
		for i := 0; i < 3; i++ {
			entries = append(entries, node.Entry{
				ID:  codec.Value{Field: idCodec.Type(), U: next},
				Val: codec.Value{Field: valCodec.Type(), U: next},
			})
			next++
		}
		require.NoError(t, dir.WriteChunk(entries))
	}
	require.Equal(t, 5, dir.NFiles())
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.ChunksFlushed))

	survivors, err := dir.ReduceToK(2)
	require.NoError(t, err)
	assert.LessOrEqual(t, survivors.NFiles(), 2)
	// 5 files -> 3 -> 2 takes two reduction rounds before settling at or below k.
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.MergeRounds))

	merged, err := survivors.SortedIter()
	require.NoError(t, err)
	defer merged.Close()
	entries := drain(t, merged)
	assert.Equal(t, int(next), len(entries))
	assertAscending(t, entries)
}

func TestDirClearRemovesStagedFiles(t *testing.T) {
	idCodec, valCodec := testCodecs(t)
	root := t.TempDir()

	dir, err := sortmerge.NewDir(root, idCodec, valCodec, nil)
	require.NoError(t, err)
	require.NoError(t, dir.WriteChunk([]node.Entry{{
		ID:  codec.Value{Field: idCodec.Type(), U: 1},
		Val: codec.Value{Field: valCodec.Type(), U: 1},
	}}))
	require.NoError(t, dir.Clear())
	remaining, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, remaining, "expected Clear to remove staged files")
}
