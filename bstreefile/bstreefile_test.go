package bstreefile_test

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xDarkicex/bstreefile/bstreefile"
)

// seqEntries returns an iter.Seq2 over entries, for driving Builder.Build.
func seqEntries(entries []bstreefile.Entry) func(yield func(bstreefile.Entry, error) bool) {
	return func(yield func(bstreefile.Entry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func u4(idType bstreefile.IDType, id uint64) bstreefile.Value {
	return bstreefile.Value{Field: idType, U: id}
}

func uVal(valType bstreefile.ValType, v uint64) bstreefile.Value {
	return bstreefile.Value{Field: valType, U: v}
}

func buildTempFile(t *testing.T, entries []bstreefile.Entry, idType, valType bstreefile.IDType, opts ...bstreefile.BuildOption) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test")
	b, err := bstreefile.NewBuilder(path, idType, valType, opts...)
	require.NoError(t, err)
	require.NoError(t, b.Build(context.Background(), seqEntries(entries), uint64(len(entries))))
	return path + ".bstree"
}

func TestBuildAndQueryRoundTrip(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u5")
	valType, _ := bstreefile.ParseValType("u4")

	const n = 2000
	entries := make([]bstreefile.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = bstreefile.Entry{ID: u4(idType, uint64(i)), Val: uVal(valType, uint64(i))}
	}

	path := buildTempFile(t, entries, idType, valType, bstreefile.WithL1KB(1), bstreefile.WithDiskKB(16))

	q, err := bstreefile.Open(path)
	require.NoError(t, err)
	defer q.Close()

	assert.Equal(t, uint64(n), q.Info().NEntries)

	e, found, err := q.GetFirst(uVal(valType, n-1))
	require.NoError(t, err)
	require.True(t, found, "GetFirst(%d) should be found", n-1)
	assert.Equal(t, uint64(n-1), e.ID.U)

	_, found, err = q.GetFirst(uVal(valType, n))
	require.NoError(t, err)
	assert.False(t, found, "GetFirst(%d) should not be found", n)

	rangeEntries, err := q.Range(uVal(valType, 10), uVal(valType, 14), 0)
	require.NoError(t, err)
	require.Len(t, rangeEntries, 5)
	sort.Slice(rangeEntries, func(i, j int) bool { return rangeEntries[i].Val.U < rangeEntries[j].Val.U })
	for i, e := range rangeEntries {
		assert.Equal(t, uint64(10+i), e.Val.U)
	}

	neighbours, err := q.KNN(uVal(valType, 1000), 3, nil)
	require.NoError(t, err)
	require.Len(t, neighbours, 3)
	for i := 1; i < len(neighbours); i++ {
		assert.GreaterOrEqualf(t, neighbours[i].Distance.Compare(neighbours[i-1].Distance), 0,
			"KNN results not sorted ascending by distance: %v", neighbours)
	}
	wantValues := map[uint64]bool{999: true, 1000: true, 1001: true}
	for _, nb := range neighbours {
		assert.Truef(t, wantValues[nb.Entry.Val.U], "KNN(1000, k=3) returned unexpected value %d", nb.Entry.Val.U)
	}
}

func TestBuildEmptyFile(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u5")
	valType, _ := bstreefile.ParseValType("u4")
	path := buildTempFile(t, nil, idType, valType)

	q, err := bstreefile.Open(path)
	require.NoError(t, err)
	defer q.Close()

	assert.Equal(t, uint64(0), q.Info().NEntries)
	entries, err := q.Range(uVal(valType, 0), uVal(valType, 1_000_000), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, found, err := q.GetFirst(uVal(valType, 0))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBuildSingleEntry(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u5")
	valType, _ := bstreefile.ParseValType("u4")
	entries := []bstreefile.Entry{{ID: u4(idType, 7), Val: uVal(valType, 42)}}
	path := buildTempFile(t, entries, idType, valType)

	q, err := bstreefile.Open(path)
	require.NoError(t, err)
	defer q.Close()

	e, found, err := q.GetFirst(uVal(valType, 42))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(7), e.ID.U)

	results, err := q.KNN(uVal(valType, 100), 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestBuildRejectsEntryCountMismatch(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u5")
	valType, _ := bstreefile.ParseValType("u4")
	entries := []bstreefile.Entry{{ID: u4(idType, 1), Val: uVal(valType, 1)}}

	path := filepath.Join(t.TempDir(), "mismatch")
	b, err := bstreefile.NewBuilder(path, idType, valType)
	require.NoError(t, err)
	err = b.Build(context.Background(), seqEntries(entries), 2)
	require.Error(t, err, "expected error when declared count does not match stream length")
	assert.True(t, bstreefile.IsKind(err, bstreefile.KindMismatch), "error kind = %v, want KindMismatch", err)
}

func TestStringValueTypeGetFirstAndUnsupportedKNN(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u5")
	valType, _ := bstreefile.ParseValType("t8")
	entries := []bstreefile.Entry{
		{ID: u4(idType, 1), Val: bstreefile.Value{Field: valType, S: "alpha"}},
		{ID: u4(idType, 2), Val: bstreefile.Value{Field: valType, S: "beta"}},
	}
	path := buildTempFile(t, entries, idType, valType)

	q, err := bstreefile.Open(path)
	require.NoError(t, err)
	defer q.Close()

	e, found, err := q.GetFirst(bstreefile.Value{Field: valType, S: "alpha"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(1), e.ID.U)

	_, err = q.KNN(bstreefile.Value{Field: valType, S: "alpha"}, 1, nil)
	require.Error(t, err, "expected error running knn over a string value type")
	assert.True(t, bstreefile.IsKind(err, bstreefile.KindUnsupported), "error kind = %v, want KindUnsupported", err)
}

func TestOpenRejectsCorruptedMagic(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u5")
	valType, _ := bstreefile.ParseValType("u4")
	entries := []bstreefile.Entry{{ID: u4(idType, 1), Val: uVal(valType, 1)}}
	path := buildTempFile(t, entries, idType, valType)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = bstreefile.Open(path)
	require.Error(t, err, "expected error opening a file with a corrupted magic byte")
	assert.True(t, bstreefile.IsKind(err, bstreefile.KindMismatch), "error kind = %v, want KindMismatch", err)
}

func TestRangeCoversFullSpanIsAPermutationInNonDecreasingOrder(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u4")
	valType, _ := bstreefile.ParseValType("u4")

	rng := rand.New(rand.NewSource(7))
	const n = 500
	entries := make([]bstreefile.Entry, n)
	ids := rng.Perm(n)
	for i := range entries {
		entries[i] = bstreefile.Entry{ID: u4(idType, uint64(ids[i])), Val: uVal(valType, uint64(i))}
	}
	path := buildTempFile(t, entries, idType, valType)

	q, err := bstreefile.Open(path)
	require.NoError(t, err)
	defer q.Close()

	got, err := q.Range(uVal(valType, 0), uVal(valType, n-1), 0)
	require.NoError(t, err)
	require.Len(t, got, n)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Val.U, got[i-1].Val.U,
			"Range(full span) result is not non-decreasing")
	}

	wantIDs := make(map[uint64]bool, n)
	for _, e := range entries {
		wantIDs[e.ID.U] = true
	}
	gotIDs := make(map[uint64]bool, n)
	for _, e := range got {
		gotIDs[e.ID.U] = true
	}
	require.Equal(t, len(wantIDs), len(gotIDs))
	for id := range wantIDs {
		assert.Truef(t, gotIDs[id], "Range(full span) is missing id %d: result is not a permutation of the input", id)
	}
}

func TestByteSizeMatchesEntryCountTimesEntryByteSize(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u5")
	valType, _ := bstreefile.ParseValType("u4")

	const n = 777
	entries := make([]bstreefile.Entry, n)
	for i := range entries {
		entries[i] = bstreefile.Entry{ID: u4(idType, uint64(i)), Val: uVal(valType, uint64(i))}
	}
	path := buildTempFile(t, entries, idType, valType, bstreefile.WithL1KB(1), bstreefile.WithDiskKB(16))

	q, err := bstreefile.Open(path)
	require.NoError(t, err)
	defer q.Close()

	info := q.Info()
	require.Equal(t, uint64(n), info.NEntries)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	wantDataBytes := int64(info.NEntries) * int64(info.EntryByteSize)
	assert.GreaterOrEqual(t, fi.Size(), wantDataBytes)

	all, err := q.Data(0)
	require.NoError(t, err)
	assert.Len(t, all, n, "file byte layout should hold exactly N*entry_byte_size data bytes")
}

func TestIdenticalInputsProduceByteIdenticalFiles(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u5")
	valType, _ := bstreefile.ParseValType("u4")

	const n = 300
	entries := make([]bstreefile.Entry, n)
	for i := range entries {
		entries[i] = bstreefile.Entry{ID: u4(idType, uint64(i)), Val: uVal(valType, uint64(i))}
	}

	pathA := buildTempFile(t, entries, idType, valType, bstreefile.WithL1KB(1), bstreefile.WithDiskKB(16))
	pathB := buildTempFile(t, append([]bstreefile.Entry{}, entries...), idType, valType, bstreefile.WithL1KB(1), bstreefile.WithDiskKB(16))

	dataA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	dataB, err := os.ReadFile(pathB)
	require.NoError(t, err)
	require.Len(t, dataB, len(dataA))
	assert.True(t, bytes.Equal(dataA, dataB),
		"two builds from identical inputs and config produced different file bytes")
}

func TestFloatValueTypeRejectsNonFinite(t *testing.T) {
	idType, _ := bstreefile.ParseIDType("u5")
	valType, _ := bstreefile.ParseValType("f4")

	rng := rand.New(rand.NewSource(2))
	entries := make([]bstreefile.Entry, 200)
	for i := range entries {
		entries[i] = bstreefile.Entry{ID: u4(idType, uint64(i)), Val: bstreefile.Value{Field: valType, F: rng.Float64()}}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Val.F < entries[j].Val.F })

	path := filepath.Join(t.TempDir(), "floats")
	b, err := bstreefile.NewBuilder(path, idType, valType)
	require.NoError(t, err)

	withInf := append(append([]bstreefile.Entry{}, entries...), bstreefile.Entry{
		ID: u4(idType, 999), Val: bstreefile.Value{Field: valType, F: math.Inf(1)},
	})
	err = b.Build(context.Background(), seqEntries(withInf), uint64(len(withInf)))
	require.Error(t, err, "expected error building with a non-finite float value")
	assert.True(t, bstreefile.IsKind(err, bstreefile.KindTypeRange), "error kind = %v, want KindTypeRange", err)
}
