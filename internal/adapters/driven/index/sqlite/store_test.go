package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/ports/driven"
)

func testSegments() []driven.IndexedSegment {
	return []driven.IndexedSegment{
		{
			Segment:   domain.Segment{ID: "s0", Source: "report.pdf", Page: 0, Position: 0, Text: "revenue grew"},
			Embedding: []float32{1, 0, 0},
		},
		{
			Segment:   domain.Segment{ID: "s1", Source: "report.pdf", Page: 4, Position: 1, Text: "costs fell"},
			Embedding: []float32{0, 1, 0},
		},
		{
			Segment:   domain.Segment{ID: "s2", Source: "report.pdf", Page: 4, Position: 2, Text: "cash flow steady"},
			Embedding: []float32{0.9, 0.1, 0},
		},
	}
}

func rebuildTestIndex(t *testing.T, path string) {
	t.Helper()
	w := NewWriter(path)
	require.NoError(t, w.Rebuild(context.Background(), "test-model", 5, testSegments()))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "insight.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestOpen_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	require.NoError(t, os.WriteFile(path, []byte("not a database"), 0o600))

	_, err := Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestRebuildAndSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	rebuildTestIndex(t, path)

	ix, err := Open(path)
	require.NoError(t, err)
	defer ix.Close()

	results, err := ix.Search(context.Background(), []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Most similar first: s0 is parallel to the query, s2 nearly so.
	assert.Equal(t, "s0", results[0].Segment.ID)
	assert.Equal(t, "s2", results[1].Segment.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_Deterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	rebuildTestIndex(t, path)

	ix, err := Open(path)
	require.NoError(t, err)
	defer ix.Close()

	query := []float32{0.5, 0.5, 0}
	first, err := ix.Search(context.Background(), query, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ix.Search(context.Background(), query, 3)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestSearch_KBound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	rebuildTestIndex(t, path)

	ix, err := Open(path)
	require.NoError(t, err)
	defer ix.Close()

	// k larger than the index yields every segment.
	results, err := ix.Search(context.Background(), []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// k <= 0 yields nothing.
	results, err = ix.Search(context.Background(), []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_EmptyIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	w := NewWriter(path)
	require.NoError(t, w.Rebuild(context.Background(), "test-model", 0, nil))

	ix, err := Open(path)
	require.NoError(t, err)
	defer ix.Close()

	// A real query vector must not trip the dimension guard: an
	// empty index matches nothing, whatever the query looks like.
	results, err := ix.Search(context.Background(), []float32{0.1, 0.2, 0.3}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = ix.Search(context.Background(), []float32{}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	rebuildTestIndex(t, path)

	ix, err := Open(path)
	require.NoError(t, err)
	defer ix.Close()

	_, err = ix.Search(context.Background(), []float32{1, 0}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}

func TestRebuild_ReplacesPriorIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	rebuildTestIndex(t, path)

	w := NewWriter(path)
	replacement := []driven.IndexedSegment{
		{
			Segment:   domain.Segment{ID: "n0", Source: "other.pdf", Page: 0, Position: 0, Text: "fresh"},
			Embedding: []float32{0, 0, 1},
		},
	}
	require.NoError(t, w.Rebuild(context.Background(), "test-model", 1, replacement))

	ix, err := Open(path)
	require.NoError(t, err)
	defer ix.Close()

	stats, err := ix.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Segments)

	results, err := ix.Search(context.Background(), []float32{0, 0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "n0", results[0].Segment.ID)
}

func TestRebuild_FailureLeavesPriorIndexIntact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	rebuildTestIndex(t, path)

	// A segment with mismatched dimensions aborts the rebuild partway.
	w := NewWriter(path)
	bad := []driven.IndexedSegment{
		{Segment: domain.Segment{ID: "a", Position: 0, Text: "x"}, Embedding: []float32{1, 0, 0}},
		{Segment: domain.Segment{ID: "b", Position: 1, Text: "y"}, Embedding: []float32{1, 0}},
	}
	require.Error(t, w.Rebuild(context.Background(), "test-model", 1, bad))

	// The prior valid index is still there, complete.
	ix, err := Open(path)
	require.NoError(t, err)
	defer ix.Close()

	stats, err := ix.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Segments)
}

func TestRebuild_FailureWithNoPriorIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")

	w := NewWriter(path)
	bad := []driven.IndexedSegment{
		{Segment: domain.Segment{ID: "a", Position: 0, Text: "x"}, Embedding: []float32{1}},
		{Segment: domain.Segment{ID: "b", Position: 1, Text: "y"}, Embedding: []float32{1, 0}},
	}
	require.Error(t, w.Rebuild(context.Background(), "test-model", 1, bad))

	_, err := Open(path)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestStatsAndModelName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	rebuildTestIndex(t, path)

	ix, err := Open(path)
	require.NoError(t, err)
	defer ix.Close()

	stats, err := ix.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Segments)
	assert.Equal(t, 5, stats.Pages)
	assert.Equal(t, "test-model", stats.Model)

	model, err := ix.ModelName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-model", model)
}

func TestVectorCodec_RoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.125, 0}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	assert.Equal(t, in, out)
}
