package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/repository/memory"
	"deepsight-be/pkg/embedding"
)

const sample = `[
  {"name": "Shore Temple", "location": "Mamallapuram", "free_text": "Shore Temple in Mamallapuram, Timings: 6 AM - 6 PM, Entry Fee: Rs 40"},
  {"name": "Brihadeeswarar Temple", "location": "Thanjavur", "free_text": "Brihadeeswarar Temple in Thanjavur, built by Raja Raja Chola I"},
  {"name": "shore temple", "location": "Mamallapuram", "free_text": "Duplicate name with different case"},
  {"name": "", "free_text": "nameless"},
  {"name": "Gingee Fort", "location": "Villupuram", "free_text": ""}
]`

func TestParse(t *testing.T) {
	facilities, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, facilities, 3)

	assert.Equal(t, "Shore Temple", facilities[0].Name)
	assert.Equal(t, map[string]string{"timings": "6 AM - 6 PM", "entry_fee": "Rs 40"}, facilities[0].Attributes)
	assert.Nil(t, facilities[1].Attributes)

	_, err = Parse([]byte("{not json"))
	assert.Error(t, err)
}

func TestParseAttributesKeepsFirstKey(t *testing.T) {
	attrs := ParseAttributes("Timings: 9 AM, timings: never, no colon here, : empty key")
	assert.Equal(t, map[string]string{"timings": "9 AM"}, attrs)
}

func TestSnapshotPlaceNames(t *testing.T) {
	facilities, err := Parse([]byte(sample))
	require.NoError(t, err)

	snap := NewSnapshot(facilities)
	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, []string{"shore temple", "brihadeeswarar temple"}, snap.PlaceNames())

	names := snap.PlaceNames()
	names[0] = "mutated"
	assert.Equal(t, "shore temple", snap.PlaceNames()[0])
}

func TestMemoryIndexTopK(t *testing.T) {
	facilities, err := Parse([]byte(sample))
	require.NoError(t, err)
	idx := NewMemoryIndex(NewSnapshot(facilities))

	matches, err := idx.TopK(context.Background(), "What are the timings of Shore Temple?", 3)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "Shore Temple", matches[0].Record.Name)

	none, err := idx.TopK(context.Background(), "zzz qqq", 3)
	require.NoError(t, err)
	assert.Empty(t, none)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.TopK(ctx, "shore", 3)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeEmbedder struct {
	calls atomic.Int32
	fail  string
}

func (f *fakeEmbedder) Generate(_ context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls.Add(1)
	if f.fail != "" && len(text) >= len(f.fail) && text[:len(f.fail)] == f.fail {
		return nil, errors.New("embedding backend down")
	}
	v := []float32{0, 0}
	if taskType == embedding.TaskRetrievalQuery || len(text) > 0 && text[0] == 'S' {
		v[0] = 1
	} else {
		v[1] = 1
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: v}}, nil
}

func TestIngestAndVectorIndex(t *testing.T) {
	ctx := context.Background()
	facilities, err := Parse([]byte(sample))
	require.NoError(t, err)

	factory := memory.NewRepositoryFactory()
	emb := &fakeEmbedder{}
	ing := NewIngestor(emb, factory, 2, logger.NewNopLogger())

	require.NoError(t, ing.Ingest(ctx, facilities, true))
	assert.Equal(t, int32(3), emb.calls.Load())

	n, err := factory.NewUnitOfWork(ctx).FacilityRepository().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// replace does not duplicate
	require.NoError(t, ing.Ingest(ctx, facilities, true))
	n, _ = factory.NewUnitOfWork(ctx).FacilityRepository().Count(ctx)
	assert.Equal(t, int64(3), n)

	idx := NewVectorIndex(emb, factory)
	matches, err := idx.TopK(ctx, "when does it open", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Shore Temple", matches[0].Record.Name)
}

func TestIngestWritesNothingOnEmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewRepositoryFactory()
	ing := NewIngestor(&fakeEmbedder{fail: "Brihadeeswarar"}, factory, 1, logger.NewNopLogger())

	err := ing.Ingest(ctx, []*entity.Facility{
		{Name: "Shore Temple", FreeText: "x"},
		{Name: "Brihadeeswarar Temple", FreeText: "y"},
	}, false)
	require.Error(t, err)

	n, _ := factory.NewUnitOfWork(ctx).FacilityRepository().Count(ctx)
	assert.Zero(t, n)
}

func TestLoaderBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	snap, idx, err := NewLoader(BackendMemory, path, nil, nil, logger.NewNopLogger()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Len())
	assert.IsType(t, &MemoryIndex{}, idx)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o644))
	_, _, err = NewLoader(BackendMemory, empty, nil, nil, logger.NewNopLogger()).Load(ctx)
	assert.Error(t, err)

	factory := memory.NewRepositoryFactory()
	_, _, err = NewLoader(BackendPostgres, "", factory, &fakeEmbedder{}, logger.NewNopLogger()).Load(ctx)
	assert.Error(t, err, "empty table must refuse to start")

	require.NoError(t, factory.NewUnitOfWork(ctx).FacilityRepository().CreateBulk(ctx, []*entity.Facility{{Name: "Hampi", FreeText: "Hampi in Karnataka"}}))
	snap, idx, err = NewLoader(BackendPostgres, "", factory, &fakeEmbedder{}, logger.NewNopLogger()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hampi"}, snap.PlaceNames())
	assert.IsType(t, &VectorIndex{}, idx)

	_, _, err = NewLoader("sqlite", "", nil, nil, logger.NewNopLogger()).Load(ctx)
	assert.Error(t, err)
}

func TestLoaderMemoryBackendRanksByEmbedding(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	emb := &fakeEmbedder{}
	snap, idx, err := NewLoader(BackendMemory, path, nil, emb, logger.NewNopLogger()).WithConcurrency(2).Load(ctx)
	require.NoError(t, err)
	require.IsType(t, &VectorIndex{}, idx)
	assert.Equal(t, int32(3), emb.calls.Load(), "each facility is embedded once at load")

	matches, err := idx.TopK(ctx, "when does it open", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Shore Temple", matches[0].Record.Name)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	assert.Equal(t, 3, snap.Len())
}

func TestLoaderMemoryBackendFallsBackToLexical(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	_, idx, err := NewLoader(BackendMemory, path, nil, &fakeEmbedder{fail: "Brihadeeswarar"}, logger.NewNopLogger()).Load(ctx)
	require.NoError(t, err)
	require.IsType(t, &MemoryIndex{}, idx)

	matches, err := idx.TopK(ctx, "Shore Temple timings", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Shore Temple", matches[0].Record.Name)
}
