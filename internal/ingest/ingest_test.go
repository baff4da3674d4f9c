package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/aspect"
	"paperrag/internal/conclude"
	"paperrag/internal/ingest"
	"paperrag/internal/section"
	"paperrag/internal/topic"
	"paperrag/internal/vectorstore"
)

type fakeStore struct {
	collections map[string]bool
	inserted    map[string][]*vectorstore.Document
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: map[string]bool{}, inserted: map[string][]*vectorstore.Document{}}
}

func (f *fakeStore) CreateCollection(ctx context.Context, collection string, dimension int) error {
	f.collections[collection] = true
	return nil
}

func (f *fakeStore) EnsureIndex(ctx context.Context, collection, field string, params vectorstore.IndexParams) error {
	return nil
}

func (f *fakeStore) Load(ctx context.Context, collections []string) error { return nil }

func (f *fakeStore) Insert(ctx context.Context, req *vectorstore.CreateRequest) error {
	f.inserted[req.Collection] = append(f.inserted[req.Collection], req.Documents...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, req *vectorstore.RetrievalRequest) ([]*vectorstore.Document, error) {
	return nil, nil
}

func (f *fakeStore) SearchMany(ctx context.Context, collections []string, query string, topK int) ([]*vectorstore.Document, error) {
	return nil, nil
}

func (f *fakeStore) Query(ctx context.Context, req *vectorstore.QueryRequest) ([]*vectorstore.Document, error) {
	return nil, nil
}

func (f *fakeStore) Delete(ctx context.Context, req *vectorstore.DeleteRequest) error { return nil }

func TestSourceIngestor_IngestPaper_ChunksEachCanonicalSection(t *testing.T) {
	store := newFakeStore()
	si := ingest.NewSourceIngestor(store, 128, 50, 10)

	canonical := map[section.Canonical]string{
		section.Introduction: "Sentence one. Sentence two. Sentence three.",
		section.Method:       "Method sentence one. Method sentence two.",
	}

	err := si.IngestPaper(context.Background(), "conf/2026/paperA", canonical, []string{"深度学习 (Deep Learning)"})
	require.NoError(t, err)

	assert.NotEmpty(t, store.inserted[vectorstore.SectionCollection(section.Introduction)])
	assert.NotEmpty(t, store.inserted[vectorstore.SectionCollection(section.Method)])
	assert.Empty(t, store.inserted[vectorstore.SectionCollection(section.Experiments)])

	first := store.inserted[vectorstore.SectionCollection(section.Introduction)][0]
	assert.Equal(t, "conf/2026/paperA_0", first.ID)
}

func TestSourceIngestor_EnsureCollections_CreatesAllFive(t *testing.T) {
	store := newFakeStore()
	si := ingest.NewSourceIngestor(store, 128, 0, 0)
	require.NoError(t, si.EnsureCollections(context.Background()))
	assert.Len(t, store.collections, len(section.All5))
}

func TestSummaryIngestor_IngestPaper_SkipsMissingAspects(t *testing.T) {
	dir := t.TempDir()
	concluder := conclude.New(nil, dir)

	summary := &conclude.Summary{
		PaperPath:        "conf/2026/paperA",
		CompletedAspects: []aspect.Aspect{aspect.Background},
	}
	aspectDir := filepath.Join(dir, "conf/2026/paperA")
	require.NoError(t, os.MkdirAll(aspectDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(aspectDir, "Background.txt"), []byte("background summary"), 0o644))

	store := newFakeStore()
	sumIngestor := ingest.NewSummaryIngestor(store, 128)
	require.NoError(t, sumIngestor.EnsureCollections(context.Background()))

	loader := ingest.LoaderFromSummary(concluder, summary.PaperPath, summary)
	err := sumIngestor.IngestPaper(context.Background(), "conf/2026/paperA", loader, nil)
	require.NoError(t, err)

	bg := vectorstore.SummaryCollection("background")
	assert.Len(t, store.inserted[bg], 1)

	innovations := vectorstore.SummaryCollection("innovations")
	assert.Empty(t, store.inserted[innovations])
}

func TestResolveTopicTags_DropsUnresolvableIDs(t *testing.T) {
	stable := topic.NewStore("test")
	stable.Topics["1"] = &topic.Topic{ID: "1", NameZh: "深度学习", NameEn: "Deep Learning"}

	tags := ingest.ResolveTopicTags(stable, []string{"1", "999"})
	assert.Equal(t, []string{"深度学习 (Deep Learning)"}, tags)
}
