package retrieval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/aspect"
	"paperrag/internal/retrieval"
	"paperrag/internal/vectorstore"
)

type fakeQueryStore struct {
	docsByCollection map[string][]*vectorstore.Document
}

func (f *fakeQueryStore) CreateCollection(ctx context.Context, collection string, dimension int) error {
	return nil
}
func (f *fakeQueryStore) EnsureIndex(ctx context.Context, collection, field string, params vectorstore.IndexParams) error {
	return nil
}
func (f *fakeQueryStore) Load(ctx context.Context, collections []string) error { return nil }
func (f *fakeQueryStore) Insert(ctx context.Context, req *vectorstore.CreateRequest) error {
	return nil
}
func (f *fakeQueryStore) Search(ctx context.Context, req *vectorstore.RetrievalRequest) ([]*vectorstore.Document, error) {
	return nil, nil
}
func (f *fakeQueryStore) SearchMany(ctx context.Context, collections []string, query string, topK int) ([]*vectorstore.Document, error) {
	return nil, nil
}
func (f *fakeQueryStore) Query(ctx context.Context, req *vectorstore.QueryRequest) ([]*vectorstore.Document, error) {
	return f.docsByCollection[req.Collection], nil
}
func (f *fakeQueryStore) Delete(ctx context.Context, req *vectorstore.DeleteRequest) error {
	return nil
}

func TestSourceSelector_Select_PicksLowestScoreHitPerAspectGroup(t *testing.T) {
	methodCollection := vectorstore.SectionCollection("Method")
	store := &fakeQueryStore{docsByCollection: map[string][]*vectorstore.Document{
		methodCollection: {
			(&vectorstore.SectionRecord{PaperID: "conf/2026/paperA_1", Section: "Method", Text: "second chunk"}).ToDocument(),
			(&vectorstore.SectionRecord{PaperID: "conf/2026/paperA_0", Section: "Method", Text: "first chunk"}).ToDocument(),
		},
	}}

	hits := retrieval.AspectHits{
		aspect.Methodology: {
			{PaperID: "conf/2026/paperA", Score: 0.2},
			{PaperID: "conf/2026/paperB", Score: 0.9},
		},
	}

	selector := retrieval.NewSourceSelector(store)
	sources, err := selector.Select(context.Background(), hits)
	require.NoError(t, err)

	require.Contains(t, sources, "conf/2026/paperA")
	chunks := sources["conf/2026/paperA"]["Method"]
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"first chunk", "second chunk"}, chunks)
}
