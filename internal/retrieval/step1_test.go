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

type fakeSearchStore struct {
	hitsByCollection map[string][]*vectorstore.Document
	failCollections  map[string]bool
}

func (f *fakeSearchStore) CreateCollection(ctx context.Context, collection string, dimension int) error {
	return nil
}
func (f *fakeSearchStore) EnsureIndex(ctx context.Context, collection, field string, params vectorstore.IndexParams) error {
	return nil
}
func (f *fakeSearchStore) Load(ctx context.Context, collections []string) error { return nil }
func (f *fakeSearchStore) Insert(ctx context.Context, req *vectorstore.CreateRequest) error {
	return nil
}
func (f *fakeSearchStore) Search(ctx context.Context, req *vectorstore.RetrievalRequest) ([]*vectorstore.Document, error) {
	if f.failCollections[req.Collection] {
		return nil, assertErr
	}
	return f.hitsByCollection[req.Collection], nil
}
func (f *fakeSearchStore) SearchMany(ctx context.Context, collections []string, query string, topK int) ([]*vectorstore.Document, error) {
	return nil, nil
}
func (f *fakeSearchStore) Query(ctx context.Context, req *vectorstore.QueryRequest) ([]*vectorstore.Document, error) {
	return nil, nil
}
func (f *fakeSearchStore) Delete(ctx context.Context, req *vectorstore.DeleteRequest) error {
	return nil
}

var assertErr = assertError("collection not found")

type assertError string

func (e assertError) Error() string { return string(e) }

type echoChatModel struct{}

func (echoChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	return "standardized requirement", nil
}

func TestRetriever_Retrieve_OmitsZeroHitAspectsAndFailedCollections(t *testing.T) {
	bgCollection := vectorstore.SummaryCollection("background")
	store := &fakeSearchStore{
		hitsByCollection: map[string][]*vectorstore.Document{
			bgCollection: {(&vectorstore.SummaryRecord{PaperID: "p1", SummaryText: "s"}).ToDocument()},
		},
		failCollections: map[string]bool{
			vectorstore.SummaryCollection("baseline"): true,
		},
	}

	r := retrieval.NewRetriever(echoChatModel{}, store, 5)
	hits, err := r.Retrieve(context.Background(), "query")
	require.NoError(t, err)

	assert.Contains(t, hits, aspect.Background)
	assert.NotContains(t, hits, aspect.Baseline, "a failed collection search should degrade to zero hits, not appear in the result")
	assert.NotContains(t, hits, aspect.Metric, "an aspect collection with no hits should be omitted")
}

func TestRetriever_Standardize_FallsBackToRawInputOnEmptyResponse(t *testing.T) {
	store := &fakeSearchStore{}
	r := retrieval.NewRetriever(emptyChatModel{}, store, 5)
	result := r.Standardize(context.Background(), "raw brief")
	assert.Equal(t, "raw brief", result)
}

type emptyChatModel struct{}

func (emptyChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	return "", nil
}
