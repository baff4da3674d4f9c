package qdrant

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/vectorstore"
)

type fakeEmbeddingModel struct {
	dim int
}

func (f *fakeEmbeddingModel) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		vec := make([]float64, f.dim)
		for j := range vec {
			vec[j] = 0.5
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbeddingModel) Dimensions() int { return f.dim }

func TestConfigValidate(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		var cfg *Config
		assert.Error(t, cfg.validate())
	})

	t.Run("missing client", func(t *testing.T) {
		cfg := &Config{EmbeddingModel: &fakeEmbeddingModel{dim: 4}}
		assert.ErrorContains(t, cfg.validate(), "client")
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := &Config{Client: &qdrant.Client{}}
		assert.ErrorContains(t, cfg.validate(), "embedding model")
	})

	t.Run("valid", func(t *testing.T) {
		cfg := &Config{Client: &qdrant.Client{}, EmbeddingModel: &fakeEmbeddingModel{dim: 4}}
		assert.NoError(t, cfg.validate())
	})
}

func TestNew(t *testing.T) {
	store, err := New(&Config{Client: &qdrant.Client{}, EmbeddingModel: &fakeEmbeddingModel{dim: 4}})
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = New(&Config{})
	assert.Error(t, err)
}

func TestBuildPoint(t *testing.T) {
	s := &Store{embeddingModel: &fakeEmbeddingModel{dim: 3}}

	doc := &vectorstore.Document{
		ID:   "chunk-1",
		Text: "some section text",
		Metadata: map[string]any{
			"paper_id": "conf/2024/paper1",
			"topics":   []any{"1:机器学习", "3:知识图谱"},
		},
	}

	point, err := s.buildPoint(doc, []float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	require.NotNil(t, point.Id)
	require.NotNil(t, point.Vectors)

	textValue, ok := point.Payload[payloadTextKey]
	require.True(t, ok)
	assert.Equal(t, "some section text", textValue.GetStringValue())

	paperIDValue, ok := point.Payload["paper_id"]
	require.True(t, ok)
	assert.Equal(t, "conf/2024/paper1", paperIDValue.GetStringValue())
}

func TestBuildPoint_AssignsDistinctIDsPerCall(t *testing.T) {
	s := &Store{embeddingModel: &fakeEmbeddingModel{dim: 2}}
	doc := &vectorstore.Document{ID: "a", Text: "x"}

	first, err := s.buildPoint(doc, []float64{0, 0})
	require.NoError(t, err)
	second, err := s.buildPoint(doc, []float64{0, 0})
	require.NoError(t, err)

	assert.NotEqual(t, first.Id.GetUuid(), second.Id.GetUuid())
}

func TestToDocument(t *testing.T) {
	s := &Store{}

	textValue, err := qdrant.NewValue("abstract content")
	require.NoError(t, err)
	paperIDValue, err := qdrant.NewValue("conf/2024/paper2")
	require.NoError(t, err)

	payload := map[string]*qdrant.Value{
		payloadTextKey: textValue,
		"paper_id":     paperIDValue,
	}

	doc := s.toDocument(payload, 0.87)
	assert.Equal(t, "abstract content", doc.Text)
	assert.Equal(t, 0.87, doc.Score)
	assert.Equal(t, "conf/2024/paper2", doc.Metadata["paper_id"])
	_, hasTextKey := doc.Metadata[payloadTextKey]
	assert.False(t, hasTextKey, "the text payload key must not leak into Metadata")
}

func TestConvertValue(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, convertValue(nil))
	})

	t.Run("string", func(t *testing.T) {
		v, err := qdrant.NewValue("hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", convertValue(v))
	})

	t.Run("list", func(t *testing.T) {
		v, err := qdrant.NewValue([]any{"1:机器学习", "2:计算机视觉"})
		require.NoError(t, err)
		out, ok := convertValue(v).([]any)
		require.True(t, ok)
		assert.Equal(t, []any{"1:机器学习", "2:计算机视觉"}, out)
	})
}

func TestMatchTextCondition(t *testing.T) {
	cond := matchTextCondition("conf/2024/paper1")
	require.NotNil(t, cond)

	match := cond.GetField().GetMatch().GetText()
	assert.Equal(t, "conf/2024/paper1", match)
}

func TestPtrUint64(t *testing.T) {
	p := ptrUint64(42)
	require.NotNil(t, p)
	assert.Equal(t, uint64(42), *p)
}
