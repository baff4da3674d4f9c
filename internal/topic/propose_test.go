package topic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/topic"
)

type fakeChatModel struct {
	response string
	err      error
}

func (f *fakeChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func TestPropose_S1FreshTaxonomyBootstrap(t *testing.T) {
	stable := storeWith(&topic.Topic{ID: "1", NameZh: "高性能计算", NameEn: "High Performance Computing", Aliases: []string{}})
	gen := topic.NewStore("gen")

	model := &fakeChatModel{response: "MATCHED:\nNEW: 异构计算, Keywords: Heterogeneous Computing\n"}

	result, err := topic.Propose(context.Background(), model, stable, gen, "some abstract")
	require.NoError(t, err)
	assert.Empty(t, result.MatchedIDs)
	require.Len(t, result.NewNames, 1)

	require.Len(t, gen.Topics, 1)
	newTopic := gen.Topics["2"]
	require.NotNil(t, newTopic)
	assert.Equal(t, "异构计算", newTopic.NameZh)
	assert.Equal(t, "Heterogeneous Computing", newTopic.NameEn)
}

func TestPropose_DropsUnknownMatchedIDs(t *testing.T) {
	stable := storeWith(&topic.Topic{ID: "1", NameZh: "A"})
	gen := topic.NewStore("gen")

	model := &fakeChatModel{response: "MATCHED: 1, 99\nNEW:\n"}

	result, err := topic.Propose(context.Background(), model, stable, gen, "abstract")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, result.MatchedIDs)
}
