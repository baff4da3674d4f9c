package label_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/label"
	"paperrag/internal/topic"
)

type fakeChatModel struct {
	response string
}

func (f *fakeChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	return f.response, nil
}

func storeWith(topics ...*topic.Topic) *topic.Store {
	s := topic.NewStore("test")
	for _, t := range topics {
		s.Topics[t.ID] = t
	}
	return s
}

func TestLabel_WritesMatchedAndNewIDs(t *testing.T) {
	stable := storeWith(&topic.Topic{ID: "1", NameZh: "深度学习", NameEn: "Deep Learning", Aliases: []string{}})
	model := &fakeChatModel{response: "MATCHED: 1\nNEW: 强化学习, Keywords: Reinforcement Learning\n"}

	labelPath := filepath.Join(t.TempDir(), "paper.txt")
	result, err := label.Label(context.Background(), model, stable, labelPath, "abstract text", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, result.MatchedIDs)
	require.Len(t, result.NewIDs, 1)
	assert.Equal(t, "2", result.NewIDs[0])
	assert.Equal(t, "强化学习", stable.Topics["2"].NameZh)

	data, err := os.ReadFile(labelPath)
	require.NoError(t, err)
	ids := label.ParseTopicIDs(string(data))
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestLabel_ReusesExistingFileUnlessForced(t *testing.T) {
	stable := storeWith(&topic.Topic{ID: "1", NameZh: "A", NameEn: "A", Aliases: []string{}})
	model := &fakeChatModel{response: "MATCHED: 1\n"}

	labelPath := filepath.Join(t.TempDir(), "paper.txt")
	_, err := label.Label(context.Background(), model, stable, labelPath, "abstract", false)
	require.NoError(t, err)

	model.response = "MATCHED:\nNEW: B, Keywords: B\n"
	result, err := label.Label(context.Background(), model, stable, labelPath, "abstract", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, result.MatchedIDs, "unforced re-run should reuse the persisted label")

	result, err = label.Label(context.Background(), model, stable, labelPath, "abstract", true)
	require.NoError(t, err)
	assert.Empty(t, result.MatchedIDs)
	assert.Len(t, result.NewIDs, 1)
}
