package topic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/topic"
)

func storeWith(topics ...*topic.Topic) *topic.Store {
	s := topic.NewStore("test")
	for _, t := range topics {
		s.Topics[t.ID] = t
	}
	return s
}

func TestParseSuggestions_IgnoresNoiseAndSelfMerge(t *testing.T) {
	resp := "some commentary\n合并 2 -> 1\nnot a suggestion\n合并 5 -> 5\n更新并合并 3 -> 7\n"
	got := topic.ParseSuggestions(resp)

	require.Len(t, got, 2)
	assert.Equal(t, topic.Suggestion{A: "2", B: "1", Kind: topic.Absorb}, got[0])
	assert.Equal(t, topic.Suggestion{A: "3", B: "7", Kind: topic.SwapThenAbsorb}, got[1])
}

func TestApplySuggestions_Absorb(t *testing.T) {
	s := storeWith(
		&topic.Topic{ID: "1", NameZh: "高性能计算", NameEn: "High Performance Computing", Aliases: []string{}},
		&topic.Topic{ID: "2", NameZh: "异构计算", NameEn: "Heterogeneous Computing", Aliases: []string{}},
	)

	topic.ApplySuggestions(s, []topic.Suggestion{{A: "2", B: "1", Kind: topic.Absorb}})

	b := s.Topics["1"]
	a := s.Topics["2"]
	assert.False(t, b.Merged)
	assert.Equal(t, "高性能计算", b.NameZh)
	assert.Contains(t, b.Aliases, "异构计算")
	assert.Contains(t, b.Aliases, "Heterogeneous Computing")
	assert.True(t, a.Merged)
	require.NotNil(t, a.MergedTo)
	assert.Equal(t, "1", *a.MergedTo)
}

func TestApplySuggestions_AbsorbIdempotent(t *testing.T) {
	// Applying the same absorb suggestion twice yields the same result
	// as applying it once.
	once := storeWith(
		&topic.Topic{ID: "1", NameZh: "A", NameEn: "A", Aliases: []string{}},
		&topic.Topic{ID: "2", NameZh: "B", NameEn: "B", Aliases: []string{}},
	)
	twice := storeWith(
		&topic.Topic{ID: "1", NameZh: "A", NameEn: "A", Aliases: []string{}},
		&topic.Topic{ID: "2", NameZh: "B", NameEn: "B", Aliases: []string{}},
	)

	sugg := []topic.Suggestion{{A: "2", B: "1", Kind: topic.Absorb}}
	topic.ApplySuggestions(once, sugg)
	topic.ApplySuggestions(twice, sugg)
	topic.ApplySuggestions(twice, sugg)

	assert.Equal(t, once.Topics["1"].Aliases, twice.Topics["1"].Aliases)
	assert.Equal(t, once.Topics["2"].Merged, twice.Topics["2"].Merged)
}

func TestApplySuggestions_SwapThenAbsorb(t *testing.T) {
	s := storeWith(
		&topic.Topic{ID: "3", NameZh: "A", NameEn: "A", Aliases: []string{}},
		&topic.Topic{ID: "7", NameZh: "B", NameEn: "B", Aliases: []string{}},
	)

	topic.ApplySuggestions(s, []topic.Suggestion{{A: "3", B: "7", Kind: topic.SwapThenAbsorb}})

	a := s.Topics["3"]
	b := s.Topics["7"]
	assert.True(t, a.Merged)
	require.NotNil(t, a.MergedTo)
	assert.Equal(t, "7", *a.MergedTo)
	assert.Equal(t, "B", a.NameZh)
	assert.Equal(t, "A", b.NameZh)
	assert.Nil(t, b.MergedTo)
}

func TestRenumber_CompactAndClearsMergeState(t *testing.T) {
	s := storeWith(
		&topic.Topic{ID: "3", NameZh: "B", NameEn: "B", Aliases: []string{}},
		&topic.Topic{ID: "7", NameZh: "A", NameEn: "A", Aliases: []string{}, Merged: true, MergedTo: strPtr("3")},
	)

	target := topic.Renumber(s)

	require.Len(t, target.Topics, 1)
	got, ok := target.Topics["1"]
	require.True(t, ok)
	assert.Equal(t, "B", got.NameZh)
	assert.False(t, got.Merged)
	assert.Nil(t, got.MergedTo)
}

func TestRenumber_S2EndToEnd(t *testing.T) {
	s := storeWith(
		&topic.Topic{ID: "3", NameZh: "A", NameEn: "A", Aliases: []string{}},
		&topic.Topic{ID: "7", NameZh: "B", NameEn: "B", Aliases: []string{}},
	)

	topic.ApplySuggestions(s, []topic.Suggestion{{A: "3", B: "7", Kind: topic.SwapThenAbsorb}})
	target := topic.Renumber(s)

	require.Len(t, target.Topics, 1)
	assert.Equal(t, "A", target.Topics["1"].NameZh)
}

func TestEffectiveID_FollowsChainAndGuardsCycles(t *testing.T) {
	s := storeWith(
		&topic.Topic{ID: "1", NameZh: "A"},
		&topic.Topic{ID: "2", NameZh: "B", Merged: true, MergedTo: strPtr("1")},
		&topic.Topic{ID: "3", NameZh: "C", Merged: true, MergedTo: strPtr("2")},
		&topic.Topic{ID: "4", NameZh: "D", Merged: true, MergedTo: strPtr("5")},
		&topic.Topic{ID: "5", NameZh: "E", Merged: true, MergedTo: strPtr("4")},
	)

	assert.Equal(t, "1", topic.EffectiveID(s, "3"))
	assert.Equal(t, "1", topic.EffectiveID(s, "1"))
	// 4 -> 5 -> 4 is a cycle: the walk stops when it revisits 4.
	assert.Equal(t, "4", topic.EffectiveID(s, "4"))
}

func strPtr(s string) *string { return &s }
