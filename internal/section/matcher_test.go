package section_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/section"
)

type fakeChatModel struct {
	response string
	err      error
}

func (f *fakeChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func TestMatch_CompletenessAndDefaulting(t *testing.T) {
	model := &fakeChatModel{response: "1 Introduction -> Introduction\n2 Related Work -> RelatedWork\n2.1 Weird Heading -> SomethingUnknown\n"}

	mapping, err := section.Match(context.Background(), model, "conf/2024/paper", []string{
		"1 Introduction", "2 Related Work", "2.1 Weird Heading", "3 Missing From Response",
	})
	require.NoError(t, err)

	// Every raw title appears as a key; every value is canonical.
	require.Len(t, mapping.SectionMapping, 4)
	for _, title := range []string{"1 Introduction", "2 Related Work", "2.1 Weird Heading", "3 Missing From Response"} {
		canonical, ok := mapping.SectionMapping[title]
		require.True(t, ok, "missing title %q", title)
		assert.True(t, section.IsCanonical(canonical))
	}

	assert.Equal(t, section.Introduction, mapping.SectionMapping["1 Introduction"])
	assert.Equal(t, section.RelatedWork, mapping.SectionMapping["2 Related Work"])
	assert.Equal(t, section.Method, mapping.SectionMapping["2.1 Weird Heading"])
	assert.Equal(t, section.Method, mapping.SectionMapping["3 Missing From Response"])
}
