package retrieval_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/retrieval"
	"paperrag/internal/section"
)

type scriptedChatModel struct {
	completions []string
	calls       int
}

func (m *scriptedChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	if m.calls >= len(m.completions) {
		return "", fmt.Errorf("scriptedChatModel: ran out of scripted responses")
	}
	resp := m.completions[m.calls]
	m.calls++
	return resp, nil
}

func TestGenerator_Generate_ProducesSectionsInFixedOrderWithDependencies(t *testing.T) {
	// Two Complete calls per section (draft, condense) x 5 sections, then one polish call.
	completions := make([]string, 0, 11)
	for _, s := range section.All5 {
		completions = append(completions, "draft of "+string(s), "condensed "+string(s))
	}
	completions = append(completions, "## Introduction\npolished intro\n## RelatedWork\npolished related\n## Method\npolished method\n## Experiments\npolished experiments\n## Conclusion\npolished conclusion")

	model := &scriptedChatModel{completions: completions}
	gen := retrieval.NewGenerator(model)

	contexts := map[section.Canonical]retrieval.SectionContext{}
	for _, s := range section.All5 {
		contexts[s] = retrieval.SectionContext{Section: s, Text: "ctx " + string(s)}
	}

	drafts, final, err := gen.Generate(context.Background(), "a brief", contexts)
	require.NoError(t, err)

	for _, s := range section.All5 {
		assert.Equal(t, "draft of "+string(s), drafts[s].Text)
		assert.Equal(t, "condensed "+string(s), drafts[s].Condensed)
	}

	assert.Equal(t, "polished intro", final[section.Introduction])
	assert.Equal(t, "polished conclusion", final[section.Conclusion])
}

func TestGenerator_Generate_PolishFallbackOnMissingSection(t *testing.T) {
	completions := make([]string, 0, 11)
	for _, s := range section.All5 {
		completions = append(completions, "draft of "+string(s), "condensed "+string(s))
	}
	// Polish response omits the Method section entirely.
	completions = append(completions, "## Introduction\npolished intro\n## RelatedWork\npolished related\n## Experiments\npolished experiments\n## Conclusion\npolished conclusion")

	model := &scriptedChatModel{completions: completions}
	gen := retrieval.NewGenerator(model)

	contexts := map[section.Canonical]retrieval.SectionContext{}
	for _, s := range section.All5 {
		contexts[s] = retrieval.SectionContext{Section: s, Text: "ctx"}
	}

	_, final, err := gen.Generate(context.Background(), "a brief", contexts)
	require.NoError(t, err)
	assert.Equal(t, "draft of Method", final[section.Method], "missing polished section should fall back to the pre-polish draft")
}
