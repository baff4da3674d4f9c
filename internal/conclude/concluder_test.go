package conclude_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/aspect"
	"paperrag/internal/conclude"
	"paperrag/internal/section"
)

type fakeChatModel struct {
	calls int
}

func (f *fakeChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return "summary text", nil
}

func writeRaw(t *testing.T, dir, title, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, title+".txt"), []byte(content), 0o644))
}

func TestConclude_SkipsAspectsWithNoRequiredSections(t *testing.T) {
	rawDir := t.TempDir()
	writeRaw(t, rawDir, "1 Introduction", "introduction content")

	mapping := &section.Mapping{
		SectionMapping: map[string]section.Canonical{
			"1 Introduction": section.Introduction,
		},
	}

	model := &fakeChatModel{}
	c := conclude.New(model, t.TempDir())

	summary, err := c.Conclude(context.Background(), "conf/2024/paper", rawDir, mapping, false)
	require.NoError(t, err)

	assert.Equal(t, len(aspect.All), summary.TotalAspects)
	assert.Contains(t, summary.CompletedAspects, aspect.Background)
	assert.Contains(t, summary.MissingAspects, aspect.Methodology)
	assert.NotContains(t, summary.MissingAspects, aspect.Background)
}

func TestConclude_IsIdempotentUnlessForced(t *testing.T) {
	rawDir := t.TempDir()
	writeRaw(t, rawDir, "1 Introduction", "introduction content")

	mapping := &section.Mapping{
		SectionMapping: map[string]section.Canonical{
			"1 Introduction": section.Introduction,
		},
	}

	model := &fakeChatModel{}
	resultDir := t.TempDir()
	c := conclude.New(model, resultDir)

	_, err := c.Conclude(context.Background(), "conf/2024/paper", rawDir, mapping, false)
	require.NoError(t, err)
	firstCalls := model.calls

	_, err = c.Conclude(context.Background(), "conf/2024/paper", rawDir, mapping, false)
	require.NoError(t, err)
	assert.Equal(t, firstCalls, model.calls, "second call without force should reuse summary.json")

	_, err = c.Conclude(context.Background(), "conf/2024/paper", rawDir, mapping, true)
	require.NoError(t, err)
	assert.Greater(t, model.calls, firstCalls, "forced call should recompute")
}
