package retrieval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paperrag/internal/aspect"
	"paperrag/internal/retrieval"
)

func TestAnalyze_SkipsAspectsBelowMinHits(t *testing.T) {
	hits := retrieval.AspectHits{
		aspect.Methodology: {{PaperID: "p1", SummaryText: "uses attention"}},
	}
	result := retrieval.Analyze(hits)
	_, ok := result["methodology"]
	assert.False(t, ok, "single hit should not clear the analysis floor")
}

func TestAnalyze_EmitsTrendsAndApproachesAboveFloor(t *testing.T) {
	hits := retrieval.AspectHits{
		aspect.Methodology: {
			{PaperID: "p1", SummaryText: "This work uses attention and a Transformer backbone.", Topics: []string{"深度学习 (Deep Learning)"}},
			{PaperID: "p2", SummaryText: "Attention mechanisms and end-to-end training dominate.", Topics: []string{"深度学习 (Deep Learning)"}},
		},
	}
	result := retrieval.Analyze(hits)
	methodology, ok := result["methodology"]
	assert.True(t, ok)
	assert.Contains(t, methodology.Trends, "attention widely adopted")
	assert.Contains(t, methodology.CommonApproaches, "attention")
	assert.NotEmpty(t, methodology.Patterns)
	assert.Len(t, methodology.TopicClusters["深度学习 (Deep Learning)"], 2)
}
