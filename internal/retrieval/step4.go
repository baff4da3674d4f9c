package retrieval

import (
	"fmt"
	"strings"

	"paperrag/internal/aspect"
	"paperrag/internal/section"
)

const (
	maxSummariesPerAspect = 3
	summaryTruncateLen    = 500
	maxTrendsPerAspect    = 3
	maxPatternsPerAspect  = 3
	maxChunksPerPaper     = 2
	chunkTruncateLen      = 300
)

// BuildContexts runs step 4: assemble one context string per generated
// section from the step-1 hits, step-2 analysis, and step-3 source
// chunks, per section.Canonical's ContextRequirements.
func BuildContexts(hits AspectHits, analysis AnalysisByAspect, sources SourceChunks) map[section.Canonical]SectionContext {
	out := make(map[section.Canonical]SectionContext, len(section.All5))

	for _, s := range section.All5 {
		req := aspect.ContextRequirementsBySection[s]
		var parts []string

		if req.NeedSummaries {
			if p := summaryContext(s, hits); p != "" {
				parts = append(parts, p)
			}
		}
		if req.NeedTrends {
			if p := trendsContext(s, analysis); p != "" {
				parts = append(parts, p)
			}
		}
		if req.NeedSource {
			if p := sourceContext(s, sources); p != "" {
				parts = append(parts, p)
			}
		}

		out[s] = SectionContext{Section: s, Text: strings.Join(parts, "\n\n")}
	}

	return out
}

func summaryContext(s section.Canonical, hits AspectHits) string {
	var lines []string
	for _, a := range aspect.SectionAspects[s] {
		aspectHits := hits[a]
		for i, h := range aspectHits {
			if i >= maxSummariesPerAspect {
				break
			}
			lines = append(lines, fmt.Sprintf("[%s] %s: %s", a, h.PaperID, truncateRunes(h.SummaryText, summaryTruncateLen)))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "## Related Summaries\n" + strings.Join(lines, "\n")
}

func trendsContext(s section.Canonical, analysis AnalysisByAspect) string {
	var lines []string
	for _, a := range aspect.SectionAspects[s] {
		result, ok := analysis[strings.ToLower(string(a))]
		if !ok {
			continue
		}
		lines = append(lines, limitedList("Trends", result.Trends, maxTrendsPerAspect)...)
		lines = append(lines, limitedList("Patterns", result.Patterns, maxPatternsPerAspect)...)
	}
	if len(lines) == 0 {
		return ""
	}
	return "## Cross-paper Trends\n" + strings.Join(lines, "\n")
}

func limitedList(label string, items []string, max int) []string {
	if len(items) > max {
		items = items[:max]
	}
	var lines []string
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s: %s", label, item))
	}
	return lines
}

func sourceContext(s section.Canonical, sources SourceChunks) string {
	var lines []string
	for paperID, bySection := range sources {
		chunks, ok := bySection[s]
		if !ok {
			continue
		}
		if len(chunks) > maxChunksPerPaper {
			chunks = chunks[:maxChunksPerPaper]
		}
		for _, c := range chunks {
			lines = append(lines, fmt.Sprintf("[%s] %s", paperID, truncateRunes(c, chunkTruncateLen)))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "## Source Excerpts\n" + strings.Join(lines, "\n")
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
