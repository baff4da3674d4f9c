package retrieval

import (
	"fmt"
	"strings"

	"paperrag/internal/aspect"
)

// minHitsForAnalysis is the per-aspect hit-count floor below which an
// analyzed aspect is skipped entirely.
const minHitsForAnalysis = 2

// minOccurrencesForSignal is the count floor a pattern/trend/approach
// must clear before it is reported.
const minOccurrencesForSignal = 2

// Analyze runs step 2 over the step-1 result: only the five aspects in
// aspect.AnalyzedAspects are considered, and only if they have at least
// minHitsForAnalysis hits.
func Analyze(hits AspectHits) AnalysisByAspect {
	result := make(AnalysisByAspect)

	for _, name := range aspect.AnalyzedAspects {
		a := matchingAspect(name)
		aspectHits, ok := hits[a]
		if !ok || len(aspectHits) < minHitsForAnalysis {
			continue
		}

		result[name] = AnalysisResult{
			Patterns:         topicPatterns(aspectHits),
			Trends:           trendSignals(aspectHits, aspect.TrendKeywords[name]),
			CommonApproaches: approachSignals(aspectHits, aspect.ApproachKeywords[name]),
			TopicClusters:    topicClusters(aspectHits),
			AnalysisSummary:  analysisSummary(name, aspectHits),
		}
	}

	return result
}

// matchingAspect resolves a lower-cased AnalyzedAspects entry back to
// its Aspect constant.
func matchingAspect(lower string) aspect.Aspect {
	for _, a := range aspect.All {
		if strings.EqualFold(string(a), lower) {
			return a
		}
	}
	return aspect.Aspect(lower)
}

// topicPatterns emits "{topic} in k/n papers (pct%)" for every topic
// string appearing across at least minOccurrencesForSignal hits.
func topicPatterns(hits []SummaryHit) []string {
	counts := make(map[string]int)
	for _, h := range hits {
		seen := make(map[string]bool)
		for _, t := range h.Topics {
			if !seen[t] {
				counts[t]++
				seen[t] = true
			}
		}
	}

	n := len(hits)
	var patterns []string
	for _, h := range hits {
		for _, t := range h.Topics {
			if counts[t] < minOccurrencesForSignal {
				continue
			}
			if containsPattern(patterns, t) {
				continue
			}
			pct := counts[t] * 100 / n
			patterns = append(patterns, fmt.Sprintf("%s in %d/%d papers (%d%%)", t, counts[t], n, pct))
		}
	}
	return patterns
}

func containsPattern(patterns []string, topic string) bool {
	prefix := topic + " in "
	for _, p := range patterns {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// trendSignals counts total occurrences of each keyword across the
// concatenation of every hit's summary text.
func trendSignals(hits []SummaryHit, keywords []string) []string {
	concatenated := make([]string, 0, len(hits))
	for _, h := range hits {
		concatenated = append(concatenated, h.SummaryText)
	}
	joined := strings.ToLower(strings.Join(concatenated, " "))

	var signals []string
	for _, kw := range keywords {
		if strings.Count(joined, strings.ToLower(kw)) >= minOccurrencesForSignal {
			signals = append(signals, fmt.Sprintf("%s widely adopted", kw))
		}
	}
	return signals
}

// approachSignals counts, for each keyword, how many distinct hits
// contain it (not total occurrences), emitting only those appearing in
// at least minOccurrencesForSignal hits.
func approachSignals(hits []SummaryHit, keywords []string) []string {
	var signals []string
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		count := 0
		for _, h := range hits {
			if strings.Contains(strings.ToLower(h.SummaryText), lower) {
				count++
			}
		}
		if count >= minOccurrencesForSignal {
			signals = append(signals, kw)
		}
	}
	return signals
}

func topicClusters(hits []SummaryHit) map[string][]string {
	clusters := make(map[string][]string)
	for _, h := range hits {
		for _, t := range h.Topics {
			clusters[t] = append(clusters[t], h.PaperID)
		}
	}
	return clusters
}

func analysisSummary(aspectName string, hits []SummaryHit) string {
	patterns := topicPatterns(hits)
	trends := trendSignals(hits, aspect.TrendKeywords[aspectName])
	return fmt.Sprintf("%s: %d papers analyzed, %d recurring topics, %d adopted trends",
		aspectName, len(hits), len(patterns), len(trends))
}
