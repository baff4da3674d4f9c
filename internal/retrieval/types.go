// Package retrieval implements the five-step retrieval-and-composition
// pipeline: parallel per-aspect summary retrieval, cross-paper analysis,
// source-text selection, context assembly, and the sequential,
// dependency-ordered paper generator with whole-paper polish.
package retrieval

import (
	"paperrag/internal/aspect"
	"paperrag/internal/section"
)

// SummaryHit is one normalized step-1 search result.
type SummaryHit struct {
	PaperID        string   `json:"paper_id"`
	SummaryText    string   `json:"summary_text"`
	SourceSections []string `json:"source_sections"`
	Topics         []string `json:"topics"`
	Score          float64  `json:"score"`
	SummaryType    string   `json:"summary_type"`
}

// AspectHits is the step-1 output: per-aspect hit lists, omitting any
// aspect with zero hits.
type AspectHits map[aspect.Aspect][]SummaryHit

// AnalysisResult is one analyzed aspect's step-2 output.
type AnalysisResult struct {
	Patterns         []string            `json:"patterns"`
	Trends           []string            `json:"trends"`
	CommonApproaches []string            `json:"common_approaches"`
	TopicClusters    map[string][]string `json:"topic_clusters"` // topic -> paper_ids
	AnalysisSummary  string              `json:"analysis_summary"`
}

// AnalysisByAspect is the step-2 output, keyed by the five analyzed
// aspects (lower-cased, matching aspect.AnalyzedAspects).
type AnalysisByAspect map[string]AnalysisResult

// SourceChunks is the step-3 output: paper_id -> canonical section name
// -> ordered text chunks.
type SourceChunks map[string]map[section.Canonical][]string

// SectionContext is the step-4 output for one generated section.
type SectionContext struct {
	Section section.Canonical
	Text    string
}

// Draft is one step-5 section draft plus its condensed summary.
type Draft struct {
	Section   section.Canonical
	Text      string
	Condensed string
}

// Result is the full pipeline output.
type Result struct {
	UserRequirement string
	AspectHits      AspectHits
	Analysis        AnalysisByAspect
	Sources         SourceChunks
	Contexts        map[section.Canonical]SectionContext
	Drafts          map[section.Canonical]*Draft
	Final           map[section.Canonical]string
}
