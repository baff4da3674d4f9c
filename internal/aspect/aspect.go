// Package aspect holds the fixed AspectSet and the constant tables that
// key off it: required sections, source sections, the section→aspect
// matrix, the context-requirements matrix, and the trend/approach
// keyword lists used by cross-paper analysis. These are domain constants
// that must be embedded verbatim; they must not be blended or
// "improved".
package aspect

import "paperrag/internal/section"

// Aspect is one of the ten fixed analytical aspects.
type Aspect string

const (
	Background     Aspect = "Background"
	RelatedWork    Aspect = "RelatedWork"
	Challenges     Aspect = "Challenges"
	Innovations    Aspect = "Innovations"
	Methodology    Aspect = "Methodology"
	ExpeDesign     Aspect = "ExpeDesign"
	Baseline       Aspect = "Baseline"
	Metric         Aspect = "Metric"
	ResultAnalysis Aspect = "ResultAnalysis"
	Conclusion     Aspect = "Conclusion"
)

// All is the fixed 10-member AspectSet, in a stable order used wherever
// aspects must be enumerated deterministically (e.g. step 1's fan-out).
var All = []Aspect{
	Background, RelatedWork, Challenges, Innovations, Methodology,
	ExpeDesign, Baseline, Metric, ResultAnalysis, Conclusion,
}

// RequiredSections maps each aspect to the canonical-section subset its
// concluder prompt draws from.
var RequiredSections = map[Aspect][]section.Canonical{
	Background:     {section.Introduction},
	RelatedWork:    {section.RelatedWork},
	Challenges:     {section.Introduction, section.RelatedWork},
	Innovations:    {section.Introduction, section.Method},
	Methodology:    {section.Method},
	ExpeDesign:     {section.Experiments},
	Baseline:       {section.Experiments},
	Metric:         {section.Experiments},
	ResultAnalysis: {section.Experiments, section.Conclusion},
	Conclusion:     {section.Conclusion},
}

// SourceSections is the fixed source-sections tag the ingestor attaches
// to each aspect's summary record, reusing the same canonical-section
// subset as RequiredSections.
func SourceSections(a Aspect) []section.Canonical {
	return RequiredSections[a]
}

// SectionAspects is the section→aspect matrix: which aspects feed which
// generated section.
var SectionAspects = map[section.Canonical][]Aspect{
	section.Introduction: {Background, Challenges, Innovations},
	section.RelatedWork:  {RelatedWork, Challenges},
	section.Method:       {Methodology},
	section.Experiments:  {ExpeDesign, Baseline, Metric, ResultAnalysis},
	section.Conclusion:   {Conclusion, ResultAnalysis, Innovations},
}

// ContextRequirements are the per-generated-section context flags.
// NeedSource is true only for Method and Experiments.
type ContextRequirements struct {
	NeedSummaries bool
	NeedTrends    bool
	NeedSource    bool
}

var ContextRequirementsBySection = map[section.Canonical]ContextRequirements{
	section.Introduction: {NeedSummaries: true, NeedTrends: true, NeedSource: false},
	section.RelatedWork:  {NeedSummaries: true, NeedTrends: true, NeedSource: false},
	section.Method:       {NeedSummaries: true, NeedTrends: true, NeedSource: true},
	section.Experiments:  {NeedSummaries: true, NeedTrends: true, NeedSource: true},
	section.Conclusion:   {NeedSummaries: true, NeedTrends: true, NeedSource: false},
}

// AnalyzedAspects are the five aspects cross-paper analysis considers,
// lower-cased to match the keyword lookup maps below.
var AnalyzedAspects = []string{"methodology", "innovations", "challenges", "expedesign", "metric"}

// TrendKeywords are the per-aspect trend keyword lists, embedded verbatim.
var TrendKeywords = map[string][]string{
	"methodology": {"deep-learning", "end-to-end", "attention", "Transformer", "multimodal", "self-supervised"},
	"innovations": {"attention", "residual", "batch-norm", "dropout", "regularization", "optimization"},
	"challenges":  {"data-scarcity", "compute-cost", "generalization", "overfitting", "labeling-cost", "real-time"},
	"expedesign":  {"dataset", "benchmark", "metric", "setup", "comparison", "ablation"},
	"metric":      {"accuracy", "recall", "F1", "AUC", "BLEU", "ROUGE"},
}

// ApproachKeywords are the per-aspect approach keyword lists, embedded verbatim. Only three of the five analyzed aspects
// have an approach list defined by the taxonomy.
var ApproachKeywords = map[string][]string{
	"methodology": {"DL-based", "end-to-end-training", "attention", "MLP", "CNN"},
	"innovations": {"multi-head attention", "residual", "batch-norm", "skip-connection", "feature-fusion"},
	"expedesign":  {"random-split", "cross-validation", "grid-search", "early-stopping", "data-augmentation"},
}
