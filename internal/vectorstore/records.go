package vectorstore

import (
	"strings"

	"paperrag/internal/section"
)

// SectionRecord is one chunk of one canonical section of one paper.
type SectionRecord struct {
	PaperID   string
	Section   section.Canonical
	Text      string // ≤8000 chars
	Topics    []string
	Embedding []float64
}

// SectionCollection is the fixed collection name for a canonical
// section: paper_{introduction,related_work,methodology,experiments,conclusion}.
func SectionCollection(s section.Canonical) string {
	names := map[section.Canonical]string{
		section.Introduction: "paper_introduction",
		section.RelatedWork:  "paper_related_work",
		section.Method:       "paper_methodology",
		section.Experiments:  "paper_experiments",
		section.Conclusion:   "paper_conclusion",
	}
	return names[s]
}

// ToDocument converts a SectionRecord into the generic Document shape
// Store.Insert expects.
func (r *SectionRecord) ToDocument() *Document {
	return &Document{
		ID:        r.PaperID,
		Text:      r.Text,
		Embedding: r.Embedding,
		Metadata: map[string]any{
			"paper_id": r.PaperID,
			"section":  string(r.Section),
			"text":     r.Text,
			"topics":   r.Topics,
		},
	}
}

// SectionRecordFromDocument reconstructs a SectionRecord from a search
// result's metadata.
func SectionRecordFromDocument(d *Document) *SectionRecord {
	return &SectionRecord{
		PaperID: stringMeta(d.Metadata, "paper_id"),
		Section: section.Canonical(stringMeta(d.Metadata, "section")),
		Text:    stringMeta(d.Metadata, "text"),
		Topics:  stringSliceMeta(d.Metadata, "topics"),
	}
}

// SummaryRecord is one aspect summary of one paper.
type SummaryRecord struct {
	PaperID        string
	SummaryText    string // ≤8192 chars
	SourceSections []section.Canonical
	Topics         []string
	Embedding      []float64
}

// SummaryCollection is the fixed collection name for an aspect: summary_{aspect_lower}.
func SummaryCollection(aspectName string) string {
	return "summary_" + strings.ToLower(aspectName)
}

// ToDocument converts a SummaryRecord into the generic Document shape.
func (r *SummaryRecord) ToDocument() *Document {
	sections := make([]string, 0, len(r.SourceSections))
	for _, s := range r.SourceSections {
		sections = append(sections, string(s))
	}
	return &Document{
		ID:        r.PaperID,
		Text:      r.SummaryText,
		Embedding: r.Embedding,
		Metadata: map[string]any{
			"paper_id":        r.PaperID,
			"summary_text":    r.SummaryText,
			"source_sections": sections,
			"topics":          r.Topics,
		},
	}
}

// SummaryRecordFromDocument reconstructs a SummaryRecord from a search
// result's metadata.
func SummaryRecordFromDocument(d *Document) *SummaryRecord {
	sections := stringSliceMeta(d.Metadata, "source_sections")
	canonical := make([]section.Canonical, 0, len(sections))
	for _, s := range sections {
		canonical = append(canonical, section.Canonical(s))
	}
	return &SummaryRecord{
		PaperID:        stringMeta(d.Metadata, "paper_id"),
		SummaryText:    stringMeta(d.Metadata, "summary_text"),
		SourceSections: canonical,
		Topics:         stringSliceMeta(d.Metadata, "topics"),
	}
}

func stringMeta(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceMeta(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
