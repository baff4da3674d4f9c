package retrieval

import (
	"context"
	"fmt"
	"sort"

	"paperrag/internal/aspect"
	"paperrag/internal/ingest"
	"paperrag/internal/section"
	"paperrag/internal/vectorstore"
)

// experimentAspects is the aspect set the Experiments pick draws its
// union of candidate hits from.
var experimentAspects = []string{"expedesign", "baseline", "metric", "resultanalysis"}

// SourceSelector runs step 3: pick at most two papers (one for Method,
// one for Experiments) and fetch their full canonical-section content,
// ordered by chunk index.
type SourceSelector struct {
	store vectorstore.Store
}

// NewSourceSelector builds a SourceSelector.
func NewSourceSelector(store vectorstore.Store) *SourceSelector {
	return &SourceSelector{store: store}
}

// Select picks the top methodology hit and the top hit across
// experimentAspects, then fetches each pick's full Method/Experiments
// section content. If both picks share a paper_id, the output has one
// paper key holding both sections.
func (ss *SourceSelector) Select(ctx context.Context, hits AspectHits) (SourceChunks, error) {
	out := make(SourceChunks)

	if methodPaper, ok := bestHit(hits[aspect.Methodology]); ok {
		chunks, err := ss.fetchSection(ctx, methodPaper, section.Method)
		if err != nil {
			return nil, err
		}
		if len(chunks) > 0 {
			ensurePaper(out, methodPaper)[section.Method] = chunks
		}
	}

	if experimentPaper, ok := bestAcrossAspects(hits, experimentAspects); ok {
		chunks, err := ss.fetchSection(ctx, experimentPaper, section.Experiments)
		if err != nil {
			return nil, err
		}
		if len(chunks) > 0 {
			ensurePaper(out, experimentPaper)[section.Experiments] = chunks
		}
	}

	return out, nil
}

func ensurePaper(out SourceChunks, paperID string) map[section.Canonical][]string {
	if out[paperID] == nil {
		out[paperID] = make(map[section.Canonical][]string)
	}
	return out[paperID]
}

// bestHit returns the hit with the smallest score, false if hits is empty.
func bestHit(hits []SummaryHit) (string, bool) {
	if len(hits) == 0 {
		return "", false
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h.Score < best.Score {
			best = h
		}
	}
	return best.PaperID, true
}

// bestAcrossAspects unions the hit lists of the named aspects (matched
// case-insensitively against their Aspect constant) and returns the
// smallest-score paper across the union.
func bestAcrossAspects(hits AspectHits, aspectNames []string) (string, bool) {
	var union []SummaryHit
	for _, name := range aspectNames {
		union = append(union, hits[matchingAspect(name)]...)
	}
	return bestHit(union)
}

// fetchSection queries section's collection filtering on paperID via
// the provider's paper_id-substring match, then sorts returned chunks by
// their parsed chunk index.
func (ss *SourceSelector) fetchSection(ctx context.Context, paperID string, s section.Canonical) ([]string, error) {
	collection := vectorstore.SectionCollection(s)

	for _, pattern := range paperIDLikePatterns(paperID) {
		docs, err := ss.store.Query(ctx, &vectorstore.QueryRequest{
			Collection: collection,
			Filter:     pattern,
			Limit:      0,
		})
		if err != nil {
			return nil, fmt.Errorf("retrieval: step3 query failed for %s in %s: %w", paperID, collection, err)
		}
		if len(docs) > 0 {
			return orderedChunkTexts(docs), nil
		}
	}
	return nil, nil
}

// paperIDLikePatterns returns the three LIKE-style fallbacks tried in
// order to tolerate short-form vs. full-path paper ids.
func paperIDLikePatterns(paperID string) []string {
	return []string{
		"%/" + paperID + "_%",
		paperID + "%",
		"%" + paperID + "%",
	}
}

func orderedChunkTexts(docs []*vectorstore.Document) []string {
	type indexed struct {
		index int
		text  string
	}
	rows := make([]indexed, 0, len(docs))
	for _, d := range docs {
		record := vectorstore.SectionRecordFromDocument(d)
		rows = append(rows, indexed{index: ingest.ChunkIndex(record.PaperID), text: record.Text})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].index < rows[j].index })

	texts := make([]string, len(rows))
	for i, r := range rows {
		texts[i] = r.text
	}
	return texts
}
