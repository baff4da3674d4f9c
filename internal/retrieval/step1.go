package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"paperrag/internal/aspect"
	"paperrag/internal/llm"
	"paperrag/internal/logging"
	"paperrag/internal/vectorstore"
)

// fanoutWorkers is the fixed worker-pool size for step 1's per-aspect
// fan-out.
const fanoutWorkers = 10

// standardizeTemplate asks the model to canonicalize a free-form user
// brief into a single search-ready requirement string.
const standardizeTemplate = `Rewrite the following research request as a single, dense search query capturing its key topics and constraints. Respond with the query text only, no preamble.

Request: %s
`

var standardizedRe = regexp.MustCompile(`(?s)^\s*(.+?)\s*$`)

// Retriever runs step 1: standardize the user brief, then fan out a
// top-k search per aspect summary collection.
type Retriever struct {
	chatModel llm.ChatModel
	store     vectorstore.Store
	topK      int
}

// NewRetriever builds a Retriever. topK<=0 falls back to
// vectorstore.DefaultTopK.
func NewRetriever(chatModel llm.ChatModel, store vectorstore.Store, topK int) *Retriever {
	if topK <= 0 {
		topK = vectorstore.DefaultTopK
	}
	return &Retriever{chatModel: chatModel, store: store, topK: topK}
}

// Standardize canonicalizes a free-form user requirement via a single
// LLM call. On LLM failure it falls back to the raw input unchanged,
// since step 1 must still proceed with some query text.
func (r *Retriever) Standardize(ctx context.Context, userRequirement string) string {
	resp, err := r.chatModel.Complete(ctx, fmt.Sprintf(standardizeTemplate, userRequirement))
	if err != nil || strings.TrimSpace(resp) == "" {
		return userRequirement
	}
	if m := standardizedRe.FindStringSubmatch(resp); m != nil {
		return m[1]
	}
	return resp
}

// Retrieve fans out one top-k search per aspect collection across
// exactly fanoutWorkers concurrent goroutines, omitting any aspect with
// zero hits from the result. A search failure against one aspect's
// collection (e.g. the collection was never ingested) degrades to an
// empty hit list for that aspect rather than failing the whole call.
func (r *Retriever) Retrieve(ctx context.Context, query string) (AspectHits, error) {
	hits := make(AspectHits, len(aspect.All))
	results := make([][]SummaryHit, len(aspect.All))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fanoutWorkers)

	for i, a := range aspect.All {
		i, a := i, a
		g.Go(func() error {
			collection := vectorstore.SummaryCollection(strings.ToLower(string(a)))
			docs, err := r.store.Search(ctx, &vectorstore.RetrievalRequest{
				Collection: collection,
				Query:      query,
				TopK:       r.topK,
			})
			if err != nil {
				logging.Warn("retrieval: step1 search failed, treating as zero hits", "aspect", string(a), "error", err.Error())
				return nil
			}
			results[i] = toSummaryHits(docs, string(a))
			return nil
		})
	}

	_ = g.Wait()

	for i, a := range aspect.All {
		if len(results[i]) > 0 {
			hits[a] = results[i]
		}
	}
	return hits, nil
}

func toSummaryHits(docs []*vectorstore.Document, aspectName string) []SummaryHit {
	out := make([]SummaryHit, 0, len(docs))
	for _, d := range docs {
		record := vectorstore.SummaryRecordFromDocument(d)
		sections := make([]string, 0, len(record.SourceSections))
		for _, s := range record.SourceSections {
			sections = append(sections, string(s))
		}
		out = append(out, SummaryHit{
			PaperID:        record.PaperID,
			SummaryText:    record.SummaryText,
			SourceSections: sections,
			Topics:         record.Topics,
			Score:          d.Score,
			SummaryType:    aspectName,
		})
	}
	return out
}
